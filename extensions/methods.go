package extensions

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"grol.io/jsi/object"
)

func addMethods(t object.Type, cmds ...object.Extension) error {
	for _, cmd := range cmds {
		if err := object.AddMethod(t, cmd); err != nil {
			return err
		}
	}
	return nil
}

func createMethods() error {
	if err := createStringMethods(); err != nil {
		return err
	}
	if err := createArrayMethods(); err != nil {
		return err
	}
	if err := createRegexpMethods(); err != nil {
		return err
	}
	return createFunctionMethods()
}

// relIndex is the slice() position argument: negative counts from the end,
// undefined is def, the result is within [0, n].
func relIndex(arg object.Object, n, def int) int {
	if arg == nil || arg == object.UNDEFINED {
		return def
	}
	i := object.ToInteger(arg, -n, n)
	if i < 0 {
		i += n
	}
	return i
}

func optArg(args []object.Object, i int) object.Object {
	if i < len(args) {
		return args[i]
	}
	return object.UNDEFINED
}

func runesOf(this object.Object) []rune {
	return []rune(object.ToString(this))
}

func indexRunes(s, sub []rune, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func createStringMethods() error { //nolint:funlen // one entry per method.
	return addMethods(object.STRING,
		object.Extension{
			Name:    "slice",
			MinArgs: 0,
			MaxArgs: 2,
			Help:    "returns the characters from start to end (excluded), negative positions count from the end",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				r := runesOf(this)
				start := relIndex(optArg(args, 0), len(r), 0)
				end := relIndex(optArg(args, 1), len(r), len(r))
				if start >= end {
					return object.String{}, nil
				}
				return object.String{Value: string(r[start:end])}, nil
			},
		},
		object.Extension{
			Name:    "substring",
			MinArgs: 0,
			MaxArgs: 2,
			Help:    "returns the characters between the two positions (in either order)",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				r := runesOf(this)
				start := object.ToInteger(optArg(args, 0), 0, len(r))
				end := len(r)
				if e := optArg(args, 1); e != object.UNDEFINED {
					end = object.ToInteger(e, 0, len(r))
				}
				if start > end {
					start, end = end, start
				}
				return object.String{Value: string(r[start:end])}, nil
			},
		},
		object.Extension{
			Name:    "charAt",
			MinArgs: 0,
			MaxArgs: 1,
			Help:    "returns the character at a position, empty string if out of range",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				r := runesOf(this)
				i := object.ToInteger(optArg(args, 0), -1, len(r))
				if i < 0 || i >= len(r) {
					return object.String{}, nil
				}
				return object.String{Value: string(r[i])}, nil
			},
		},
		object.Extension{
			Name:    "indexOf",
			MinArgs: 1,
			MaxArgs: 2,
			Help:    "returns the position of the first occurrence of a string (from an optional position), -1 if none",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				r := runesOf(this)
				from := object.ToInteger(optArg(args, 1), 0, len(r))
				return object.Number{Value: float64(indexRunes(r, runesOf(args[0]), from))}, nil
			},
		},
		object.Extension{
			Name:     "replace",
			MinArgs:  2,
			MaxArgs:  2,
			Help:     "replaces the first (all for a g regexp) match of a string or regexp by a string or the result of a function",
			Callback: replace,
		},
		object.Extension{
			Name:     "split",
			MinArgs:  0,
			MaxArgs:  2,
			Help:     "splits on a string or regexp separator, up to an optional limit of pieces",
			Callback: split,
		},
		object.Extension{
			Name:    "toUpperCase",
			MaxArgs: 0,
			Callback: func(_ any, this object.Object, _ []object.Object) (object.Object, error) {
				return object.String{Value: strings.ToUpper(object.ToString(this))}, nil
			},
		},
		object.Extension{
			Name:    "toLowerCase",
			MaxArgs: 0,
			Callback: func(_ any, this object.Object, _ []object.Object) (object.Object, error) {
				return object.String{Value: strings.ToLower(object.ToString(this))}, nil
			},
		},
		object.Extension{
			Name:    "trim",
			MaxArgs: 0,
			Callback: func(_ any, this object.Object, _ []object.Object) (object.Object, error) {
				return object.String{Value: strings.TrimSpace(object.ToString(this))}, nil
			},
		},
	)
}

// replace with a regexp uses its replacement syntax ($1, $&...) for string
// replacements; a function gets the match, the groups, the index and the input.
func replace(env any, this object.Object, args []object.Object) (object.Object, error) {
	s := object.ToString(this)
	fn := args[1]
	callable := object.IsCallable(fn)
	re, isRegexp := args[0].(*object.Regexp)
	if !isRegexp {
		search := object.ToString(args[0])
		idx := strings.Index(s, search)
		if idx < 0 {
			return object.String{Value: s}, nil
		}
		with := expandReplacement(object.ToString(fn), search, s[:idx], s[idx+len(search):])
		if callable {
			res, err := env.(object.Invoker).Invoke(fn, object.UNDEFINED, []object.Object{
				object.String{Value: search},
				object.Number{Value: float64(len([]rune(s[:idx])))},
				object.String{Value: s},
			})
			if err != nil {
				return nil, err
			}
			with = object.ToString(res)
		}
		return object.String{Value: s[:idx] + with + s[idx+len(search):]}, nil
	}
	count := 1
	if re.Global() {
		count = -1
		re.LastIndex = 0
	}
	if !callable {
		res, err := re.Re.Replace(s, object.ToString(fn), -1, count)
		if err != nil {
			return nil, err
		}
		return object.String{Value: res}, nil
	}
	var callErr error
	res, err := re.Re.ReplaceFunc(s, func(m regexp2.Match) string {
		if callErr != nil {
			return ""
		}
		groups := m.Groups()
		fnArgs := make([]object.Object, 0, len(groups)+2)
		for _, g := range groups {
			if len(g.Captures) == 0 {
				fnArgs = append(fnArgs, object.UNDEFINED)
				continue
			}
			fnArgs = append(fnArgs, object.String{Value: g.String()})
		}
		fnArgs = append(fnArgs, object.Number{Value: float64(m.Index)}, object.String{Value: s})
		v, err := env.(object.Invoker).Invoke(fn, object.UNDEFINED, fnArgs)
		if err != nil {
			callErr = err
			return ""
		}
		return object.ToString(v)
	}, -1, count)
	if callErr != nil {
		return nil, callErr
	}
	if err != nil {
		return nil, err
	}
	return object.String{Value: res}, nil
}

// expandReplacement handles the $$, $&, $` and $' patterns of a string
// replacement; anything else after a $ is kept as is.
func expandReplacement(with, match, before, after string) string {
	if !strings.Contains(with, "$") {
		return with
	}
	var b strings.Builder
	for i := 0; i < len(with); i++ {
		if with[i] != '$' || i+1 == len(with) {
			b.WriteByte(with[i])
			continue
		}
		switch with[i+1] {
		case '$':
			b.WriteByte('$')
		case '&':
			b.WriteString(match)
		case '`':
			b.WriteString(before)
		case '\'':
			b.WriteString(after)
		default:
			b.WriteByte('$')
			continue
		}
		i++
	}
	return b.String()
}

func split(_ any, this object.Object, args []object.Object) (object.Object, error) {
	s := object.ToString(this)
	var pieces []string
	switch sep := optArg(args, 0).(type) {
	case object.Undefined:
		pieces = []string{s}
	case *object.Regexp:
		var err error
		if pieces, err = splitRegexp(sep.Re, []rune(s)); err != nil {
			return nil, err
		}
	default:
		pieces = strings.Split(s, object.ToString(sep))
	}
	if limit := optArg(args, 1); limit != object.UNDEFINED {
		if n := object.ToInteger(limit, 0, len(pieces)); n < len(pieces) {
			pieces = pieces[:n]
		}
	}
	elements, err := object.MakeObjectSlice(len(pieces))
	if err != nil {
		return nil, err
	}
	for _, p := range pieces {
		elements = append(elements, object.String{Value: p})
	}
	return object.NewArray(elements), nil
}

// splitRegexp never splits on an empty match at the start of a piece or at
// the end of the input. Captured groups are included between the pieces.
func splitRegexp(re *regexp2.Regexp, r []rune) ([]string, error) {
	if len(r) == 0 {
		m, err := re.FindRunesMatch(r)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return []string{}, nil
		}
		return []string{""}, nil
	}
	var pieces []string
	last, search := 0, 0
	for search < len(r) {
		m, err := re.FindRunesMatchStartingAt(r, search)
		if err != nil {
			return nil, err
		}
		if m == nil || m.Index >= len(r) {
			break
		}
		end := m.Index + m.Length
		if end == last {
			search = m.Index + 1
			continue
		}
		pieces = append(pieces, string(r[last:m.Index]))
		for _, g := range m.Groups()[1:] {
			pieces = append(pieces, g.String())
		}
		last, search = end, end
	}
	return append(pieces, string(r[last:])), nil
}

func thisArray(name string, this object.Object) (*object.Array, error) {
	a, ok := this.(*object.Array)
	if !ok {
		return nil, fmt.Errorf("%s called on %s, not an array", name, this.Type())
	}
	return a, nil
}

// eachElement calls fn(element, index, array) for every element, stopping at the first error.
func eachElement(env any, a *object.Array, fn object.Object, f func(object.Object)) error {
	for i := 0; i < len(a.Elements); i++ {
		res, err := env.(object.Invoker).Invoke(fn, object.UNDEFINED, []object.Object{a.Elements[i], object.Number{Value: float64(i)}, a})
		if err != nil {
			return err
		}
		f(res)
	}
	return nil
}

func createArrayMethods() error { //nolint:funlen // one entry per method.
	return addMethods(object.ARRAY,
		object.Extension{
			Name:    "push",
			MinArgs: 0,
			MaxArgs: -1,
			Help:    "appends its arguments and returns the new length",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				a, err := thisArray("push", this)
				if err != nil {
					return nil, err
				}
				a.Elements = append(a.Elements, args...)
				return object.Number{Value: float64(len(a.Elements))}, nil
			},
		},
		object.Extension{
			Name:    "pop",
			MaxArgs: 0,
			Help:    "removes and returns the last element, undefined if empty",
			Callback: func(_ any, this object.Object, _ []object.Object) (object.Object, error) {
				a, err := thisArray("pop", this)
				if err != nil {
					return nil, err
				}
				if len(a.Elements) == 0 {
					return object.UNDEFINED, nil
				}
				last := a.Elements[len(a.Elements)-1]
				a.Elements = a.Elements[:len(a.Elements)-1]
				return last, nil
			},
		},
		object.Extension{
			Name:    "map",
			MinArgs: 1,
			MaxArgs: 1,
			Help:    "returns a new array of the results of calling the function on each element",
			Callback: func(env any, this object.Object, args []object.Object) (object.Object, error) {
				a, err := thisArray("map", this)
				if err != nil {
					return nil, err
				}
				res, err := object.MakeObjectSlice(len(a.Elements))
				if err != nil {
					return nil, err
				}
				err = eachElement(env, a, args[0], func(o object.Object) { res = append(res, o) })
				if err != nil {
					return nil, err
				}
				return object.NewArray(res), nil
			},
		},
		object.Extension{
			Name:    "forEach",
			MinArgs: 1,
			MaxArgs: 1,
			Help:    "calls the function on each element",
			Callback: func(env any, this object.Object, args []object.Object) (object.Object, error) {
				a, err := thisArray("forEach", this)
				if err != nil {
					return nil, err
				}
				return object.UNDEFINED, eachElement(env, a, args[0], func(object.Object) {})
			},
		},
		object.Extension{
			Name:    "join",
			MinArgs: 0,
			MaxArgs: 1,
			Help:    "joins the elements with a separator (default \",\")",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				a, err := thisArray("join", this)
				if err != nil {
					return nil, err
				}
				sep := ","
				if s := optArg(args, 0); s != object.UNDEFINED {
					sep = object.ToString(s)
				}
				return object.String{Value: object.Join(a, sep)}, nil
			},
		},
		object.Extension{
			Name:    "slice",
			MinArgs: 0,
			MaxArgs: 2,
			Help:    "returns a copy of the elements from start to end (excluded), negative positions count from the end",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				a, err := thisArray("slice", this)
				if err != nil {
					return nil, err
				}
				n := len(a.Elements)
				start := relIndex(optArg(args, 0), n, 0)
				end := relIndex(optArg(args, 1), n, n)
				if start >= end {
					return object.NewArray(nil), nil
				}
				return object.NewArray(append([]object.Object(nil), a.Elements[start:end]...)), nil
			},
		},
		object.Extension{
			Name:    "indexOf",
			MinArgs: 1,
			MaxArgs: 2,
			Help:    "returns the position of the first element === to the argument, -1 if none",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				a, err := thisArray("indexOf", this)
				if err != nil {
					return nil, err
				}
				from := relIndex(optArg(args, 1), len(a.Elements), 0)
				for i := from; i < len(a.Elements); i++ {
					if object.StrictEquals(a.Elements[i], args[0]) {
						return object.Number{Value: float64(i)}, nil
					}
				}
				return object.Number{Value: -1}, nil
			},
		},
	)
}

func thisRegexp(name string, this object.Object) (*object.Regexp, error) {
	re, ok := this.(*object.Regexp)
	if !ok {
		return nil, fmt.Errorf("%s called on %s, not a regexp", name, this.Type())
	}
	return re, nil
}

func createRegexpMethods() error {
	return addMethods(object.REGEXP,
		object.Extension{
			Name:    "exec",
			MinArgs: 1,
			MaxArgs: 1,
			Help:    "returns the match array (with index and input) or null; g expressions continue from lastIndex",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				re, err := thisRegexp("exec", this)
				if err != nil {
					return nil, err
				}
				return re.Exec(object.ToString(args[0]))
			},
		},
		object.Extension{
			Name:    "test",
			MinArgs: 1,
			MaxArgs: 1,
			Help:    "true if the expression matches",
			Callback: func(_ any, this object.Object, args []object.Object) (object.Object, error) {
				re, err := thisRegexp("test", this)
				if err != nil {
					return nil, err
				}
				res, err := re.Exec(object.ToString(args[0]))
				if err != nil {
					return nil, err
				}
				return object.NativeBoolToBooleanObject(res != object.NULL), nil
			},
		},
	)
}

func createFunctionMethods() error {
	return addMethods(object.FUNC,
		object.Extension{
			Name:    "apply",
			MinArgs: 0,
			MaxArgs: 2,
			Help:    "calls the function with the given this and array of arguments",
			Callback: func(env any, this object.Object, args []object.Object) (object.Object, error) {
				var fnArgs []object.Object
				switch a := optArg(args, 1).(type) {
				case *object.Array:
					fnArgs = append(fnArgs, a.Elements...)
				case object.Undefined, object.Null:
				default:
					return nil, fmt.Errorf("apply: arguments must be an array, not %s", a.Type())
				}
				return env.(object.Invoker).Invoke(this, optArg(args, 0), fnArgs)
			},
		},
		object.Extension{
			Name:    "call",
			MinArgs: 0,
			MaxArgs: -1,
			Help:    "calls the function with the given this and arguments",
			Callback: func(env any, this object.Object, args []object.Object) (object.Object, error) {
				var fnArgs []object.Object
				if len(args) > 1 {
					fnArgs = args[1:]
				}
				return env.(object.Invoker).Invoke(this, optArg(args, 0), fnArgs)
			},
		},
	)
}
