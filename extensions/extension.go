// Package extensions provides the host capabilities scripts start with
// (require, console, RegExp, parseFloat and Object) and the native methods
// of strings, arrays, regexps, functions and objects.
package extensions

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fortio.org/log"
	"grol.io/jsi/eval"
	"grol.io/jsi/object"
)

var (
	initDone  = false
	errInInit error
	// Set from Config by Init, read by require and readFileSync.
	modulePath      = "."
	unrestrictedIOs = false
)

const ModuleExtension = ".js"

// Configure restrictions and features.
// Currently about IOs of require() and fs.readFileSync().
type Config struct {
	ModulePath      string // directory require() and readFileSync() resolve relative names against.
	UnrestrictedIOs bool   // Dangerous when true: absolute paths and .. are allowed.
}

// Init initializes the extensions, can be called multiple time safely but should really be called only once
// before creating eval states. If the passed [Config] pointer is nil, default (safe) values are used.
func Init(c *Config) error {
	if initDone {
		return errInInit
	}
	if c == nil {
		c = &Config{}
	}
	errInInit = initInternal(c)
	initDone = true
	return errInInit
}

func initInternal(c *Config) error {
	modulePath = c.ModulePath
	if modulePath == "" {
		modulePath = "."
	}
	unrestrictedIOs = c.UnrestrictedIOs
	log.LogVf("extensions init: module path %q, unrestricted IOs %v", modulePath, unrestrictedIOs)
	err := object.CreateFunction(object.Extension{
		Name:     "require",
		MinArgs:  1,
		MaxArgs:  1,
		Help:     "loads a module relative to the module path and returns its exports, \"fs\" is built in",
		Callback: require,
	})
	if err != nil {
		return err
	}
	err = object.CreateFunction(object.Extension{
		Name:     "RegExp",
		MinArgs:  1,
		MaxArgs:  2,
		Help:     "compiles a regular expression from source and optional flags (g, m, i)",
		Callback: newRegexp,
	})
	if err != nil {
		return err
	}
	err = object.CreateFunction(object.Extension{
		Name:     "parseFloat",
		MinArgs:  1,
		MaxArgs:  1,
		Help:     "parses the longest numeric prefix of a string, NaN if there is none",
		Callback: parseFloat,
	})
	if err != nil {
		return err
	}
	console, err := makeObject(object.Extension{
		Name:     "log",
		MinArgs:  0,
		MaxArgs:  -1,
		Help:     "writes its arguments separated by spaces and a newline",
		Callback: consoleLog,
	})
	if err != nil {
		return err
	}
	object.AddIdentifier("console", console)
	objectUtil, err := createObjectFunctions()
	if err != nil {
		return err
	}
	object.AddIdentifier("Object", objectUtil)
	return createMethods()
}

// makeObject returns a host object whose properties are the given native functions.
func makeObject(cmds ...object.Extension) (*object.Map, error) {
	res := object.NewMap()
	for _, cmd := range cmds {
		ext, err := object.NewExtension(cmd)
		if err != nil {
			return nil, err
		}
		res.Set(cmd.Name, ext)
	}
	return res, nil
}

func consoleLog(env any, _ object.Object, args []object.Object) (object.Object, error) {
	s := env.(*eval.State)
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = object.Display(a)
	}
	_, err := fmt.Fprintln(s.Out, strings.Join(parts, " "))
	return object.UNDEFINED, err
}

func newRegexp(_ any, _ object.Object, args []object.Object) (object.Object, error) {
	source := object.ToString(args[0])
	if re, ok := args[0].(*object.Regexp); ok {
		source = re.Source
	}
	flags := ""
	if len(args) > 1 && args[1] != object.UNDEFINED {
		flags = object.ToString(args[1])
	}
	return object.NewRegexp(source, flags)
}

func parseFloat(_ any, _ object.Object, args []object.Object) (object.Object, error) {
	return object.Number{Value: object.ParseFloatPrefix(object.ToString(args[0]))}, nil
}

var errProto = errors.New("object prototype may only be an object or null")

func createObjectFunctions() (*object.Map, error) {
	hasOwn, err := object.NewExtension(object.Extension{
		Name:     "hasOwnProperty",
		MinArgs:  1,
		MaxArgs:  1,
		Help:     "true if this has its own (not inherited) property of that name",
		Callback: hasOwnProperty,
	})
	if err != nil {
		return nil, err
	}
	res, err := makeObject(
		object.Extension{
			Name:    "create",
			MinArgs: 1,
			MaxArgs: 1,
			Help:    "returns a new empty object with the given prototype (object or null)",
			Callback: func(_ any, _ object.Object, args []object.Object) (object.Object, error) {
				switch p := args[0].(type) {
				case *object.Map:
					return object.NewMapWithProto(p), nil
				case object.Null:
					return object.NewMapWithProto(nil), nil
				}
				return nil, errProto
			},
		},
		object.Extension{
			Name:     "keys",
			MinArgs:  1,
			MaxArgs:  1,
			Help:     "returns the own enumerable property names",
			Callback: keys,
		},
		object.Extension{
			Name:    "getPrototypeOf",
			MinArgs: 1,
			MaxArgs: 1,
			Help:    "returns the prototype of an object, null if none",
			Callback: func(_ any, _ object.Object, args []object.Object) (object.Object, error) {
				if m, ok := args[0].(*object.Map); ok && m.Proto != nil {
					return m.Proto, nil
				}
				return object.NULL, nil
			},
		},
	)
	if err != nil {
		return nil, err
	}
	res.Set("prototype", object.MakeMap("hasOwnProperty", hasOwn))
	// also reachable as a method of every object.
	return res, object.AddMethod(object.MAP, *hasOwn)
}

func hasOwnProperty(_ any, this object.Object, args []object.Object) (object.Object, error) {
	name := object.ToString(args[0])
	switch o := this.(type) {
	case *object.Map:
		return object.NativeBoolToBooleanObject(o.HasOwn(name)), nil
	case *object.Array:
		if i, ok := object.ToIndex(args[0]); ok {
			return object.NativeBoolToBooleanObject(i < len(o.Elements)), nil
		}
		_, extra := o.Extra[name]
		return object.NativeBoolToBooleanObject(extra || name == "length"), nil
	case object.String:
		if i, ok := object.ToIndex(args[0]); ok {
			return object.NativeBoolToBooleanObject(i < len([]rune(o.Value))), nil
		}
		return object.NativeBoolToBooleanObject(name == "length"), nil
	}
	return object.FALSE, nil
}

func keys(_ any, _ object.Object, args []object.Object) (object.Object, error) {
	var names []string
	switch o := args[0].(type) {
	case *object.Map:
		names = o.Keys()
	case *object.Array:
		for i := range o.Elements {
			names = append(names, strconv.Itoa(i))
		}
		extra := make([]string, 0, len(o.Extra))
		for k := range o.Extra {
			extra = append(extra, k)
		}
		sort.Strings(extra)
		names = append(names, extra...)
	case object.String:
		for i := range []rune(o.Value) {
			names = append(names, strconv.Itoa(i))
		}
	}
	elements, err := object.MakeObjectSlice(len(names))
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		elements = append(elements, object.String{Value: n})
	}
	return object.NewArray(elements), nil
}
