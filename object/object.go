package object

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"grol.io/jsi/ast"
)

type Type uint8

type Object interface {
	Type() Type
	Inspect() string
}

const (
	UNKNOWN Type = iota
	UNDEF
	NIL
	NUMBER
	STRING
	BOOLEAN
	ARRAY
	MAP
	REGEXP
	FUNC
	EXTENSION
	RETURN // control flow signal, never a script visible value.
	BREAK  // same.
	LAST
)

var typeNames = [...]string{
	UNKNOWN:   "unknown",
	UNDEF:     "undefined",
	NIL:       "null",
	NUMBER:    "number",
	STRING:    "string",
	BOOLEAN:   "boolean",
	ARRAY:     "array",
	MAP:       "object",
	REGEXP:    "regexp",
	FUNC:      "function",
	EXTENSION: "function",
	RETURN:    "return",
	BREAK:     "break",
	LAST:      "last",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

var (
	UNDEFINED = Undefined{}
	NULL      = Null{}
	TRUE      = Boolean{Value: true}
	FALSE     = Boolean{Value: false}
	BREAKING  = BreakSignal{}
)

func NativeBoolToBooleanObject(input bool) Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

type Undefined struct{}

func (u Undefined) Type() Type      { return UNDEF }
func (u Undefined) Inspect() string { return "undefined" }

type Null struct{}

func (n Null) Type() Type      { return NIL }
func (n Null) Inspect() string { return "null" }

type Number struct {
	Value float64
}

func (n Number) Type() Type      { return NUMBER }
func (n Number) Inspect() string { return FormatNumber(n.Value) }

type Boolean struct {
	Value bool
}

func (b Boolean) Type() Type      { return BOOLEAN }
func (b Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s String) Type() Type      { return STRING }
func (s String) Inspect() string { return strconv.Quote(s.Value) }

// Array is shared by reference, like in the scripts.
type Array struct {
	Elements []Object
	Extra    map[string]Object // named properties, e.g. index of a match result.
}

func NewArray(elements []Object) *Array {
	return &Array{Elements: elements}
}

func (ao *Array) Type() Type      { return ARRAY }
func (ao *Array) Inspect() string { return inspect(ao, nil) }

// Get returns the element at i or undefined when out of range.
func (ao *Array) Get(i int) Object {
	if i < 0 || i >= len(ao.Elements) {
		return UNDEFINED
	}
	return ao.Elements[i]
}

// Set writes element i, growing the array with undefined as needed.
func (ao *Array) Set(i int, v Object) {
	for len(ao.Elements) <= i {
		ao.Elements = append(ao.Elements, UNDEFINED)
	}
	ao.Elements[i] = v
}

// SetLength truncates or pads (with undefined) to n elements.
func (ao *Array) SetLength(n int) {
	if n < len(ao.Elements) {
		ao.Elements = ao.Elements[:n]
		return
	}
	for len(ao.Elements) < n {
		ao.Elements = append(ao.Elements, UNDEFINED)
	}
}

// Regexp is a compiled regular expression value. LastIndex is the (rune)
// position the next global exec/test starts from.
type Regexp struct {
	Source    string
	Flags     string
	Re        *regexp2.Regexp
	LastIndex int
}

func (r *Regexp) Type() Type      { return REGEXP }
func (r *Regexp) Inspect() string { return "/" + r.Source + "/" + r.Flags }

func (r *Regexp) Global() bool {
	return strings.Contains(r.Flags, "g")
}

// Function is a closure: the function node plus the environment it was
// defined in.
type Function struct {
	Literal *ast.FunctionLiteral
	Env     *Environment
}

func (f *Function) Type() Type { return FUNC }

func (f *Function) Name() string {
	return f.Literal.Name
}

func (f *Function) Inspect() string {
	if f.Literal.Name == "" {
		return "[Function (anonymous)]"
	}
	return "[Function: " + f.Literal.Name + "]"
}

type ReturnValue struct {
	Value Object
}

func (rv ReturnValue) Type() Type      { return RETURN }
func (rv ReturnValue) Inspect() string { return rv.Value.Inspect() }

type BreakSignal struct{}

func (bs BreakSignal) Type() Type      { return BREAK }
func (bs BreakSignal) Inspect() string { return "break" }

// IsCallable is true for closures and native functions.
func IsCallable(o Object) bool {
	t := o.Type()
	return t == FUNC || t == EXTENSION
}

// Inspect variant used by console.log: top level strings are printed raw.
func Display(o Object) string {
	if s, ok := o.(String); ok {
		return s.Value
	}
	return o.Inspect()
}

func inspect(o Object, seen map[Object]bool) string {
	switch v := o.(type) {
	case *Array:
		if seen[v] {
			return "[Circular]"
		}
		seen = markSeen(seen, v)
		out := strings.Builder{}
		out.WriteString("[")
		for i, e := range v.Elements {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(inspect(e, seen))
		}
		out.WriteString("]")
		delete(seen, v)
		return out.String()
	case *Map:
		if seen[v] {
			return "[Circular]"
		}
		seen = markSeen(seen, v)
		out := strings.Builder{}
		out.WriteString("{")
		for i, k := range v.keys {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(inspectKey(k))
			out.WriteString(": ")
			out.WriteString(inspect(v.store[k], seen))
		}
		out.WriteString("}")
		delete(seen, v)
		return out.String()
	default:
		return o.Inspect()
	}
}

func markSeen(seen map[Object]bool, o Object) map[Object]bool {
	if seen == nil {
		seen = make(map[Object]bool)
	}
	seen[o] = true
	return seen
}

func inspectKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := range len(k) {
		c := k[i]
		if !(c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || (i > 0 && '0' <= c && c <= '9')) {
			return strconv.Quote(k)
		}
	}
	return k
}
