package object

import (
	"errors"
	"fmt"
	"sort"
)

var (
	extraIdentifiers map[string]Object
	methods          map[Type]map[string]*Extension
	initDone         bool
)

// Callback implements a native function. env is the evaluator state
// (an [Invoker]), this the receiver of the call.
type Callback func(env any, this Object, args []Object) (Object, error)

// Invoker calls a script or native function on behalf of a native one
// (e.g. Array map or String replace with a function).
type Invoker interface {
	Invoke(fn Object, this Object, args []Object) (Object, error)
}

// Extension is a native (host) function value.
type Extension struct {
	Name     string
	MinArgs  int
	MaxArgs  int // -1 for variadic; extra arguments are ignored.
	Help     string
	Callback Callback
}

func (e *Extension) Type() Type      { return EXTENSION }
func (e *Extension) Inspect() string { return "[Function: " + e.Name + "]" }

// Init resets the tables of root identifiers and methods to empty.
// Optional, will be called on demand the first time through the other functions.
func Init() {
	extraIdentifiers = make(map[string]Object)
	methods = make(map[Type]map[string]*Extension)
	initDone = true
}

// NewExtension validates and returns a native function value, for use as
// a property of some host object.
func NewExtension(cmd Extension) (*Extension, error) {
	if cmd.Name == "" {
		return nil, errors.New("empty extension name")
	}
	if cmd.Callback == nil {
		return nil, errors.New(cmd.Name + ": nil callback")
	}
	if cmd.MaxArgs != -1 && cmd.MinArgs > cmd.MaxArgs {
		return nil, errors.New(cmd.Name + ": min args > max args")
	}
	return &cmd, nil
}

// CreateFunction adds a native function to the root identifiers.
func CreateFunction(cmd Extension) error {
	ext, err := NewExtension(cmd)
	if err != nil {
		return err
	}
	if _, ok := extraIdentifiers[cmd.Name]; ok {
		return errors.New(cmd.Name + ": already defined")
	}
	AddIdentifier(cmd.Name, ext)
	return nil
}

// AddIdentifier adds a value to the root environment e.g "console" -> {log: ...}.
func AddIdentifier(name string, value Object) {
	if !initDone {
		Init()
	}
	extraIdentifiers[name] = value
}

// AddMethod registers a host method for all values of the given type
// (e.g. "push" on arrays), found by property lookup on such values.
func AddMethod(t Type, cmd Extension) error {
	if !initDone {
		Init()
	}
	ext, err := NewExtension(cmd)
	if err != nil {
		return err
	}
	if methods[t] == nil {
		methods[t] = make(map[string]*Extension)
	}
	if _, ok := methods[t][cmd.Name]; ok {
		return fmt.Errorf("%s: method already defined for %s", cmd.Name, t)
	}
	methods[t][cmd.Name] = ext
	return nil
}

func Method(t Type, name string) (*Extension, bool) {
	ext, ok := methods[t][name]
	return ext, ok
}

// Identifiers returns the sorted names of the root identifiers.
func Identifiers() []string {
	res := make([]string, 0, len(extraIdentifiers))
	for k := range extraIdentifiers {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// This makes a copy of the extraIdentifiers map to serve as initial Environment without mutating the original.
// use to setup the root environment for the interpreter state.
func initialIdentifiersCopy() map[string]Object {
	if !initDone {
		Init()
	}
	copied := make(map[string]Object, len(extraIdentifiers))
	for k, v := range extraIdentifiers {
		copied[k] = v
	}
	return copied
}

// CheckArgs validates the argument count of a native call.
func (e *Extension) CheckArgs(args []Object) error {
	if len(args) < e.MinArgs {
		return fmt.Errorf("%s: wrong number of arguments got=%d, expected at least %d", e.Name, len(args), e.MinArgs)
	}
	return nil
}
