package eval

import (
	"io"
	"os"

	"fortio.org/log"
	"grol.io/jsi/ast"
	"grol.io/jsi/object"
	"grol.io/jsi/parser"
)

// Exported part of the eval package.

// DefaultMaxDepth is the default maximum number of nested calls. Each
// call uses a handful of Go frames per nested expression so this stays
// well clear of the goroutine stack limit.
const DefaultMaxDepth = 10_000

type State struct {
	Out io.Writer
	// Global is the receiver (this) of bare function calls: an object
	// holding the root capabilities.
	Global *object.Map
	// Max number of nested calls, default DefaultMaxDepth.
	MaxDepth int
	env      *object.Environment
	rootEnv  *object.Environment // host capabilities only, never assigned to.
	globals  *object.Environment // top level scope of programs, child of rootEnv.
	depth    int
	frames   []string
	modules  map[string]object.Object
}

// NewState creates an evaluator whose root scope holds the identifiers
// registered so far (see the extensions package).
func NewState() *State {
	root := object.NewRootEnvironment()
	st := &State{
		Out:      os.Stdout,
		Global:   object.NewMap(),
		MaxDepth: DefaultMaxDepth,
		rootEnv:  root,
		modules:  make(map[string]object.Object),
	}
	for _, name := range root.Names() {
		v, _ := root.Get(name)
		st.Global.Set(name, v)
	}
	st.globals = object.NewEnclosedEnvironment(root, "")
	st.env = st.globals
	return st
}

// Reset drops the top level bindings (and module cache), keeping the root
// capabilities.
func (s *State) Reset() {
	s.globals = object.NewEnclosedEnvironment(s.rootEnv, "")
	s.env = s.globals
	s.depth = 0
	s.frames = nil
	s.modules = make(map[string]object.Object)
}

// RootEnv is the scope holding only the host capabilities, parent of
// every program and module scope.
func (s *State) RootEnv() *object.Environment {
	return s.rootEnv
}

// Globals returns the sorted names declared at top level.
func (s *State) Globals() []string {
	return s.globals.Names()
}

// Module returns the cached value of an already loaded module.
func (s *State) Module(name string) (object.Object, bool) {
	v, ok := s.modules[name]
	return v, ok
}

func (s *State) SetModule(name string, value object.Object) {
	s.modules[name] = value
}

// DeleteModule forgets a module, e.g. one that failed while loading, so the
// next require runs it again.
func (s *State) DeleteModule(name string) {
	delete(s.modules, name)
}

// Eval runs a parsed program (or any node) in the top level scope and
// returns its completion value: the value of the last statement, or of
// the top level return that ended it.
func (s *State) Eval(node ast.Node) (object.Object, error) {
	return s.EvalIn(s.globals, node)
}

// EvalIn is Eval in the given scope, e.g. a fresh child of RootEnv for a module.
func (s *State) EvalIn(env *object.Environment, node ast.Node) (object.Object, error) {
	saved := s.env
	s.env = env
	defer func() { s.env = saved }()
	result, err := s.evalInternal(node)
	if err != nil {
		log.LogVf("eval error: %v (stack %v)", err, StackOf(err))
		return nil, err
	}
	return unwrap(result), nil
}

// EvalString parses then evaluates code in the state's top level scope.
// Nothing is evaluated if the code doesn't parse.
//
//nolint:revive // eval.EvalString is fine.
func EvalString(s *State, code string) (object.Object, error) {
	program, err := parser.Parse(code)
	if err != nil {
		return nil, err
	}
	return s.Eval(program)
}

// Invoke calls fn (a script or native function) with the given receiver
// and arguments. Used by native functions that take callbacks.
func (s *State) Invoke(fn object.Object, this object.Object, args []object.Object) (object.Object, error) {
	return s.apply(fn, this, args, "function")
}

func unwrap(o object.Object) object.Object {
	switch v := o.(type) {
	case object.ReturnValue:
		return v.Value
	case object.BreakSignal:
		return object.UNDEFINED
	default:
		return o
	}
}
