package object

import (
	"sort"

	"fortio.org/log"
)

// Environment is one scope: a program or one function call. Blocks don't
// get their own.
type Environment struct {
	store map[string]Object
	outer *Environment
	name  string // function name for stack traces.
	// frozen environments (the root one) reject assignment.
	frozen bool
}

// NewRootEnvironment holds the registered root identifiers (host capabilities).
func NewRootEnvironment() *Environment {
	s := initialIdentifiersCopy()
	return &Environment{store: s, frozen: true}
}

func NewEnclosedEnvironment(outer *Environment, name string) *Environment {
	return &Environment{store: make(map[string]Object), outer: outer, name: name}
}

func (e *Environment) Name() string {
	return e.name
}

func (e *Environment) Parent() *Environment {
	return e.outer
}

// Get resolves name along the parent chain.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name]; ok {
			return obj, true
		}
	}
	return UNDEFINED, false
}

// Define creates (or overwrites) a binding in this very environment.
func (e *Environment) Define(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Assign updates the binding in the nearest environment that owns name.
// Returns false, and changes nothing, if no environment does or if the
// owner is frozen. found tells the two cases apart.
func (e *Environment) Assign(name string, val Object) (ok bool, found bool) {
	for env := e; env != nil; env = env.outer {
		if _, exists := env.store[name]; exists {
			if env.frozen {
				log.Debugf("Assign(%s) rejected, owner is frozen", name)
				return false, true
			}
			env.store[name] = val
			return true, true
		}
	}
	return false, false
}

// Names returns the sorted names defined directly in this environment.
func (e *Environment) Names() []string {
	res := make([]string, 0, len(e.store))
	for k := range e.store {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
