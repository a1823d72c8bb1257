package eval

import (
	"errors"
	"fmt"

	"grol.io/jsi/object"
)

// ErrMaxDepth is returned when calls nest deeper than State.MaxDepth.
var ErrMaxDepth = errors.New("maximum call depth exceeded")

// DepthError is ErrMaxDepth with the call stack at that point.
type DepthError struct {
	Frames
}

func (e *DepthError) Error() string {
	return ErrMaxDepth.Error()
}

func (e *DepthError) Unwrap() error {
	return ErrMaxDepth
}

// Frames is the call stack captured when a runtime error was created,
// innermost function first.
type Frames []string

func (f Frames) CallStack() []string {
	return f
}

// StackOf returns the call stack carried by err (or one it wraps), nil if none.
func StackOf(err error) []string {
	var st interface{ CallStack() []string }
	if errors.As(err, &st) {
		return st.CallStack()
	}
	return nil
}

// UnknownNameError is an assignment to a name no scope declared (or to a
// read only host binding when ReadOnly is set).
type UnknownNameError struct {
	Name     string
	ReadOnly bool
	Frames
}

func (e *UnknownNameError) Error() string {
	if e.ReadOnly {
		return "cannot assign to host binding " + e.Name
	}
	return "unknown name " + e.Name
}

// NotCallableError is a call of a value that isn't a function.
type NotCallableError struct {
	Callee string // source form of the callee expression.
	Value  object.Object
	Frames
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("%s is not a function (%s)", e.Callee, e.Value.Type())
}

// UndefinedPropertyError is a property read or write on undefined or null.
type UndefinedPropertyError struct {
	Property string
	Value    object.Object
	Write    bool
	Frames
}

func (e *UndefinedPropertyError) Error() string {
	verb := "read"
	if e.Write {
		verb = "set"
	}
	return fmt.Sprintf("cannot %s property '%s' of %s", verb, e.Property, e.Value.Inspect())
}

// ThrowError carries the value of a throw statement, unchanged.
type ThrowError struct {
	Value object.Object
	Frames
}

func (e *ThrowError) Error() string {
	return object.ToString(e.Value)
}
