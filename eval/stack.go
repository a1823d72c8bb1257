package eval

import (
	"fortio.org/log"
	"grol.io/jsi/object"
)

const anonymous = "(anonymous)"

// Stack returns the names of the functions currently being called,
// innermost first.
func (s *State) Stack() []string {
	stack := make([]string, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		stack = append(stack, s.frames[i])
	}
	log.Debugf("Stack() depth %d returning %v", s.depth, stack)
	return stack
}

func (s *State) push(name string) error {
	if s.depth >= s.MaxDepth {
		log.LogVf("max depth %d reached", s.MaxDepth)
		return &DepthError{Frames: s.Stack()}
	}
	if name == "" {
		name = anonymous
	}
	s.depth++
	s.frames = append(s.frames, name)
	return nil
}

func (s *State) pop() {
	s.depth--
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *State) unknownName(name string, readOnly bool) error {
	return &UnknownNameError{Name: name, ReadOnly: readOnly, Frames: s.Stack()}
}

func (s *State) notCallable(callee string, value object.Object) error {
	return &NotCallableError{Callee: callee, Value: value, Frames: s.Stack()}
}

func (s *State) undefinedProperty(property string, value object.Object, write bool) error {
	return &UndefinedPropertyError{Property: property, Value: value, Write: write, Frames: s.Stack()}
}

func (s *State) thrown(value object.Object) error {
	return &ThrowError{Value: value, Frames: s.Stack()}
}
