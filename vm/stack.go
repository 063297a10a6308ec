package vm

import "github.com/chazu/lispbc/value"

// Stack is the value stack shared by every sequence of one execution.
type Stack struct {
	items []value.Record
}

// NewStack returns a stack holding items, bottom first.
func NewStack(items ...value.Record) *Stack {
	return &Stack{items: append([]value.Record(nil), items...)}
}

// Push pushes r.
func (s *Stack) Push(r value.Record) {
	s.items = append(s.items, r)
}

// Pop removes and returns the top record.
func (s *Stack) Pop() (value.Record, bool) {
	if len(s.items) == 0 {
		return value.Record{}, false
	}
	top := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = value.Record{}
	s.items = s.items[:len(s.items)-1]
	return top, true
}

// Peek returns the top record without removing it.
func (s *Stack) Peek() (value.Record, bool) {
	if len(s.items) == 0 {
		return value.Record{}, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the stack depth.
func (s *Stack) Len() int {
	return len(s.items)
}

// Items returns a copy of the stack contents, bottom first.
func (s *Stack) Items() []value.Record {
	return append([]value.Record(nil), s.items...)
}
