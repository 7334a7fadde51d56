package util

// Stack is a LIFO used in place of recursion by every tree traversal,
// so machine-generated formulas with unbounded nesting never exhaust the goroutine stack.
type Stack[A any] struct {
	items []A
}

func NewStack[A any](capacity int) *Stack[A] {
	return &Stack[A]{items: make([]A, 0, capacity)}
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	lastIndex := len(s.items) - 1
	ret = s.items[lastIndex]
	var zero A
	s.items[lastIndex] = zero
	s.items = s.items[:lastIndex]
	return ret, true
}

// Peek returns the top of the stack without removing it
func (s *Stack[A]) Peek() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	return s.items[len(s.items)-1], true
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}
