package domain

import "strings"

// stackKeySep separates symbols in content keys so that "A"+"Z0" and "AZ"+"0" never collide.
const stackKeySep = "\x1f"

// Stack is an ordered symbol sequence whose index 0 is the top.
// Stacks are values: every operation returns a new Stack and leaves the receiver untouched.
type Stack []Symbol

// NewStack creates a stack from symbols listed top first.
func NewStack(topFirst ...Symbol) Stack {
	s := make(Stack, len(topFirst))
	copy(s, topFirst)
	return s
}

// Len returns the number of symbols on the stack.
func (s Stack) Len() int {
	return len(s)
}

// IsEmpty reports whether the stack holds no symbols.
func (s Stack) IsEmpty() bool {
	return len(s) == 0
}

// Top returns the top symbol. ok is false on an empty stack.
func (s Stack) Top() (top Symbol, ok bool) {
	if len(s) == 0 {
		return Epsilon, false
	}
	return s[0], true
}

// Pop returns the stack without its top symbol. Popping an empty stack returns an empty stack.
func (s Stack) Pop() Stack {
	return s.Replace(nil)
}

// Replace swaps the top symbol for push, in left-to-right order: push[0] becomes the new top.
// An empty push pops the top with no replacement.
func (s Stack) Replace(push []Symbol) Stack {
	rest := s
	if len(rest) > 0 {
		rest = rest[1:]
	}
	next := make(Stack, 0, len(push)+len(rest))
	next = append(next, push...)
	next = append(next, rest...)
	return next
}

// String concatenates the symbols top first, e.g. "AZ0".
func (s Stack) String() string {
	return JoinSymbols(s)
}

// Key returns an unambiguous encoding of the stack used for content equality.
func (s Stack) Key() string {
	parts := make([]string, len(s))
	for i, sym := range s {
		parts[i] = string(sym)
	}
	return strings.Join(parts, stackKeySep)
}
