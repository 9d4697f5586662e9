package dsl

import "github.com/aretw0/pdasim/pkg/domain"

// StateBuilder provides a fluent API for the moves leaving one state.
type StateBuilder struct {
	name    string
	builder *Builder
	final   bool
}

// On starts a move that reads input with top on the stack.
// An empty input is an ε-move.
func (s *StateBuilder) On(input, top string) *MoveBuilder {
	return &MoveBuilder{from: s, input: domain.Symbol(input), top: domain.Symbol(top)}
}

// Epsilon starts a move that reads nothing with top on the stack.
func (s *StateBuilder) Epsilon(top string) *MoveBuilder {
	return s.On("", top)
}

// Final marks the state as accepting.
func (s *StateBuilder) Final() *StateBuilder {
	s.final = true
	return s
}

// MoveBuilder completes a move started by StateBuilder.On.
type MoveBuilder struct {
	from  *StateBuilder
	input domain.Symbol
	top   domain.Symbol
}

// To finishes the move: go to state, replacing the top with push (first symbol on top).
// No push symbols pops the top.
func (m *MoveBuilder) To(state string, push ...string) *StateBuilder {
	b := m.from.builder
	b.State(state)
	b.transitions = append(b.transitions, domain.Transition{
		From:  m.from.name,
		Input: m.input,
		Top:   m.top,
		To:    state,
		Push:  domain.Symbols(push...),
	})
	return m.from
}
