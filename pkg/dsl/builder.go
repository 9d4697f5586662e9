package dsl

import (
	"fmt"

	"github.com/aretw0/pdasim/pkg/domain"
)

// Builder collects states and transitions in authored order.
type Builder struct {
	states       map[string]*StateBuilder
	order        []string
	transitions  []domain.Transition
	initialState string
	initialStack domain.Symbol
}

// New creates a new automaton builder with initial state q0 and initial stack symbol Z0.
func New() *Builder {
	return &Builder{
		states:       make(map[string]*StateBuilder),
		initialState: domain.DefaultInitialState,
		initialStack: domain.DefaultInitialStack,
	}
}

// Initial overrides the initial state and stack symbol.
func (b *Builder) Initial(state, stack string) *Builder {
	b.initialState = state
	b.initialStack = domain.Symbol(stack)
	b.State(state)
	return b
}

// State declares a state, or returns the existing builder for it.
func (b *Builder) State(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{name: name, builder: b}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Final declares each state as final.
func (b *Builder) Final(states ...string) *Builder {
	for _, s := range states {
		b.State(s).Final()
	}
	return b
}

func (b *Builder) definition() *domain.Definition {
	def := &domain.Definition{
		InitialState: b.initialState,
		InitialStack: b.initialStack,
		Transitions:  append([]domain.Transition(nil), b.transitions...),
	}
	for _, name := range b.order {
		def.States = append(def.States, name)
		if b.states[name].final {
			def.FinalStates = append(def.FinalStates, name)
		}
	}
	return def
}

// Build returns the normalized, validated Definition.
func (b *Builder) Build() (*domain.Definition, error) {
	def := b.definition().Normalize()
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build automaton: %w", err)
	}
	return def, nil
}

// Blueprint renders the automaton as rule text, ready to be stored by a loader.
// Custom initial symbols are not representable in rule text, so Blueprint fails unless the
// defaults q0 and Z0 are in use.
func (b *Builder) Blueprint(id, title string) (*domain.Blueprint, error) {
	if b.initialState != domain.DefaultInitialState || b.initialStack != domain.DefaultInitialStack {
		return nil, fmt.Errorf("%w: rule text always starts in %s with %s",
			domain.ErrInvalidDefinition, domain.DefaultInitialState, domain.DefaultInitialStack)
	}
	bp := &domain.Blueprint{ID: id, Title: title}
	for _, t := range b.transitions {
		bp.Rules = append(bp.Rules, t.String())
	}
	for _, name := range b.order {
		if b.states[name].final {
			bp.Final = append(bp.Final, name)
		}
	}
	return bp, nil
}
