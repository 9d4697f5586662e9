package domain

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// DefaultInitialState is the initial state used when a definition does not name one.
	DefaultInitialState = "q0"
	// DefaultInitialStack is the initial stack symbol used when a definition does not name one.
	DefaultInitialStack Symbol = "Z0"
)

// Key addresses the transition function: (state, input symbol or ε, stack top).
type Key struct {
	State string
	Input Symbol
	Top   Symbol
}

// Move is one nondeterministic choice of the transition function.
type Move struct {
	To   string   `json:"to" yaml:"to"`
	Push []Symbol `json:"push,omitempty" yaml:"push,omitempty"`
}

// Transition is a single authored rule δ(From, Input, Top) ∋ (To, Push).
type Transition struct {
	From  string   `json:"from" yaml:"from"`
	Input Symbol   `json:"input,omitempty" yaml:"input,omitempty"`
	Top   Symbol   `json:"top" yaml:"top"`
	To    string   `json:"to" yaml:"to"`
	Push  []Symbol `json:"push,omitempty" yaml:"push,omitempty"`
}

// Key returns the transition function entry this rule belongs to.
func (t Transition) Key() Key {
	return Key{State: t.From, Input: t.Input, Top: t.Top}
}

// Move returns the right-hand side of the rule.
func (t Transition) Move() Move {
	return Move{To: t.To, Push: t.Push}
}

// String renders the rule in the d(q,a,Z)=(p,XY) notation.
func (t Transition) String() string {
	push := JoinSymbols(t.Push)
	if push == "" {
		push = EpsilonGlyph
	}
	return fmt.Sprintf("d(%s,%s,%s)=(%s,%s)", t.From, t.Input, t.Top, t.To, push)
}

// Definition is the formal NPDA tuple. Acceptance is always by final state.
// A Definition is built once, normalized, and treated as immutable afterwards.
type Definition struct {
	States       []string     `json:"states" yaml:"states"`
	InputSymbols []Symbol     `json:"input_symbols" yaml:"input_symbols"`
	StackSymbols []Symbol     `json:"stack_symbols" yaml:"stack_symbols"`
	Transitions  []Transition `json:"transitions" yaml:"transitions"`
	InitialState string       `json:"initial_state" yaml:"initial_state"`
	InitialStack Symbol       `json:"initial_stack_symbol" yaml:"initial_stack_symbol"`
	FinalStates  []string     `json:"final_states" yaml:"final_states"`

	index  map[Key][]Move
	finals map[string]bool
}

// Normalize returns a copy in which the initial state, the initial stack symbol, the final
// states and every state and symbol named by a transition are members of their sets.
// Sets are sorted and de-duplicated, duplicate rules collapse, and the move index is built.
// Empty initial state or stack symbol fall back to q0 and Z0.
func (d *Definition) Normalize() *Definition {
	n := &Definition{
		InitialState: d.InitialState,
		InitialStack: d.InitialStack,
	}
	if n.InitialState == "" {
		n.InitialState = DefaultInitialState
	}
	if n.InitialStack == Epsilon {
		n.InitialStack = DefaultInitialStack
	}

	states := append([]string{n.InitialState}, d.States...)
	states = append(states, d.FinalStates...)
	inputs := slices.Clone(d.InputSymbols)
	stack := append([]Symbol{n.InitialStack}, d.StackSymbols...)

	n.index = make(map[Key][]Move)
	seen := make(map[string]bool)
	for _, t := range d.Transitions {
		id := t.String()
		if seen[id] {
			continue
		}
		seen[id] = true

		rule := Transition{From: t.From, Input: t.Input, Top: t.Top, To: t.To, Push: slices.Clone(t.Push)}
		n.Transitions = append(n.Transitions, rule)
		n.index[rule.Key()] = append(n.index[rule.Key()], rule.Move())

		states = append(states, t.From, t.To)
		inputs = append(inputs, t.Input)
		stack = append(stack, t.Top)
		stack = append(stack, t.Push...)
	}

	n.States = sortedUnique(states)
	n.FinalStates = sortedUnique(d.FinalStates)
	n.InputSymbols = sortedUnique(inputs)
	n.StackSymbols = sortedUnique(stack)

	n.finals = make(map[string]bool, len(n.FinalStates))
	for _, f := range n.FinalStates {
		n.finals[f] = true
	}
	return n
}

// Validate reports a definition that cannot be explored.
// It is meant to run after Normalize.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.InitialState) == "" {
		return fmt.Errorf("%w: missing initial state", ErrInvalidDefinition)
	}
	if d.InitialStack.IsEpsilon() {
		return fmt.Errorf("%w: missing initial stack symbol", ErrInvalidDefinition)
	}
	if !slices.Contains(d.States, d.InitialState) {
		return fmt.Errorf("%w: initial state %q is not a member of the state set", ErrInvalidDefinition, d.InitialState)
	}
	if !slices.Contains(d.StackSymbols, d.InitialStack) {
		return fmt.Errorf("%w: initial stack symbol %q is not a member of the stack alphabet", ErrInvalidDefinition, d.InitialStack)
	}
	for _, t := range d.Transitions {
		if t.From == "" || t.To == "" || t.Top.IsEpsilon() {
			return fmt.Errorf("%w: incomplete rule %s", ErrInvalidDefinition, t)
		}
	}
	return nil
}

// Moves returns the moves declared for (state, input, top), in authored order.
func (d *Definition) Moves(state string, input Symbol, top Symbol) []Move {
	key := Key{State: state, Input: input, Top: top}
	if d.index != nil {
		return d.index[key]
	}
	var moves []Move
	for _, t := range d.Transitions {
		if t.Key() == key {
			moves = append(moves, t.Move())
		}
	}
	return moves
}

// HasEpsilonMove reports whether some ε-move applies to (state, top).
func (d *Definition) HasEpsilonMove(state string, top Symbol) bool {
	return len(d.Moves(state, Epsilon, top)) > 0
}

// IsFinal reports whether state belongs to the final state set.
func (d *Definition) IsFinal(state string) bool {
	if d.finals != nil {
		return d.finals[state]
	}
	return slices.Contains(d.FinalStates, state)
}

// sortedUnique sorts, de-duplicates and drops empty values (ε never belongs to an alphabet).
func sortedUnique[T ~string](in []T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
