package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition() *Definition {
	return &Definition{
		Transitions: []Transition{
			{From: "q0", Input: "a", Top: "Z0", To: "q0", Push: Symbols("A", "Z0")},
			{From: "q0", Input: "b", Top: "A", To: "q1"},
			{From: "q0", Input: "a", Top: "Z0", To: "q0", Push: Symbols("A", "Z0")},
		},
		FinalStates: []string{"q1"},
	}
}

func TestDefinition_Normalize(t *testing.T) {
	def := sampleDefinition().Normalize()

	assert.Equal(t, DefaultInitialState, def.InitialState)
	assert.Equal(t, DefaultInitialStack, def.InitialStack)
	assert.Equal(t, []string{"q0", "q1"}, def.States)
	assert.Equal(t, Symbols("a", "b"), def.InputSymbols)
	assert.Equal(t, Symbols("A", "Z0"), def.StackSymbols)
	assert.Len(t, def.Transitions, 2, "duplicate rules collapse")
	require.NoError(t, def.Validate())
}

func TestDefinition_NormalizeAddsImpliedMembers(t *testing.T) {
	def := (&Definition{
		InitialState: "s",
		InitialStack: "B",
		FinalStates:  []string{"f"},
	}).Normalize()

	assert.Contains(t, def.States, "s")
	assert.Contains(t, def.States, "f")
	assert.Contains(t, def.StackSymbols, Symbol("B"))
	assert.NoError(t, def.Validate())
}

func TestDefinition_Moves(t *testing.T) {
	raw := sampleDefinition()
	def := raw.Normalize()

	moves := def.Moves("q0", "a", "Z0")
	require.Len(t, moves, 1)
	assert.Equal(t, "q0", moves[0].To)
	assert.Equal(t, Symbols("A", "Z0"), moves[0].Push)

	assert.Empty(t, def.Moves("q0", Epsilon, "A"))
	assert.False(t, def.HasEpsilonMove("q0", "A"))
	assert.True(t, def.IsFinal("q1"))
	assert.False(t, def.IsFinal("q0"))

	// Without an index the lookup falls back to a scan.
	assert.Len(t, raw.Moves("q0", "a", "Z0"), 2)
}

func TestDefinition_ValidateRejectsIncompleteRules(t *testing.T) {
	def := (&Definition{
		Transitions: []Transition{{From: "q0", Input: "a", To: "q1"}},
	}).Normalize()

	err := def.Validate()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestTransition_String(t *testing.T) {
	assert.Equal(t, "d(q0,a,Z0)=(q0,AZ0)", Transition{From: "q0", Input: "a", Top: "Z0", To: "q0", Push: Symbols("A", "Z0")}.String())
	assert.Equal(t, "d(q1,ε,Z0)=(q2,ε)", Transition{From: "q1", Top: "Z0", To: "q2"}.String())
}
