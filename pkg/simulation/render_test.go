package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/pdasim/internal/presentation/tree"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingDefinition() *domain.Definition {
	return &domain.Definition{
		Transitions: []domain.Transition{
			{From: "q0", Input: "a", Top: "Z0", To: "q0", Push: domain.Symbols("A", "Z0")},
			{From: "q0", Input: "b", Top: "A", To: "q1"},
		},
		FinalStates: []string{"q1"},
	}
}

// breakLayout swaps in a renderer that never saw the root level, so the next frontier
// names a parent without a column.
func breakLayout(t *testing.T, c *Controller) {
	t.Helper()
	_, err := c.Step(context.Background())
	require.NoError(t, err)
	c.mu.Lock()
	c.renderer = tree.NewRenderer()
	c.mu.Unlock()
}

func TestController_BrokenLayoutAbortsStep(t *testing.T) {
	c := NewController(Fixed(countingDefinition(), "ab"))
	breakLayout(t, c)

	_, err := c.Step(context.Background())

	var inv *tree.InvariantError
	require.True(t, errors.As(err, &inv), "got %v", err)
	assert.Equal(t, 0, inv.ParentID)
	assert.Equal(t, domain.StatusIdle, c.Status())
	assert.Zero(t, c.Steps())
	assert.Empty(t, c.Output())

	slabs := 0
	for !c.Status().Terminal() && slabs < 10 {
		_, err := c.Step(context.Background())
		require.NoError(t, err, "a reset controller starts a clean run")
		slabs++
	}
	assert.Equal(t, domain.StatusAccepted, c.Status())
}

func TestController_BrokenLayoutDuringPlayReachesErrorHandler(t *testing.T) {
	errs := make(chan error, 1)
	c := NewController(Fixed(countingDefinition(), "ab"),
		WithErrorHandler(func(err error) { errs <- err }),
	)
	breakLayout(t, c)

	c.Play(time.Millisecond)

	select {
	case err := <-errs:
		var inv *tree.InvariantError
		assert.True(t, errors.As(err, &inv), "got %v", err)
	case <-time.After(time.Second):
		t.Fatal("error handler not called")
	}
	assert.False(t, c.Playing())
	assert.Equal(t, domain.StatusIdle, c.Status())
}
