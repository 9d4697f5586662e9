package simulation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anbn: δ(q0,a,Z0)=(q0,AZ0), δ(q0,b,A)=(q1,ε), F={q1}.
func anbn() *domain.Definition {
	return &domain.Definition{
		Transitions: []domain.Transition{
			{From: "q0", Input: "a", Top: "Z0", To: "q0", Push: domain.Symbols("A", "Z0")},
			{From: "q0", Input: "b", Top: "A", To: "q1"},
		},
		FinalStates: []string{"q1"},
	}
}

func run(t *testing.T, c *simulation.Controller) []simulation.Slab {
	t.Helper()
	var slabs []simulation.Slab
	for i := 0; i < 50; i++ {
		slab, err := c.Step(context.Background())
		require.NoError(t, err)
		slabs = append(slabs, slab)
		if slab.Status.Terminal() {
			return slabs
		}
	}
	t.Fatal("run did not finish")
	return nil
}

func TestController_Accepts(t *testing.T) {
	c := simulation.NewController(simulation.Fixed(anbn(), "ab"))
	assert.Equal(t, domain.StatusIdle, c.Status())

	slabs := run(t, c)

	require.Len(t, slabs, 4)
	for _, s := range slabs[:3] {
		assert.Equal(t, domain.StatusExploring, s.Status)
		assert.NotNil(t, s.Frontier)
	}
	last := slabs[3]
	assert.Equal(t, domain.StatusAccepted, last.Status)
	assert.Equal(t, simulation.AcceptedMarker, last.Text)
	require.NotNil(t, last.Accepting)
	assert.Equal(t, "Z0", last.Accepting.Stack.String())

	var all strings.Builder
	for _, s := range slabs {
		all.WriteString(s.Text)
	}
	assert.Equal(t, all.String(), c.Output())
	assert.True(t, strings.HasSuffix(c.Output(), "\n───────────\n\nACCEPTED!!!"))
	assert.Equal(t, 4, c.Steps())
	assert.Equal(t, []string{"q0", "q1"}, c.Visited())
}

func TestController_SingleChainForDeterministicRun(t *testing.T) {
	c := simulation.NewController(simulation.Fixed(anbn(), "ab"))
	run(t, c)

	out := c.Output()
	assert.NotContains(t, out, "├")
	assert.Equal(t, 3, strings.Count(out, "┌"))
	assert.Contains(t, out, "│S:q1                │")
}

func TestController_Rejects(t *testing.T) {
	c := simulation.NewController(simulation.Fixed(anbn(), "a"))
	slabs := run(t, c)

	assert.Equal(t, domain.StatusRejected, c.Status())
	assert.Equal(t, simulation.RejectedMarker, slabs[len(slabs)-1].Text)
}

func TestController_AcceptsOnEmptiedStack(t *testing.T) {
	popIntoFinal := &domain.Definition{
		Transitions: []domain.Transition{{From: "q0", Input: "a", Top: "Z0", To: "q1"}},
		FinalStates: []string{"q1"},
	}
	c := simulation.NewController(simulation.Fixed(popIntoFinal, "a"))
	slabs := run(t, c)

	require.Len(t, slabs, 3)
	assert.Equal(t, domain.StatusAccepted, c.Status())
	require.NotNil(t, slabs[2].Accepting)
	assert.True(t, slabs[2].Accepting.Stack.IsEmpty())
	assert.Contains(t, slabs[1].Text, "│Z:"+strings.Repeat(" ", 18)+"│", "the emptied stack is drawn")
}

func TestController_RejectsEmptiedStackOutsideFinalState(t *testing.T) {
	popIntoNonFinal := &domain.Definition{
		Transitions: []domain.Transition{
			{From: "q0", Input: "a", Top: "Z0", To: "q1"},
			{From: "q1", Top: "Z0", To: "q2", Push: domain.Symbols("Z0")},
		},
		FinalStates: []string{"q2"},
	}
	c := simulation.NewController(simulation.Fixed(popIntoNonFinal, "a"))
	slabs := run(t, c)

	require.Len(t, slabs, 3)
	assert.Equal(t, domain.StatusRejected, c.Status())
	assert.Equal(t, simulation.RejectedMarker, slabs[2].Text)
}

func TestController_FinishedStepIsNoop(t *testing.T) {
	c := simulation.NewController(simulation.Fixed(anbn(), "ab"))
	run(t, c)
	before := c.Output()

	slab, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slab.Text)
	assert.Equal(t, domain.StatusAccepted, slab.Status)
	assert.Equal(t, before, c.Output())
	assert.Equal(t, 4, c.Steps())
}

func TestController_InitializeFailures(t *testing.T) {
	t.Run("Source error", func(t *testing.T) {
		boom := errors.New("boom")
		c := simulation.NewController(simulation.SourceFunc(func(context.Context) (simulation.Setup, error) {
			return simulation.Setup{}, boom
		}))
		_, err := c.Step(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, domain.StatusIdle, c.Status())
	})

	t.Run("Invalid definition", func(t *testing.T) {
		broken := &domain.Definition{Transitions: []domain.Transition{{From: "q0", Input: "a", To: "q1"}}}
		c := simulation.NewController(simulation.Fixed(broken, "a"))
		err := c.Initialize(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
		assert.Equal(t, domain.StatusIdle, c.Status())
	})

	t.Run("No source", func(t *testing.T) {
		c := simulation.NewController(nil)
		assert.Error(t, c.Initialize(context.Background()))
	})
}

func TestController_SourceIsReadOnInitialize(t *testing.T) {
	input := "a"
	c := simulation.NewController(simulation.SourceFunc(func(context.Context) (simulation.Setup, error) {
		return simulation.Setup{Definition: anbn(), Input: input}, nil
	}))
	run(t, c)
	assert.Equal(t, domain.StatusRejected, c.Status())

	input = "ab"
	c.Reset()
	run(t, c)
	assert.Equal(t, domain.StatusAccepted, c.Status())
}

func TestController_StopClearsEverything(t *testing.T) {
	c := simulation.NewController(simulation.Fixed(anbn(), "ab"))
	first, err := c.Step(context.Background())
	require.NoError(t, err)
	_, err = c.Step(context.Background())
	require.NoError(t, err)

	c.Stop()
	assert.Equal(t, domain.StatusIdle, c.Status())
	assert.Empty(t, c.Output())
	assert.Zero(t, c.Steps())
	assert.Nil(t, c.Definition())

	again, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Text, again.Text, "a fresh run starts from the root")
}

func TestController_Replay(t *testing.T) {
	reference := simulation.NewController(simulation.Fixed(anbn(), "ab"))
	_, _ = reference.Step(context.Background())
	_, _ = reference.Step(context.Background())

	c := simulation.NewController(simulation.Fixed(anbn(), "ab"))
	require.NoError(t, c.Replay(context.Background(), 2))
	assert.Equal(t, reference.Output(), c.Output())
	assert.Equal(t, domain.StatusExploring, c.Status())

	require.NoError(t, c.Replay(context.Background(), 100))
	assert.Equal(t, domain.StatusAccepted, c.Status())
	assert.Equal(t, 4, c.Steps())
}

func TestController_ExplorationLimitAborts(t *testing.T) {
	loop := &domain.Definition{
		Transitions: []domain.Transition{{From: "q0", Top: "Z0", To: "q0", Push: domain.Symbols("Z0", "Z0")}},
	}
	c := simulation.NewController(simulation.Fixed(loop, ""), simulation.WithLimits(2, 0))

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		_, err = c.Step(context.Background())
	}
	assert.ErrorIs(t, err, domain.ErrExplorationLimit)
	assert.Equal(t, domain.StatusIdle, c.Status())
	assert.Empty(t, c.Output())
}

func TestController_CanceledStepKeepsRun(t *testing.T) {
	c := simulation.NewController(simulation.Fixed(anbn(), "ab"))
	_, err := c.Step(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Step(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusExploring, c.Status())
	assert.Equal(t, 1, c.Steps())
}

func TestController_Play(t *testing.T) {
	var mu sync.Mutex
	var slabs []simulation.Slab
	c := simulation.NewController(simulation.Fixed(anbn(), "ab"),
		simulation.WithSlabHandler(func(s simulation.Slab) {
			mu.Lock()
			defer mu.Unlock()
			slabs = append(slabs, s)
		}),
	)

	c.Play(time.Millisecond)

	require.Eventually(t, func() bool {
		return c.Status() == domain.StatusAccepted
	}, time.Second, time.Millisecond)
	assert.False(t, c.Playing())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, slabs, 4)
	assert.Equal(t, domain.StatusAccepted, slabs[3].Status)
}

func TestController_PlayReportsErrors(t *testing.T) {
	errs := make(chan error, 1)
	c := simulation.NewController(simulation.Fixed(nil, "ab"),
		simulation.WithErrorHandler(func(err error) { errs <- err }),
	)

	c.Play(time.Millisecond)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
	case <-time.After(time.Second):
		t.Fatal("error handler not called")
	}
	assert.False(t, c.Playing())
}

func TestController_PauseAndStopHaltPlay(t *testing.T) {
	loop := &domain.Definition{
		Transitions: []domain.Transition{
			{From: "q0", Top: "Z0", To: "q0", Push: domain.Symbols("A", "Z0")},
			{From: "q0", Top: "A", To: "q0", Push: domain.Symbols("A", "A")},
		},
	}
	c := simulation.NewController(simulation.Fixed(loop, ""))

	c.Play(time.Millisecond)
	require.Eventually(t, func() bool { return c.Steps() >= 3 }, time.Second, time.Millisecond)

	c.Pause()
	assert.False(t, c.Playing())
	paused := c.Steps()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, paused, c.Steps())
	assert.Equal(t, domain.StatusExploring, c.Status())

	c.Play(time.Millisecond)
	require.Eventually(t, func() bool { return c.Steps() > paused }, time.Second, time.Millisecond)

	c.Stop()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.StatusIdle, c.Status())
	assert.Zero(t, c.Steps())
}

func TestIntervalFromMillis(t *testing.T) {
	assert.Equal(t, simulation.DefaultInterval, simulation.IntervalFromMillis(0))
	assert.Equal(t, simulation.DefaultInterval, simulation.IntervalFromMillis(-5))
	assert.Equal(t, 250*time.Millisecond, simulation.IntervalFromMillis(250))
}
