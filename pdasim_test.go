package pdasim_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/pkg/adapters/memory"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anbn() *domain.Blueprint {
	return &domain.Blueprint{
		ID: "anbn",
		Rules: []string{
			"d(q0,a,Z0)=(q0,AZ0)",
			"d(q0,a,A)=(q0,AA)",
			"d(q0,b,A)=(q1,ε)",
			"d(q1,b,A)=(q1,ε)",
			"d(q1,ε,Z0)=(f,Z0)",
		},
		Final: []string{"f"},
		Examples: []domain.Example{
			{Input: "aabb", Expect: domain.ExpectAccept},
			{Input: "aab", Expect: domain.ExpectReject},
			{Input: "ab"},
			{Input: "abb", Expect: domain.ExpectAccept},
		},
	}
}

func newEngine(t *testing.T, opts ...pdasim.Option) *pdasim.Engine {
	t.Helper()
	eng, err := pdasim.New("", opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_Simulate(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	snap, err := eng.Simulate(ctx, anbn(), "aabb")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, snap.Status)
	assert.True(t, strings.HasSuffix(snap.Output, simulation.AcceptedMarker))
	assert.Positive(t, snap.Steps)

	snap, err = eng.Simulate(ctx, anbn(), "aab")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, snap.Status)
	assert.True(t, strings.HasSuffix(snap.Output, simulation.RejectedMarker))
}

func TestEngine_Simulate_InvalidRules(t *testing.T) {
	eng := newEngine(t)
	_, err := eng.Simulate(context.Background(), &domain.Blueprint{Rules: []string{"not a rule"}}, "a")
	require.Error(t, err)
}

func TestEngine_Simulate_Limits(t *testing.T) {
	eng := newEngine(t, pdasim.WithLimits(8, 0))
	bp := &domain.Blueprint{Rules: []string{"d(q0,ε,Z0)=(q0,Z0Z0)"}}

	_, err := eng.Simulate(context.Background(), bp, "")
	assert.ErrorIs(t, err, domain.ErrExplorationLimit)
}

func TestEngine_Validate(t *testing.T) {
	eng := newEngine(t)
	results, err := eng.Validate(context.Background(), anbn())
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Passed)
	assert.True(t, results[1].Passed)
	assert.Equal(t, domain.StatusAccepted, results[2].Status)
	assert.True(t, results[2].Passed, "no expectation passes on any verdict")
	assert.False(t, results[3].Passed)
	assert.Equal(t, domain.StatusRejected, results[3].Status)
}

func TestEngine_Graph(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	plain, err := eng.Graph(ctx, anbn(), "")
	require.NoError(t, err)
	assert.Contains(t, plain, "f(((\"f\")))")
	assert.NotContains(t, plain, "classDef")

	overlaid, err := eng.Graph(ctx, anbn(), "ab")
	require.NoError(t, err)
	assert.Contains(t, overlaid, "class q0 visited;")
	assert.Contains(t, overlaid, "class q1 visited;")
	assert.Contains(t, overlaid, "class f current;")
}

func TestEngine_Sessions(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	snap, err := eng.StartSession(ctx, "s1", anbn(), "aabb")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, snap.Status)

	snap, err = eng.StepSession(ctx, "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Steps)
	assert.Equal(t, domain.StatusExploring, snap.Status)
	first := snap.Output

	snap, err = eng.StepSession(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Steps)
	assert.True(t, strings.HasPrefix(snap.Output, first), "output only grows")

	snap, err = eng.StepSession(ctx, "s1", 100)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, snap.Status)

	direct, err := eng.Simulate(ctx, anbn(), "aabb")
	require.NoError(t, err)
	assert.Equal(t, direct.Output, snap.Output, "stepping a stored session matches a direct run")
	assert.Equal(t, direct.Steps, snap.Steps)

	again, err := eng.StepSession(ctx, "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, snap.Steps, again.Steps, "finished sessions do not move")

	reset, err := eng.ResetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, reset.Status)
	assert.Empty(t, reset.Output)

	ids, err := eng.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, eng.DeleteSession(ctx, "s1"))
	_, err = eng.Session(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = eng.StepSession(ctx, "s1", 1)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestEngine_StartSession_GeneratesID(t *testing.T) {
	eng := newEngine(t)
	snap, err := eng.StartSession(context.Background(), "", anbn(), "ab")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.SessionID)

	_, err = eng.StartSession(context.Background(), "x", &domain.Blueprint{Rules: []string{"d(q0"}}, "")
	assert.Error(t, err, "blueprints are compiled before they are stored")
}

func TestEngine_Restore(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.StartSession(ctx, "r", anbn(), "aabb")
	require.NoError(t, err)
	stored, err := eng.StepSession(ctx, "r", 2)
	require.NoError(t, err)

	ctrl, err := eng.Restore(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, stored.Output, ctrl.Output())
	assert.Equal(t, 2, ctrl.Steps())

	_, err = eng.Restore(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_LoaderAndHooks(t *testing.T) {
	loader, err := memory.NewLoader(anbn())
	require.NoError(t, err)

	outcomes := 0
	hooks := domain.LifecycleHooks{
		OnOutcome: func(context.Context, *domain.OutcomeEvent) { outcomes++ },
	}
	eng := newEngine(t, pdasim.WithLoader(loader), pdasim.WithLifecycleHooks(hooks))
	ctx := context.Background()

	bp, err := eng.Blueprint(ctx, "anbn")
	require.NoError(t, err)
	_, err = eng.Simulate(ctx, bp, "ab")
	require.NoError(t, err)
	assert.Equal(t, 1, outcomes)

	ids, err := eng.Blueprints(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"anbn"}, ids)

	_, err = eng.Watch(ctx)
	assert.Error(t, err, "the memory loader cannot be watched")
}

func TestEngine_CellSize(t *testing.T) {
	eng := newEngine(t, pdasim.WithCellSize(1, 4))
	snap, err := eng.Simulate(context.Background(), anbn(), "ab")
	require.NoError(t, err)

	wide := newEngine(t)
	wideSnap, err := wide.Simulate(context.Background(), anbn(), "ab")
	require.NoError(t, err)
	assert.Less(t, len(snap.Output), len(wideSnap.Output))
}
