package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnFrontier(ctx, &domain.FrontierEvent{Depth: 0, Size: 1})
	hooks.OnFrontier(ctx, &domain.FrontierEvent{Depth: 1, Size: 3, Merged: 1, Pruned: 2})
	hooks.OnOutcome(ctx, &domain.OutcomeEvent{Outcome: domain.OutcomeAccepted, Depth: 1})
	hooks.OnOutcome(ctx, &domain.OutcomeEvent{Outcome: domain.OutcomeRejected, Depth: 4})
	hooks.OnOutcome(ctx, &domain.OutcomeEvent{Outcome: domain.OutcomeRejected, Depth: 2})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Frontiers))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Configurations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Merged))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Pruned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("rejected")))

	count, err := testutil.GatherAndCount(reg, "pdasim_frontier_size")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NewMetrics(nil).Hooks().OnFrontier(context.Background(), &domain.FrontierEvent{Size: 1})
	})
}

func TestCombine_CallsInOrder(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnFrontier: func(context.Context, *domain.FrontierEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnFrontier: func(context.Context, *domain.FrontierEvent) { calls = append(calls, "b") },
		OnOutcome:  func(context.Context, *domain.OutcomeEvent) { calls = append(calls, "b-outcome") },
	}

	combined := observability.Combine(a, domain.LifecycleHooks{}, b)
	combined.OnFrontier(context.Background(), &domain.FrontierEvent{})
	combined.OnOutcome(context.Background(), &domain.OutcomeEvent{})

	assert.Equal(t, []string{"a", "b", "b-outcome"}, calls)
	assert.Nil(t, observability.Combine().OnFrontier)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)

	accepting := domain.Configuration{State: "q1", Stack: domain.NewStack("Z0")}
	hooks.OnFrontier(context.Background(), &domain.FrontierEvent{Depth: 2, Size: 5})
	hooks.OnOutcome(context.Background(), &domain.OutcomeEvent{Outcome: domain.OutcomeAccepted, Depth: 2, Accepting: &accepting})

	out := buf.String()
	assert.Contains(t, out, "msg=frontier")
	assert.Contains(t, out, "size=5")
	assert.Contains(t, out, "outcome=accepted")
	assert.Contains(t, out, "state=q1")
}
