package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/pdasim/pkg/domain"
)

// LogHooks logs every frontier at debug level and every outcome at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFrontier: func(ctx context.Context, e *domain.FrontierEvent) {
			logger.DebugContext(ctx, "frontier",
				"depth", e.Depth,
				"size", e.Size,
				"expanded", e.Expanded,
				"pruned", e.Pruned,
				"merged", e.Merged,
			)
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			attrs := []any{"outcome", e.Outcome.String(), "depth", e.Depth}
			if e.Accepting != nil {
				attrs = append(attrs, "state", e.Accepting.State, "stack", e.Accepting.Stack.String())
			}
			logger.InfoContext(ctx, "outcome", attrs...)
		},
	}
}

// Combine returns hooks that call each of the given hooks in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks
	for _, h := range all {
		if h.OnFrontier != nil {
			prev, next := combined.OnFrontier, h.OnFrontier
			combined.OnFrontier = func(ctx context.Context, e *domain.FrontierEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnOutcome != nil {
			prev, next := combined.OnOutcome, h.OnOutcome
			combined.OnOutcome = func(ctx context.Context, e *domain.OutcomeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return combined
}
