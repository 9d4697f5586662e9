package simulation

import (
	"log/slog"
	"time"

	"github.com/aretw0/pdasim/internal/presentation/tree"
	"github.com/aretw0/pdasim/internal/runtime"
	"github.com/aretw0/pdasim/pkg/domain"
)

// DefaultInterval is the auto-play delay between two steps.
const DefaultInterval = time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSlabHandler registers a callback invoked with every slab produced by auto-play.
// Slabs returned by an explicit Step are not delivered to it.
func WithSlabHandler(fn func(Slab)) Option {
	return func(c *Controller) {
		c.onSlab = fn
	}
}

// WithErrorHandler registers a callback invoked when an auto-play step fails.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Controller) {
		c.onError = fn
	}
}

// WithCellSize sets the node size of the rendered tree.
func WithCellSize(height, width int) Option {
	return func(c *Controller) {
		c.treeOpts = append(c.treeOpts, tree.WithCellSize(height, width))
	}
}

// WithLifecycleHooks forwards exploration events to hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.explorerOpts = append(c.explorerOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithLimits bounds the exploration depth and the frontier size. Zero means unbounded.
func WithLimits(maxDepth, maxFrontier int) Option {
	return func(c *Controller) {
		c.explorerOpts = append(c.explorerOpts,
			runtime.WithMaxDepth(maxDepth),
			runtime.WithMaxFrontier(maxFrontier),
		)
	}
}

// IntervalFromMillis converts an auto-play speed in milliseconds, falling back to
// DefaultInterval for non-positive values.
func IntervalFromMillis(ms int) time.Duration {
	if ms <= 0 {
		return DefaultInterval
	}
	return time.Duration(ms) * time.Millisecond
}
