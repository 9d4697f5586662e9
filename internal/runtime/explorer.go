package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/pdasim/internal/logging"
	"github.com/aretw0/pdasim/pkg/domain"
)

// Explorer produces the frontiers of one NPDA run, one per call to Next.
// It is owned by a single simulation session and is not safe for concurrent use.
type Explorer struct {
	def   *domain.Definition
	input string

	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	maxDepth    int
	maxFrontier int

	started  bool
	frontier []domain.Configuration
	depth    int
	nextID   int
	final    *domain.Result
}

// ExplorerOption configures an Explorer.
type ExplorerOption func(*Explorer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ExplorerOption {
	return func(e *Explorer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ExplorerOption {
	return func(e *Explorer) {
		e.hooks = hooks
	}
}

// WithMaxDepth bounds the number of expansion rounds. Zero means unbounded.
func WithMaxDepth(depth int) ExplorerOption {
	return func(e *Explorer) {
		e.maxDepth = depth
	}
}

// WithMaxFrontier bounds the number of configurations in a single frontier. Zero means unbounded.
func WithMaxFrontier(size int) ExplorerOption {
	return func(e *Explorer) {
		e.maxFrontier = size
	}
}

// NewExplorer prepares the exploration of def over input.
// The definition is normalized first, so the initial state and stack symbol are always members
// of their sets; a definition that still fails validation is rejected with domain.ErrInvalidDefinition.
func NewExplorer(def *domain.Definition, input string, opts ...ExplorerOption) (*Explorer, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", domain.ErrInvalidDefinition)
	}
	norm := def.Normalize()
	if err := norm.Validate(); err != nil {
		return nil, err
	}

	e := &Explorer{
		def:    norm,
		input:  input,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Definition returns the normalized definition being explored.
func (e *Explorer) Definition() *domain.Definition {
	return e.def
}

// Depth returns the number of expansion rounds performed so far.
func (e *Explorer) Depth() int {
	return e.depth
}

// Next runs one exploration round.
//
// The first call yields the initial frontier without expanding anything. Every later call first
// checks the current frontier for an accepting configuration (returning Accepted), then expands it;
// an empty expansion returns Rejected instead of an empty frontier. Terminal results are sticky.
func (e *Explorer) Next(ctx context.Context) (domain.Result, error) {
	if e.final != nil {
		return *e.final, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}

	if !e.started {
		e.started = true
		root := domain.Configuration{
			ID:        e.allocID(),
			ParentID:  domain.RootParentID,
			State:     e.def.InitialState,
			Remaining: e.input,
			Stack:     domain.NewStack(e.def.InitialStack),
		}
		e.frontier = []domain.Configuration{root}
		e.logger.Debug("initial frontier", "state", root.State, "input", root.Remaining)
		e.emitFrontier(ctx, &domain.FrontierEvent{Depth: 0, Size: 1})
		return e.frontierResult(), nil
	}

	for i := range e.frontier {
		if e.frontier[i].IsAccepting(e.def) {
			accepting := e.frontier[i]
			return e.finish(ctx, domain.Result{
				Outcome:   domain.OutcomeAccepted,
				Accepting: &accepting,
				Depth:     e.depth,
			}), nil
		}
	}

	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		return domain.Result{}, fmt.Errorf("%w: depth %d reached", domain.ErrExplorationLimit, e.maxDepth)
	}

	next, stats := e.expand()
	if len(next) == 0 {
		e.frontier = nil
		return e.finish(ctx, domain.Result{Outcome: domain.OutcomeRejected, Depth: e.depth}), nil
	}
	if e.maxFrontier > 0 && len(next) > e.maxFrontier {
		return domain.Result{}, fmt.Errorf("%w: frontier of %d configurations exceeds %d", domain.ErrExplorationLimit, len(next), e.maxFrontier)
	}

	e.frontier = next
	e.depth++

	stats.Depth = e.depth
	stats.Size = len(next)
	e.logger.Debug("frontier expanded",
		"depth", e.depth,
		"size", stats.Size,
		"expanded", stats.Expanded,
		"pruned", stats.Pruned,
		"merged", stats.Merged,
	)
	e.emitFrontier(ctx, stats)
	return e.frontierResult(), nil
}

// expand applies every matching move to every configuration of the current frontier.
// Input-keyed moves come before ε-moves, each in authored order, so the resulting frontier
// (and its ids) is deterministic. Content-equal results collapse onto the first derivation.
func (e *Explorer) expand() ([]domain.Configuration, *domain.FrontierEvent) {
	stats := &domain.FrontierEvent{}
	seen := make(map[string]bool)
	var next []domain.Configuration

	for _, c := range e.frontier {
		top, ok := c.Stack.Top()
		if !ok {
			stats.Pruned++
			continue
		}

		sym, rest, hasInput := c.NextInput()
		if !hasInput && !e.def.HasEpsilonMove(c.State, top) {
			stats.Pruned++
			continue
		}

		type candidate struct {
			move      domain.Move
			remaining string
		}
		var candidates []candidate
		if hasInput {
			for _, m := range e.def.Moves(c.State, sym, top) {
				candidates = append(candidates, candidate{move: m, remaining: rest})
			}
		}
		for _, m := range e.def.Moves(c.State, domain.Epsilon, top) {
			candidates = append(candidates, candidate{move: m, remaining: c.Remaining})
		}

		applied := 0
		for _, cand := range candidates {
			// A child with an empty stack still gets its acceptance check next round.
			// If it does not accept, it has no top to match and dies there.
			child := domain.Configuration{
				ParentID:  c.ID,
				State:     cand.move.To,
				Remaining: cand.remaining,
				Stack:     c.Stack.Replace(cand.move.Push),
			}
			applied++
			key := child.ContentKey()
			if seen[key] {
				stats.Merged++
				continue
			}
			seen[key] = true
			child.ID = e.allocID()
			next = append(next, child)
		}

		if applied > 0 {
			stats.Expanded++
		} else if len(candidates) == 0 {
			stats.Pruned++
		}
	}
	return next, stats
}

func (e *Explorer) allocID() int {
	id := e.nextID
	e.nextID++
	return id
}

func (e *Explorer) frontierResult() domain.Result {
	configs := make([]domain.Configuration, len(e.frontier))
	copy(configs, e.frontier)
	return domain.Result{
		Outcome:  domain.OutcomeFrontier,
		Frontier: &domain.Frontier{Depth: e.depth, Configurations: configs},
		Depth:    e.depth,
	}
}

func (e *Explorer) finish(ctx context.Context, res domain.Result) domain.Result {
	e.final = &res
	e.logger.Debug("exploration finished", "outcome", res.Outcome.String(), "depth", res.Depth)
	e.emitOutcome(ctx, &domain.OutcomeEvent{
		Outcome:   res.Outcome,
		Depth:     res.Depth,
		Accepting: res.Accepting,
	})
	return res
}
