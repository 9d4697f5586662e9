package pdasim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/pdasim/internal/compiler"
	"github.com/aretw0/pdasim/internal/presentation/graph"
	loamAdapter "github.com/aretw0/pdasim/pkg/adapters/loam"
	"github.com/aretw0/pdasim/pkg/adapters/memory"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/ports"
	"github.com/aretw0/pdasim/pkg/session"
	"github.com/aretw0/pdasim/pkg/simulation"
	"github.com/google/uuid"
)

// Default exploration limits applied by the Engine. Without them a single
// ε-rule that pushes would explore forever.
const (
	DefaultMaxDepth    = 1024
	DefaultMaxFrontier = 4096
)

// Engine is the high-level entry point for the pdasim library.
// It compiles blueprints, drives simulations and manages stored sessions.
type Engine struct {
	loader   ports.DefinitionLoader
	store    ports.SnapshotStore
	locker   ports.DistributedLocker
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	cellHeight, cellWidth int
	maxDepth, maxFrontier int
}

var _ ports.Simulator = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom DefinitionLoader, bypassing the default Loam initialization.
func WithLoader(l ports.DefinitionLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithStore sets where sessions are persisted (default: in memory).
func WithStore(s ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker enables distributed locking of sessions.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCellSize sets the node size of rendered trees.
func WithCellSize(height, width int) Option {
	return func(e *Engine) {
		e.cellHeight, e.cellWidth = height, width
	}
}

// WithLimits overrides DefaultMaxDepth and DefaultMaxFrontier. Zero means unbounded.
func WithLimits(maxDepth, maxFrontier int) Option {
	return func(e *Engine) {
		e.maxDepth, e.maxFrontier = maxDepth, maxFrontier
	}
}

// New initializes a new Engine.
// If repoPath is set and no loader is injected, blueprints are read from a Loam repository there.
// With neither, the engine only works with inline blueprints.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		maxDepth:    DefaultMaxDepth,
		maxFrontier: DefaultMaxFrontier,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if repoPath != "" {
			l, err := loamAdapter.Open(repoPath)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize loam: %w", err)
			}
			eng.loader = l
		} else {
			l, _ := memory.NewLoader()
			eng.loader = l
		}
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// Loader returns the underlying DefinitionLoader used by the engine.
func (e *Engine) Loader() ports.DefinitionLoader {
	return e.loader
}

// Sessions returns the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Watch returns a channel that signals when the underlying definitions change.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Blueprint resolves a blueprint by ID through the loader.
func (e *Engine) Blueprint(ctx context.Context, id string) (*domain.Blueprint, error) {
	return e.loader.Load(ctx, id)
}

// Blueprints lists the IDs known to the loader.
func (e *Engine) Blueprints(ctx context.Context) ([]string, error) {
	return e.loader.List(ctx)
}

// Compile turns a blueprint into a normalized, validated definition.
func (e *Engine) Compile(bp *domain.Blueprint) (*domain.Definition, error) {
	return compiler.CompileBlueprint(bp)
}

// NewController compiles bp and returns an idle controller for input.
// Engine options (logger, hooks, cell size, limits) apply first; opts may extend them.
func (e *Engine) NewController(bp *domain.Blueprint, input string, opts ...simulation.Option) (*simulation.Controller, error) {
	def, err := e.Compile(bp)
	if err != nil {
		return nil, err
	}
	return e.controller(simulation.Fixed(def, input), opts...), nil
}

// NewControllerFrom returns an idle controller that reads its setup from source on every reset.
func (e *Engine) NewControllerFrom(source simulation.Source, opts ...simulation.Option) *simulation.Controller {
	return e.controller(source, opts...)
}

func (e *Engine) controller(source simulation.Source, opts ...simulation.Option) *simulation.Controller {
	base := []simulation.Option{
		simulation.WithLogger(e.logger),
		simulation.WithLifecycleHooks(e.hooks),
		simulation.WithLimits(e.maxDepth, e.maxFrontier),
	}
	if e.cellHeight > 0 || e.cellWidth > 0 {
		base = append(base, simulation.WithCellSize(e.cellHeight, e.cellWidth))
	}
	return simulation.NewController(source, append(base, opts...)...)
}

// Restore rebuilds the controller of a stored session by replaying its steps.
// opts extend the controller like in NewController.
func (e *Engine) Restore(ctx context.Context, snap *domain.Snapshot, opts ...simulation.Option) (*simulation.Controller, error) {
	if snap == nil {
		return nil, domain.ErrSessionNotFound
	}
	ctrl, err := e.NewController(&snap.Blueprint, snap.Input, opts...)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Replay(ctx, snap.Steps); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Simulate runs input to a verdict and returns the resulting session without storing it.
func (e *Engine) Simulate(ctx context.Context, bp *domain.Blueprint, input string) (*domain.Snapshot, error) {
	ctrl, err := e.NewController(bp, input)
	if err != nil {
		return nil, err
	}
	if err := runToEnd(ctx, ctrl); err != nil {
		return nil, err
	}
	snap := domain.NewSnapshot("", *bp, input)
	capture(snap, ctrl)
	return snap, nil
}

func runToEnd(ctx context.Context, ctrl *simulation.Controller) error {
	for !ctrl.Status().Terminal() {
		if _, err := ctrl.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func capture(snap *domain.Snapshot, ctrl *simulation.Controller) {
	snap.Steps = ctrl.Steps()
	snap.Status = ctrl.Status()
	snap.Output = ctrl.Output()
}

// Validate runs every example of the blueprint.
// A blueprint that does not compile is an error; a failing example is reported in its result.
func (e *Engine) Validate(ctx context.Context, bp *domain.Blueprint) ([]domain.ExampleResult, error) {
	if _, err := e.Compile(bp); err != nil {
		return nil, err
	}

	results := make([]domain.ExampleResult, 0, len(bp.Examples))
	for _, ex := range bp.Examples {
		res := domain.ExampleResult{Example: ex}
		snap, err := e.Simulate(ctx, bp, ex.Input)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			res.Error = err.Error()
		default:
			res.Status = snap.Status
			res.Passed = ex.Check(snap.Status)
		}
		results = append(results, res)
	}
	return results, nil
}

// Graph renders the transition diagram as Mermaid. With a non-empty input,
// the states visited by its run are highlighted and an accepting state is marked current.
func (e *Engine) Graph(ctx context.Context, bp *domain.Blueprint, input string) (string, error) {
	def, err := e.Compile(bp)
	if err != nil {
		return "", err
	}
	if input == "" {
		return graph.GenerateMermaid(def, nil), nil
	}

	ctrl := e.controller(simulation.Fixed(def, input))
	overlay := &graph.GraphOverlay{}
	for !ctrl.Status().Terminal() {
		slab, err := ctrl.Step(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrExplorationLimit) {
				break
			}
			return "", err
		}
		if slab.Accepting != nil {
			overlay.CurrentState = slab.Accepting.State
		}
	}
	overlay.VisitedStates = ctrl.Visited()
	return graph.GenerateMermaid(def, overlay), nil
}

// StartSession stores a new idle session, replacing any session with the same ID.
// An empty sessionID is replaced by a random one.
func (e *Engine) StartSession(ctx context.Context, sessionID string, bp *domain.Blueprint, input string) (*domain.Snapshot, error) {
	if bp == nil {
		return nil, fmt.Errorf("%w: missing blueprint", domain.ErrInvalidDefinition)
	}
	if _, err := e.Compile(bp); err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	snap := domain.NewSnapshot(sessionID, *bp, input)
	if err := e.sessions.Save(ctx, sessionID, snap); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	e.logger.Info("session started", "session_id", sessionID, "blueprint", bp.ID)
	return snap, nil
}

// StepSession advances a stored session by count steps (at least one).
// A failed step leaves the stored session unchanged.
func (e *Engine) StepSession(ctx context.Context, sessionID string, count int) (*domain.Snapshot, error) {
	if count < 1 {
		count = 1
	}
	return e.sessions.Update(ctx, sessionID, func(ctx context.Context, snap *domain.Snapshot) error {
		ctrl, err := e.Restore(ctx, snap)
		if err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
		for i := 0; i < count && !ctrl.Status().Terminal(); i++ {
			if _, err := ctrl.Step(ctx); err != nil {
				return err
			}
		}
		capture(snap, ctrl)
		return nil
	})
}

// ResetSession returns a stored session to idle, keeping its blueprint and input.
func (e *Engine) ResetSession(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return e.sessions.Update(ctx, sessionID, func(_ context.Context, snap *domain.Snapshot) error {
		snap.Steps = 0
		snap.Status = domain.StatusIdle
		snap.Output = ""
		return nil
	})
}

// Session loads a stored session.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return e.sessions.Load(ctx, sessionID)
}

// DeleteSession removes a stored session.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// ListSessions returns the IDs of all stored sessions.
func (e *Engine) ListSessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}
