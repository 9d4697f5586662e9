package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/pdasim/internal/logging"
	"github.com/aretw0/pdasim/internal/presentation/tree"
	"github.com/aretw0/pdasim/internal/runtime"
	"github.com/aretw0/pdasim/pkg/domain"
)

// Terminal markers appended after the last slab of a run.
const (
	MarkerSeparator = "\n" + "───────────" + "\n\n"
	AcceptedMarker  = MarkerSeparator + "ACCEPTED!!!"
	RejectedMarker  = MarkerSeparator + "REJECTED!!!"
)

// Slab is the outcome of one step.
type Slab struct {
	// Text is appended to the output. It is empty for no-op steps.
	Text   string        `json:"text"`
	Status domain.Status `json:"status"`
	Depth  int           `json:"depth"`
	// Frontier is the level rendered by this step, if any.
	Frontier *domain.Frontier `json:"frontier,omitempty"`
	// Accepting is set on the step that accepted.
	Accepting *domain.Configuration `json:"accepting,omitempty"`
}

// Controller runs one simulation session.
// All methods are safe for concurrent use; auto-play callbacks run on timer goroutines.
type Controller struct {
	source       Source
	logger       *slog.Logger
	onSlab       func(Slab)
	onError      func(error)
	treeOpts     []tree.Option
	explorerOpts []runtime.ExplorerOption

	mu         sync.Mutex
	status     domain.Status
	explorer   *runtime.Explorer
	renderer   *tree.Renderer
	output     strings.Builder
	steps      int
	depth      int
	visited    []string
	seen       map[string]bool
	generation uint64
	playing    bool
	interval   time.Duration
	timer      *time.Timer
}

// NewController creates an idle controller that takes its setup from source.
func NewController(source Source, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		logger:   logging.NewNop(),
		status:   domain.StatusIdle,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize asks the source for a setup and prepares a fresh run.
// It is a no-op unless the controller is idle. On failure the controller stays idle.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != domain.StatusIdle {
		return nil
	}
	return c.initialize(ctx)
}

func (c *Controller) initialize(ctx context.Context) error {
	if c.source == nil {
		return errors.New("simulation: no source configured")
	}
	setup, err := c.source.Setup(ctx)
	if err != nil {
		return fmt.Errorf("failed to read setup: %w", err)
	}

	opts := append([]runtime.ExplorerOption{runtime.WithLogger(c.logger)}, c.explorerOpts...)
	explorer, err := runtime.NewExplorer(setup.Definition, setup.Input, opts...)
	if err != nil {
		return err
	}

	c.explorer = explorer
	c.renderer = tree.NewRenderer(c.treeOpts...)
	c.status = domain.StatusExploring
	c.logger.Debug("simulation initialized", "input", setup.Input, "rules", len(explorer.Definition().Transitions))
	return nil
}

// Step advances the run by one frontier and returns the text it produced.
// An idle controller initializes first. A finished run returns an empty slab.
//
// Faults other than context cancellation abort the run: the controller drops back to idle.
// A broken tree layout is one of them and is returned as a *tree.InvariantError.
func (c *Controller) Step(ctx context.Context) (Slab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step(ctx)
}

func (c *Controller) step(ctx context.Context) (Slab, error) {
	if c.status == domain.StatusIdle {
		if err := c.initialize(ctx); err != nil {
			return Slab{Status: c.status}, err
		}
	}
	if c.status.Terminal() {
		return Slab{Status: c.status, Depth: c.depth}, nil
	}

	res, err := c.explorer.Next(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("exploration aborted", "err", err, "steps", c.steps)
			c.reset()
		}
		return Slab{Status: c.status}, err
	}

	c.steps++
	c.depth = res.Depth
	slab := Slab{Depth: res.Depth}
	switch res.Outcome {
	case domain.OutcomeFrontier:
		for _, cfg := range res.Frontier.Configurations {
			c.visit(cfg.State)
		}
		text, err := c.render(res.Frontier)
		if err != nil {
			c.logger.Error("render aborted", "err", err, "steps", c.steps)
			c.reset()
			return Slab{Status: c.status}, err
		}
		slab.Text = text
		slab.Frontier = res.Frontier
	case domain.OutcomeAccepted:
		slab.Text = AcceptedMarker
		slab.Accepting = res.Accepting
	case domain.OutcomeRejected:
		slab.Text = RejectedMarker
	}
	c.status = domain.StatusFor(res.Outcome)
	slab.Status = c.status
	c.output.WriteString(slab.Text)

	if c.status.Terminal() {
		c.playing = false
		c.logger.Info("simulation finished", "status", c.status, "depth", res.Depth, "steps", c.steps)
	}
	return slab, nil
}

// render turns a renderer invariant panic into an error so the run can be dropped.
// Any other panic is re-raised.
func (c *Controller) render(f *domain.Frontier) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			inv, ok := r.(*tree.InvariantError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("simulation: %w", inv)
		}
	}()
	return c.renderer.Render(tree.LevelFromFrontier(f)), nil
}

func (c *Controller) visit(state string) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if !c.seen[state] {
		c.seen[state] = true
		c.visited = append(c.visited, state)
	}
}

// Stop halts auto-play and discards the run, returning the controller to idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Reset is an alias of Stop.
func (c *Controller) Reset() {
	c.Stop()
}

func (c *Controller) reset() {
	c.generation++
	c.playing = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.explorer = nil
	c.renderer = nil
	c.output.Reset()
	c.steps = 0
	c.depth = 0
	c.visited = nil
	c.seen = nil
	c.status = domain.StatusIdle
}

// Play starts auto-play: Step runs right away and then every interval until the run finishes.
// A non-positive interval uses DefaultInterval. Playing an already playing or finished
// controller does nothing.
func (c *Controller) Play(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing || c.status.Terminal() {
		return
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	c.playing = true
	c.interval = interval
	c.schedule(0)
}

// Pause halts auto-play and keeps the run.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) schedule(delay time.Duration) {
	gen := c.generation
	c.timer = time.AfterFunc(delay, func() { c.tick(gen) })
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || !c.playing || c.status.Terminal() {
		c.mu.Unlock()
		return
	}
	slab, err := c.step(context.Background())
	if err != nil {
		c.playing = false
	}
	if c.playing {
		c.schedule(c.interval)
	}
	onSlab, onError := c.onSlab, c.onError
	c.mu.Unlock()

	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if onSlab != nil {
		onSlab(slab)
	}
}

// Replay resets the controller and applies n steps, stopping early if the run finishes.
// Exploration is deterministic, so replaying the step count of a saved session rebuilds it.
func (c *Controller) Replay(ctx context.Context, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	for i := 0; i < n; i++ {
		if _, err := c.step(ctx); err != nil {
			return fmt.Errorf("replay failed at step %d: %w", i+1, err)
		}
		if c.status.Terminal() {
			break
		}
	}
	return nil
}

// Status returns the current status.
func (c *Controller) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Output returns all text produced since the last reset.
func (c *Controller) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output.String()
}

// Steps returns the number of steps that produced text since the last reset.
func (c *Controller) Steps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps
}

// Playing reports whether auto-play is active.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Visited returns the states reached so far, in order of first appearance.
func (c *Controller) Visited() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.visited))
	copy(out, c.visited)
	return out
}

// Definition returns the normalized definition of the current run, or nil when idle.
func (c *Controller) Definition() *domain.Definition {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.explorer == nil {
		return nil
	}
	return c.explorer.Definition()
}
