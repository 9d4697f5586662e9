package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/internal/presentation/tui"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/simulation"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Blueprint BlueprintRef
	Input     string
	SessionID string
	Fresh     bool
	// Speed is the auto-play interval in milliseconds; zero uses the configured speed.
	Speed int
	// Headless runs to a verdict without reading keys.
	Headless bool
	// Watch restarts the run when the blueprint changes in the loader.
	Watch bool
}

// Run executes one simulation in the terminal: keys from in drive the controller
// and the tree is written to out. When in is a terminal it is switched to raw mode.
func Run(ctx context.Context, env *Env, opts RunOptions, in io.Reader, out io.Writer) error {
	var bp *domain.Blueprint
	if opts.Blueprint.Ref != "" || len(opts.Blueprint.Rules) > 0 {
		var err error
		if bp, err = ResolveBlueprint(ctx, env.Engine, opts.Blueprint); err != nil {
			return err
		}
	}

	palette := tui.PlainPalette()
	if isTerminal(out) {
		palette = tui.NewPalette()
	}

	if !opts.Headless {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			state, err := term.MakeRaw(int(f.Fd()))
			if err != nil {
				return fmt.Errorf("failed to enter raw mode: %w", err)
			}
			defer func() { _ = term.Restore(int(f.Fd()), state) }()
			out = crlfWriter{w: out}
		}
	}

	speed := opts.Speed
	if speed <= 0 {
		speed = env.Config.Speed
	}
	s := &interactive{
		env:      env,
		out:      &syncWriter{w: out},
		palette:  palette,
		interval: simulation.IntervalFromMillis(speed),
		input:    opts.Input,
		bp:       bp,
	}

	var snap *domain.Snapshot
	if opts.SessionID != "" {
		var resumed bool
		var err error
		snap, resumed, err = openSession(ctx, env.Engine, opts.SessionID, bp, opts.Input, opts.Fresh)
		if err != nil {
			return fmt.Errorf("failed to init session: %w", err)
		}
		s.bp, s.input = &snap.Blueprint, snap.Input
		s.rec = &recorder{eng: env.Engine, id: opts.SessionID, bp: snap.Blueprint, input: snap.Input, logger: env.Logger}
		if resumed {
			env.Logger.Info("Session Resumed", "session_id", opts.SessionID, "steps", snap.Steps)
		} else {
			env.Logger.Info("Session Created", "session_id", opts.SessionID)
		}
	}
	if s.bp == nil {
		return ErrNoBlueprint
	}

	if err := s.start(ctx, snap); err != nil {
		return err
	}
	if opts.Headless {
		return s.runToEnd(ctx)
	}

	tui.PrintBanner(s.out, strings.TrimSpace(pdasim.Version))
	s.header(opts.SessionID, snap)

	var changes <-chan struct{}
	if opts.Watch && s.bp.ID != "" && opts.Blueprint.Ref == s.bp.ID {
		changes = watchBlueprint(ctx, env.Engine, s.bp.ID, env.Logger)
	}
	return handleExecutionError(s.loop(ctx, readKeys(ctx, in), changes))
}

// interactive is the state of one Run.
type interactive struct {
	env      *Env
	out      io.Writer
	palette  tui.Palette
	interval time.Duration
	bp       *domain.Blueprint
	input    string
	rec      *recorder
	ctrl     *simulation.Controller
}

// start builds the controller, replaying snap when it holds progress.
func (s *interactive) start(ctx context.Context, snap *domain.Snapshot) error {
	var ctrl *simulation.Controller
	opts := []simulation.Option{
		simulation.WithSlabHandler(func(slab simulation.Slab) {
			s.printSlab(slab)
			s.rec.record(context.Background(), ctrl)
		}),
		simulation.WithErrorHandler(func(err error) {
			printSystemMessage(s.out, "Exploration aborted: %v", err)
			s.rec.record(context.Background(), ctrl)
		}),
	}

	var err error
	if snap != nil && snap.Steps > 0 {
		ctrl, err = s.env.Engine.Restore(ctx, snap, opts...)
	} else {
		ctrl, err = s.env.Engine.NewController(s.bp, s.input, opts...)
	}
	if err != nil {
		return err
	}
	s.ctrl = ctrl
	return nil
}

func (s *interactive) header(sessionID string, snap *domain.Snapshot) {
	title := s.bp.ID
	if s.bp.Title != "" {
		title = s.bp.Title
	}
	fmt.Fprintf(s.out, "%s  input %q\n", title, s.input)
	fmt.Fprintln(s.out, s.palette.Hint(keyHelp))
	if sessionID == "" {
		return
	}
	if snap != nil && snap.Steps > 0 {
		printSystemMessage(s.out, "Resuming session '%s' at step %d.", sessionID, snap.Steps)
		fmt.Fprint(s.out, s.palette.Output(s.ctrl.Output()))
		if s.ctrl.Status().Terminal() {
			fmt.Fprintln(s.out)
		}
		return
	}
	printSystemMessage(s.out, "Session '%s' active.", sessionID)
}

func (s *interactive) printSlab(slab simulation.Slab) {
	if slab.Text == "" {
		return
	}
	fmt.Fprint(s.out, s.palette.Output(slab.Text))
	if slab.Status.Terminal() {
		fmt.Fprintln(s.out)
	}
}

func (s *interactive) step(ctx context.Context) error {
	slab, err := s.ctrl.Step(ctx)
	if err != nil {
		s.rec.record(ctx, s.ctrl)
		return err
	}
	s.printSlab(slab)
	s.rec.record(ctx, s.ctrl)
	return nil
}

func (s *interactive) runToEnd(ctx context.Context) error {
	fmt.Fprint(s.out, s.palette.Output(s.ctrl.Output()))
	for !s.ctrl.Status().Terminal() {
		if err := s.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *interactive) loop(ctx context.Context, keys <-chan byte, changes <-chan struct{}) error {
	defer s.ctrl.Pause()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			s.reload(ctx)
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			switch route(key) {
			case ActionStep:
				s.ctrl.Pause()
				if s.ctrl.Status().Terminal() {
					printSystemMessage(s.out, "Run finished, press r to reset.")
					continue
				}
				if err := s.step(ctx); err != nil {
					printSystemMessage(s.out, "Exploration aborted: %v", err)
				}
			case ActionPlay:
				if s.ctrl.Status().Terminal() {
					printSystemMessage(s.out, "Run finished, press r to reset.")
					continue
				}
				s.ctrl.Play(s.interval)
			case ActionPause:
				s.ctrl.Pause()
			case ActionReset:
				s.ctrl.Reset()
				fmt.Fprintln(s.out)
				printSystemMessage(s.out, "Reset.")
				s.rec.record(ctx, s.ctrl)
			case ActionQuit:
				return nil
			}
		}
	}
}

// reload restarts the run with the changed blueprint, keeping the old one when it no longer loads.
func (s *interactive) reload(ctx context.Context) {
	bp, err := s.env.Engine.Blueprint(ctx, s.bp.ID)
	if err == nil {
		_, err = s.env.Engine.Compile(bp)
	}
	if err != nil {
		printSystemMessage(s.out, "Change in '%s' ignored: %v", s.bp.ID, err)
		return
	}

	s.ctrl.Stop()
	s.bp = bp
	if s.rec != nil {
		s.rec.bp = *bp
	}
	if err := s.start(ctx, nil); err != nil {
		printSystemMessage(s.out, "Reload failed: %v", err)
		return
	}
	fmt.Fprintln(s.out)
	printSystemMessage(s.out, "Change detected in '%s', restarted.", bp.ID)
	s.rec.record(ctx, s.ctrl)
}

// readKeys pumps single bytes from in until it fails or ctx is done.
func readKeys(ctx context.Context, in io.Reader) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		buf := make([]byte, 64)
		for {
			n, err := in.Read(buf)
			for _, b := range buf[:n] {
				select {
				case keys <- b:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return keys
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
