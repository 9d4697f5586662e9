package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/pkg/adapters/file"
	loamadapter "github.com/aretw0/pdasim/pkg/adapters/loam"
	"github.com/aretw0/pdasim/pkg/domain"
)

// ErrNoBlueprint is returned when a command needs an automaton and none was named.
var ErrNoBlueprint = errors.New("a blueprint ID, a blueprint file or --rules is required")

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// BlueprintRef names the automaton a command works on: inline rules win over Ref,
// and Ref is a file path when one exists, otherwise an ID resolved by the engine's loader.
type BlueprintRef struct {
	Ref   string
	Rules []string
	Final []string
}

// ResolveBlueprint loads the automaton named by ref.
func ResolveBlueprint(ctx context.Context, eng *pdasim.Engine, ref BlueprintRef) (*domain.Blueprint, error) {
	if len(ref.Rules) > 0 {
		return &domain.Blueprint{ID: "inline", Rules: ref.Rules, Final: ref.Final}, nil
	}
	if ref.Ref == "" {
		return nil, ErrNoBlueprint
	}

	if info, err := os.Stat(ref.Ref); err == nil && !info.IsDir() {
		switch strings.ToLower(filepath.Ext(ref.Ref)) {
		case ".md":
			l, err := loamadapter.Open(filepath.Dir(ref.Ref))
			if err != nil {
				return nil, err
			}
			return l.Load(ctx, strings.TrimSuffix(filepath.Base(ref.Ref), filepath.Ext(ref.Ref)))
		default:
			return file.ReadBlueprint(ref.Ref)
		}
	}
	return eng.Blueprint(ctx, ref.Ref)
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

// syncWriter serializes writes from the key loop and auto-play timers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// crlfWriter turns line feeds into CR LF, which raw terminals need to return the cursor.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	converted := strings.ReplaceAll(strings.ReplaceAll(string(p), "\r\n", "\n"), "\n", "\r\n")
	if _, err := io.WriteString(c.w, converted); err != nil {
		return 0, err
	}
	return len(p), nil
}
