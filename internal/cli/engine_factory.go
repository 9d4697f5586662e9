package cli

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/internal/logging"
	"github.com/aretw0/pdasim/pkg/adapters/file"
	loamadapter "github.com/aretw0/pdasim/pkg/adapters/loam"
	"github.com/aretw0/pdasim/pkg/adapters/memory"
	redisadapter "github.com/aretw0/pdasim/pkg/adapters/redis"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/observability"
	"github.com/aretw0/pdasim/pkg/ports"
)

// Env is the wiring shared by all commands: configuration, logger and engine.
type Env struct {
	Config Config
	Logger *slog.Logger
	Engine *pdasim.Engine

	closers []func() error
}

// Setup builds the engine from cfg, forwarding exploration events to hooks.
// With debug set, logging switches to debug level and exploration events are logged too.
func Setup(cfg Config, debug bool, hooks ...domain.LifecycleHooks) (*Env, error) {
	logger, err := createLogger(cfg.Log, debug)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: cfg, Logger: logger}

	engineOpts := []pdasim.Option{pdasim.WithLogger(logger)}
	if debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}
	if len(hooks) > 0 {
		engineOpts = append(engineOpts, pdasim.WithLifecycleHooks(observability.Combine(hooks...)))
	}
	if cfg.Render.CellHeight > 0 || cfg.Render.CellWidth > 0 {
		engineOpts = append(engineOpts, pdasim.WithCellSize(cfg.Render.CellHeight, cfg.Render.CellWidth))
	}
	if cfg.Render.MaxDepth > 0 || cfg.Render.MaxFrontier > 0 {
		engineOpts = append(engineOpts, pdasim.WithLimits(cfg.Render.MaxDepth, cfg.Render.MaxFrontier))
	}

	loader, err := createLoader(cfg)
	if err != nil {
		return nil, err
	}
	if loader != nil {
		engineOpts = append(engineOpts, pdasim.WithLoader(loader))
	}

	store, locker, closeStore, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		env.closers = append(env.closers, closeStore)
	}
	engineOpts = append(engineOpts, pdasim.WithStore(store))
	if locker != nil {
		engineOpts = append(engineOpts, pdasim.WithLocker(locker))
	}

	eng, err := pdasim.New("", engineOpts...)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	env.Engine = eng
	return env, nil
}

// Close releases the session store connections.
func (e *Env) Close() error {
	var firstErr error
	for _, c := range e.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.closers = nil
	return firstErr
}

// createLogger configures the application logger.
// It always writes to Stderr, keeping Stdout for trees and JSON-RPC.
func createLogger(cfg LogConfig, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithOptions(logging.Options{Level: level, Format: logging.Format(cfg.Format)}), nil
}

// createLoader picks the blueprint loader for cfg.Dir. In auto mode, a directory holding
// Markdown files is opened as a Loam repository and anything else is read as plain files.
// A missing directory yields no loader, so only inline blueprints and files work.
func createLoader(cfg Config) (ports.DefinitionLoader, error) {
	if cfg.Dir == "" {
		return nil, nil
	}
	if info, err := os.Stat(cfg.Dir); err != nil || !info.IsDir() {
		return nil, nil
	}

	kind := cfg.Loader
	if kind == LoaderAuto {
		kind = LoaderFile
		if hasMarkdown(cfg.Dir) {
			kind = LoaderLoam
		}
	}

	if kind == LoaderLoam {
		l, err := loamadapter.Open(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", cfg.Dir, err)
		}
		return l, nil
	}
	return file.NewLoader(cfg.Dir), nil
}

// hasMarkdown checks if the directory tree holds a Markdown file.
// Dot directories (sessions, VCS) are skipped.
func hasMarkdown(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") && !strings.EqualFold(d.Name(), "README.md") {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// createStore opens the session backend named in cfg.
func createStore(cfg Config) (ports.SnapshotStore, ports.DistributedLocker, func() error, error) {
	sc := cfg.Sessions
	switch sc.Backend {
	case BackendMemory:
		return memory.NewStore(), nil, nil, nil
	case BackendRedis:
		var opts []redisadapter.Option
		if sc.Redis.Prefix != "" {
			opts = append(opts, redisadapter.WithPrefix(sc.Redis.Prefix))
		}
		if sc.Redis.TTL > 0 {
			opts = append(opts, redisadapter.WithTTL(sc.Redis.TTL))
		}
		store := redisadapter.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, opts...)
		locker := redisadapter.NewLocker(store.Client(), store.Prefix())
		return store, locker, store.Close, nil
	case BackendFile, "":
		path := sc.Path
		if path == "" {
			base := cfg.Dir
			if base == "" {
				base = "."
			}
			path = filepath.Join(base, file.DefaultSessionsDir)
		}
		return file.NewStore(path), nil, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown session backend %q", sc.Backend)
	}
}
