package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = ".pdasim.yaml"

// Session store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Blueprint loaders.
const (
	LoaderAuto = "auto"
	LoaderLoam = "loam"
	LoaderFile = "file"
)

// Config is the content of .pdasim.yaml. Command line flags override it.
type Config struct {
	// Dir holds the automata.
	Dir    string `yaml:"dir"`
	Loader string `yaml:"loader"`

	Log      LogConfig      `yaml:"log"`
	Sessions SessionsConfig `yaml:"sessions"`
	Render   RenderConfig   `yaml:"render"`

	// Speed is the auto-play interval in milliseconds.
	Speed int `yaml:"speed"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SessionsConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type RenderConfig struct {
	CellHeight  int `yaml:"cell_height"`
	CellWidth   int `yaml:"cell_width"`
	MaxDepth    int `yaml:"max_depth"`
	MaxFrontier int `yaml:"max_frontier"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		Dir:    ".",
		Loader: LoaderAuto,
		Log:    LogConfig{Level: "info", Format: "text"},
		Sessions: SessionsConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Speed: 1000,
	}
}

// LoadConfig reads path over DefaultConfig. A missing file is not an error
// unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Sessions.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Sessions.Backend)
	}
	switch c.Loader {
	case LoaderAuto, LoaderLoam, LoaderFile:
	default:
		return fmt.Errorf("unknown loader %q", c.Loader)
	}
	if c.Render.MaxDepth < 0 || c.Render.MaxFrontier < 0 {
		return errors.New("exploration limits must not be negative")
	}
	return nil
}
