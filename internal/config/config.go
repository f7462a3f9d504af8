// Package config loads scriptdesk.toml, the settings file used by the
// scriptdesk command.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the settings file looked up from the working directory.
const FileName = "scriptdesk.toml"

var (
	// ErrInvalidConcurrency is returned when tasks.max_concurrent is below one.
	ErrInvalidConcurrency = errors.New("max_concurrent must be at least 1")

	// ErrInvalidLevel is returned for an unknown log level.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidDebounce is returned when watch.debounce is not a positive duration.
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Config is the decoded settings file.
type Config struct {
	// Path is the file the settings were loaded from, empty for defaults.
	Path string `toml:"-"`

	Extensions Extensions     `toml:"extensions"`
	Globals    map[string]any `toml:"globals"`
	Ctx        map[string]any `toml:"ctx"`
	Lint       Lint           `toml:"lint"`
	Tasks      Tasks          `toml:"tasks"`
	Watch      Watch          `toml:"watch"`
	Log        Log            `toml:"log"`
}

type Extensions struct {
	Dir string `toml:"dir"`
}

type Lint struct {
	// Rules enables a subset of lint rules; empty enables all of them.
	Rules []string `toml:"rules"`
}

type Tasks struct {
	MaxConcurrent int64 `toml:"max_concurrent"`
}

type Watch struct {
	Debounce string `toml:"debounce"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Extensions: Extensions{Dir: "extensions"},
		Globals:    map[string]any{},
		Ctx:        map[string]any{},
		Tasks:      Tasks{MaxConcurrent: 1},
		Watch:      Watch{Debounce: "50ms"},
		Log:        Log{Level: "info"},
	}
}

// Load decodes path over the defaults. A relative extensions directory is
// resolved against the directory holding the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path

	if cfg.Extensions.Dir != "" && !filepath.IsAbs(cfg.Extensions.Dir) {
		cfg.Extensions.Dir = filepath.Join(filepath.Dir(path), cfg.Extensions.Dir)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find walks up from startDir to locate scriptdesk.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest scriptdesk.toml above startDir, or returns the
// defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	if c.Tasks.MaxConcurrent < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Tasks.MaxConcurrent)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := c.Debounce(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	return level, nil
}

// Debounce parses watch.debounce.
func (c Config) Debounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDebounce, c.Watch.Debounce)
	}
	return d, nil
}

// GlobalNames returns the configured global names, sorted.
func (c Config) GlobalNames() []string {
	names := make([]string, 0, len(c.Globals))
	for name := range c.Globals {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
