package host

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
)

// FunctionalOption is a function that configures a Registry instance
type FunctionalOption func(*Registry) error

// WithGlobals sets the values bound to each configured global when an
// extension runs. Names without a value are bound to None or nil.
func WithGlobals(globals map[string]any) FunctionalOption {
	return func(r *Registry) error {
		r.globals = maps.Clone(globals)
		return nil
	}
}

// WithCtxData sets the data exposed to every extension through the ctx global.
func WithCtxData(data map[string]any) FunctionalOption {
	return func(r *Registry) error {
		r.ctxData = maps.Clone(data)
		return nil
	}
}

// WithEntryPoint requires every WebAssembly extension to export the named
// function. By default any export set is accepted.
func WithEntryPoint(name string) FunctionalOption {
	return func(r *Registry) error {
		if name == "" {
			return fmt.Errorf("entry point cannot be empty")
		}
		r.entryPoint = name
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the registry.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(r *Registry) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		r.logHandler = handler
		r.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the registry.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(r *Registry) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		r.logHandler = nil
		return nil
	}
}

func (r *Registry) validate() error {
	if r.dir == "" {
		return ErrDirEmpty
	}
	if r.compiler == nil {
		return ErrCompilerNil
	}
	return nil
}

func (r *Registry) applyDefaults() {
	if r.logHandler == nil && r.logger == nil {
		r.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	if r.ctxData == nil {
		r.ctxData = make(map[string]any)
	}
}
