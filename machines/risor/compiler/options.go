package compiler

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// CtxGlobal is the name of the global that the host injects into every
// extension at run time.
const CtxGlobal = "ctx"

// FunctionalOption is a function that configures a Compiler instance
type FunctionalOption func(*Compiler) error

// WithGlobals creates an option to set the globals for Risor scripts
func WithGlobals(globals []string) FunctionalOption {
	return func(c *Compiler) error {
		c.globals = slices.Clone(globals)
		return nil
	}
}

// WithCtxGlobal is a convenience option to add the 'ctx' global
func WithCtxGlobal() FunctionalOption {
	return func(c *Compiler) error {
		if !slices.Contains(c.globals, CtxGlobal) {
			c.globals = append(c.globals, CtxGlobal)
		}
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the Risor compiler.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *Compiler) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the Risor compiler.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(c *Compiler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}

func (c *Compiler) validate() error {
	if c.logHandler == nil && c.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	return nil
}

func (c *Compiler) applyDefaults() {
	if c.logHandler == nil && c.logger == nil {
		c.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	if c.globals == nil {
		c.globals = []string{}
	}
}
