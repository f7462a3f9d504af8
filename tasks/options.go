package tasks

import (
	"fmt"
	"log/slog"
	"os"
)

// FunctionalOption is a function that configures an Executor instance
type FunctionalOption func(*Executor) error

// WithMaxConcurrent sets how many tasks may run at once. The default of 1
// runs background tasks one after another.
func WithMaxConcurrent(n int64) FunctionalOption {
	return func(e *Executor) error {
		if n < 1 {
			return ErrInvalidConcurrency
		}
		e.maxConcurrent = n
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the executor.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(e *Executor) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		e.logHandler = handler
		e.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the executor.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(e *Executor) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		e.logger = logger
		e.logHandler = nil
		return nil
	}
}

func (e *Executor) applyDefaults() {
	if e.logHandler == nil && e.logger == nil {
		e.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	e.maxConcurrent = 1
}
