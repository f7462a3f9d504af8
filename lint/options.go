package lint

import (
	"fmt"
	"log/slog"
	"os"
)

// FunctionalOption is a function that configures a Linter instance
type FunctionalOption func(*Linter) error

// WithRules limits linting to the named rules. An empty list enables every rule.
func WithRules(names []string) FunctionalOption {
	return func(l *Linter) error {
		l.enabled = names
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the linter.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(l *Linter) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		l.logHandler = handler
		l.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the linter.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(l *Linter) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		l.logger = logger
		l.logHandler = nil
		return nil
	}
}

func (l *Linter) validate() error {
	if l.logHandler == nil && l.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	for _, name := range l.enabled {
		if !knownRule(name) {
			return fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
	}
	return nil
}

func (l *Linter) applyDefaults() {
	if l.logHandler == nil && l.logger == nil {
		l.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
}
