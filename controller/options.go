package controller

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robbyt/go-scriptdesk/overlay"
)

// FunctionalOption is a function that configures a Controller instance
type FunctionalOption func(*Controller) error

// WithCompiler sets the compiler front end.
func WithCompiler(c Compiler) FunctionalOption {
	return func(ctrl *Controller) error {
		ctrl.compiler = c
		return nil
	}
}

// WithLinter sets the linter and formatter.
func WithLinter(l Linter) FunctionalOption {
	return func(ctrl *Controller) error {
		ctrl.linter = l
		return nil
	}
}

// WithScheduler sets the background executor used by Run.
func WithScheduler(s Scheduler) FunctionalOption {
	return func(ctrl *Controller) error {
		ctrl.scheduler = s
		return nil
	}
}

// WithHost sets the application whose extensions Run reloads.
func WithHost(h Host) FunctionalOption {
	return func(ctrl *Controller) error {
		ctrl.host = h
		return nil
	}
}

// WithSurface sets where diagnostics are drawn.
func WithSurface(s overlay.Surface) FunctionalOption {
	return func(ctrl *Controller) error {
		ctrl.overlay = overlay.New(s)
		return nil
	}
}

// WithStatusLabel sets the display that receives every status change.
func WithStatusLabel(l StatusLabel) FunctionalOption {
	return func(ctrl *Controller) error {
		ctrl.label = l
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the controller.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(ctrl *Controller) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		ctrl.logHandler = handler
		ctrl.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the controller.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(ctrl *Controller) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		ctrl.logger = logger
		ctrl.logHandler = nil
		return nil
	}
}

func (ctrl *Controller) validate() error {
	switch {
	case ctrl.compiler == nil:
		return ErrCompilerNil
	case ctrl.linter == nil:
		return ErrLinterNil
	case ctrl.scheduler == nil:
		return ErrSchedulerNil
	case ctrl.host == nil:
		return ErrHostNil
	}
	return nil
}

func (ctrl *Controller) applyDefaults() {
	if ctrl.logHandler == nil && ctrl.logger == nil {
		ctrl.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	ctrl.overlay = overlay.New(nil)
}
