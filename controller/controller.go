// Package controller coordinates checking, formatting and running an
// extension script from an editor tab.
//
// Every entry point must be called on the interactive thread, i.e. from
// functions posted to the same dispatch.Dispatcher the Scheduler reports
// completions on. No error or panic from a collaborator escapes an entry point:
// results are reported through the status line and the diagnostic overlay.
package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-scriptdesk/diagnostic"
	"github.com/robbyt/go-scriptdesk/internal/helpers"
	"github.com/robbyt/go-scriptdesk/overlay"
	"github.com/robbyt/go-scriptdesk/report"
	"github.com/robbyt/go-scriptdesk/tasks"
)

// RunLabel names the background task started by Run.
const RunLabel = "Run script"

// RunResult tells the caller what Run did.
type RunResult int

const (
	// RunAborted means the check failed and nothing was scheduled.
	RunAborted RunResult = iota
	// RunScheduled means the extension reload was handed to the scheduler.
	RunScheduled
	// RunBusy means a previous run of the same document has not completed yet.
	RunBusy
)

func (r RunResult) String() string {
	switch r {
	case RunAborted:
		return "aborted"
	case RunScheduled:
		return "scheduled"
	case RunBusy:
		return "busy"
	default:
		return fmt.Sprintf("RunResult(%d)", int(r))
	}
}

// Controller is the validation controller behind a script editor tab.
type Controller struct {
	compiler  Compiler
	linter    Linter
	scheduler Scheduler
	host      Host
	overlay   *overlay.ErrorOverlay
	label     StatusLabel

	status   string
	inFlight map[string]struct{}

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Controller. A compiler, linter, scheduler and host are required.
func New(opts ...FunctionalOption) (*Controller, error) {
	ctrl := &Controller{inFlight: make(map[string]struct{})}
	ctrl.applyDefaults()

	for _, opt := range opts {
		if err := opt(ctrl); err != nil {
			return nil, fmt.Errorf("error applying controller option: %w", err)
		}
	}

	if err := ctrl.validate(); err != nil {
		return nil, fmt.Errorf("invalid controller configuration: %w", err)
	}

	if ctrl.logger != nil {
		ctrl.logHandler = ctrl.logger.Handler()
	} else {
		ctrl.logHandler, ctrl.logger = helpers.SetupLogger(ctrl.logHandler, "controller", "Controller")
	}
	return ctrl, nil
}

func (ctrl *Controller) String() string {
	return "controller.Controller"
}

// Status returns the current status line.
func (ctrl *Controller) Status() string {
	return ctrl.status
}

// Overlay returns the diagnostic overlay, mostly for inspection.
func (ctrl *Controller) Overlay() *overlay.ErrorOverlay {
	return ctrl.overlay
}

func (ctrl *Controller) setStatus(text string) {
	ctrl.status = text
	if ctrl.label != nil {
		ctrl.label.SetText(text)
	}
}

func (ctrl *Controller) resetStatus() {
	ctrl.setStatus("")
}

// Check validates doc and updates the overlay and status line. The linter
// only runs when the compiler found no errors. A compiler or linter that
// fails to run is logged and treated as having found nothing, so a broken
// tool never blocks the user.
func (ctrl *Controller) Check(ctx context.Context, doc Document) report.Outcome {
	ctrl.resetStatus()

	fileName := doc.Name()
	text := doc.Text()
	logger := ctrl.logger.WithGroup("Check").With("file", fileName)

	compileErrs := ctrl.analyze(ctx, logger, fileName, text, doc.CaretOffset())

	var lintIssues []diagnostic.Diagnostic
	if len(compileErrs) == 0 {
		lintIssues = ctrl.lint(ctx, logger, fileName, text)
	}

	ctrl.overlay.Clear()
	ctrl.overlay.AddCompilerDiagnostics(compileErrs)
	ctrl.overlay.AddLintDiagnostics(lintIssues)
	ctrl.overlay.Apply()

	outcome := report.NewOutcome(len(compileErrs), len(lintIssues))
	ctrl.setStatus(report.Status(outcome))
	logger.DebugContext(ctx, "Check completed",
		"compileErrors", outcome.CompileErrors, "lintIssues", outcome.LintIssues, "success", outcome.Success)
	return outcome
}

func (ctrl *Controller) analyze(ctx context.Context, logger *slog.Logger, fileName, text string, caret int) []diagnostic.Diagnostic {
	result, err := helpers.Guard(func() (*diagnostic.Analysis, error) {
		return ctrl.compiler.Analyze(fileName, text, caret)
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to check code", "error", err)
		return nil
	}
	if result == nil {
		return nil
	}
	for _, d := range result.Errors {
		logger.WarnContext(ctx, "Parse error", "diagnostic", d.String())
	}
	return result.Errors
}

func (ctrl *Controller) lint(ctx context.Context, logger *slog.Logger, fileName, text string) []diagnostic.Diagnostic {
	issues, err := helpers.Guard(func() ([]diagnostic.Diagnostic, error) {
		return ctrl.linter.Lint(text, fileName)
	})
	if err != nil {
		logger.WarnContext(ctx, "Linter failed", "error", err)
		return nil
	}
	for _, d := range issues {
		logger.WarnContext(ctx, "Lint issue", "diagnostic", d.String())
	}
	return issues
}

// Run saves doc, checks it, and when the check succeeds reloads the host's
// extensions in the background. Once the reload finishes, successfully or
// not, inactive tabs and the project tree are refreshed.
func (ctrl *Controller) Run(ctx context.Context, doc Document) RunResult {
	fileName := doc.Name()
	logger := ctrl.logger.WithGroup("Run").With("file", fileName)

	if err := helpers.GuardErr(doc.Save); err != nil {
		logger.ErrorContext(ctx, "Failed to save script", "error", err)
	}

	if !ctrl.Check(ctx, doc).Success {
		logger.DebugContext(ctx, "Check failed, not running")
		return RunAborted
	}

	if _, busy := ctrl.inFlight[fileName]; busy {
		logger.WarnContext(ctx, "Previous run has not completed yet")
		return RunBusy
	}
	ctrl.resetStatus()

	ctrl.inFlight[fileName] = struct{}{}
	ctrl.scheduler.Execute(ctx, RunLabel, func(taskCtx context.Context) error {
		err := helpers.GuardErr(func() error {
			return ctrl.host.ReloadExtensions(taskCtx)
		})
		if err != nil {
			logger.ErrorContext(taskCtx, "Extensions reload failed", "error", err)
		}
		return nil
	}, func(st tasks.Status) {
		delete(ctrl.inFlight, fileName)
		logger.DebugContext(ctx, "Run completed", "state", st.State, "duration", st.Duration)
		ctrl.refresh(ctx, logger)
	})
	return RunScheduled
}

func (ctrl *Controller) refresh(ctx context.Context, logger *slog.Logger) {
	if err := helpers.GuardErr(func() error {
		ctrl.host.ReloadInactiveTabs()
		return nil
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to reload inactive tabs", "error", err)
	}
	if err := helpers.GuardErr(func() error {
		ctrl.host.RefreshTree()
		return nil
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to refresh tree", "error", err)
	}
}

// Format rewrites doc into canonical format. It reports whether the text
// changed. When the formatter fails nothing visible happens.
func (ctrl *Controller) Format(ctx context.Context, doc Document) bool {
	ctrl.resetStatus()

	fileName := doc.Name()
	text := doc.Text()
	logger := ctrl.logger.WithGroup("Format").With("file", fileName)

	formatted, err := helpers.Guard(func() (string, error) {
		return ctrl.linter.Format(text, fileName)
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to reformat code", "error", err)
		return false
	}
	if formatted == text {
		return false
	}

	doc.UpdateCode(formatted)
	ctrl.setStatus(report.CodeUpdated)
	ctrl.overlay.Clear()
	ctrl.overlay.Apply()
	return true
}
