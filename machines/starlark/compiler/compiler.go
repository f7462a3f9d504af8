package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"go.starlark.net/resolve"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/robbyt/go-scriptdesk/diagnostic"
	"github.com/robbyt/go-scriptdesk/internal/helpers"
)

// Compiler is the Starlark front end used by the editor. Analyze reports every
// resolve error in a script instead of stopping at the first one, and Compile
// produces a program the host can execute.
type Compiler struct {
	globals    []string
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Starlark Compiler instance with the provided options.
func New(opts ...FunctionalOption) (*Compiler, error) {
	c := &Compiler{}
	c.applyDefaults()

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying compiler option: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid compiler configuration: %w", err)
	}

	c.setupLogger()
	return c, nil
}

// setupLogger configures the logger and handler based on the current state.
func (c *Compiler) setupLogger() {
	if c.logger != nil {
		c.logHandler = c.logger.Handler()
	} else {
		c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "starlark", "Compiler")
	}
}

func (c *Compiler) String() string {
	return "starlark.Compiler"
}

func (c *Compiler) fileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
}

// predeclared returns the standard modules plus the configured globals, bound to None.
func (c *Compiler) predeclared() starlarkLib.StringDict {
	predeclared := StandardModules()
	for _, name := range c.globals {
		if predeclared.Has(name) {
			continue
		}
		predeclared[name] = starlarkLib.None
	}
	return predeclared
}

// Analyze parses and resolves text, returning every structural error found.
// A syntax error stops the parser, so at most one syntax diagnostic is
// reported; resolve errors (undefined names, misplaced statements) are all
// reported. A non-nil error means the analysis itself could not run.
func (c *Compiler) Analyze(fileName, text string, caretOffset int) (*diagnostic.Analysis, error) {
	logger := c.logger.WithGroup("Analyze").With("file", fileName)

	result := &diagnostic.Analysis{
		Caret: diagnostic.PositionAt(text, caretOffset),
	}

	f, err := c.fileOptions().Parse(fileName, text, 0)
	if err != nil {
		var syntaxErr syntax.Error
		if !errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
		}
		result.Errors = append(result.Errors, toDiagnostic(text, syntaxErr.Pos, syntaxErr.Msg))
		logger.Debug("Syntax error", "error", syntaxErr)
		return result, nil
	}

	predeclared := c.predeclared()
	if err := resolve.File(f, predeclared.Has, starlarkLib.Universe.Has); err != nil {
		var resolveErrs resolve.ErrorList
		if !errors.As(err, &resolveErrs) {
			return nil, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
		}
		for _, e := range resolveErrs {
			result.Errors = append(result.Errors, toDiagnostic(text, e.Pos, e.Msg))
		}
		logger.Debug("Resolve errors", "count", len(resolveErrs))
		return result, nil
	}

	result.Scope = scopeAt(f, result.Caret, predeclared)
	logger.Debug("Analysis completed", "scope", len(result.Scope))
	return result, nil
}

// Compile turns the script into a program that can be initialized with the
// standard modules plus the configured globals.
func (c *Compiler) Compile(fileName string, src []byte) (*starlarkLib.Program, error) {
	logger := c.logger.WithGroup("compile").With("file", fileName)
	if src == nil {
		logger.Error("Compile called with nil script")
		return nil, ErrContentNil
	}

	f, err := c.fileOptions().Parse(fileName, src, 0)
	if err != nil {
		logger.Warn("Compilation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	prog, err := starlarkLib.FileProgram(f, c.predeclared().Has)
	if err != nil {
		logger.Warn("Compilation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if prog == nil {
		logger.Error("Compilation returned nil program")
		return nil, ErrProgramNil
	}

	logger.Debug("Compilation completed")
	return prog, nil
}

// Predeclared returns the globals a compiled program expects at Init time.
func (c *Compiler) Predeclared() starlarkLib.StringDict {
	return c.predeclared()
}

func toDiagnostic(text string, pos syntax.Position, msg string) diagnostic.Diagnostic {
	p := diagnostic.Position{
		Line:   int(pos.Line),
		Column: int(pos.Col),
		Offset: -1,
	}
	if p.Known() {
		p.Offset = diagnostic.OffsetOf(text, p.Line, p.Column)
	}
	return diagnostic.NewCompilerError(msg, p)
}
