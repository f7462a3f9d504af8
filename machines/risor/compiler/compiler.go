package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	risorErrors "github.com/risor-io/risor/errz"
	risorParser "github.com/risor-io/risor/parser"

	"github.com/robbyt/go-scriptdesk/diagnostic"
	"github.com/robbyt/go-scriptdesk/internal/helpers"
)

// Compiler is the Risor front end used by the editor.
type Compiler struct {
	globals    []string
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Risor Compiler instance with the provided options.
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

	if c.logger != nil {
		c.logHandler = c.logger.Handler()
	} else {
		c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "risor", "Compiler")
	}
	return c, nil
}

func (c *Compiler) String() string {
	return "risor.Compiler"
}

// globalNames returns the default Risor builtins plus the configured globals.
func (c *Compiler) globalNames() []string {
	cfg := risorLib.NewConfig()
	return append(cfg.GlobalNames(), c.globals...)
}

// Analyze parses and compiles text. Risor stops at the first problem, so a
// broken script yields exactly one diagnostic. Risor errors carry no position
// that survives wrapping, so diagnostics apply to the whole document.
func (c *Compiler) Analyze(fileName, text string, caretOffset int) (*diagnostic.Analysis, error) {
	logger := c.logger.WithGroup("Analyze").With("file", fileName)

	result := &diagnostic.Analysis{
		Caret: diagnostic.PositionAt(text, caretOffset),
	}

	if _, err := c.compile(text); err != nil {
		msg := err.Error()
		var friendlyErr risorErrors.FriendlyError
		if errors.As(err, &friendlyErr) {
			msg = friendlyErr.FriendlyErrorMessage()
		}
		result.Errors = append(result.Errors, diagnostic.NewCompilerError(msg, diagnostic.Position{Offset: -1}))
		logger.Debug("Compilation failed", "error", err)
		return result, nil
	}

	scope := c.globalNames()
	slices.Sort(scope)
	result.Scope = slices.Compact(scope)
	return result, nil
}

// Compile turns the script into bytecode for the host to run.
func (c *Compiler) Compile(fileName string, src []byte) (*risorCompiler.Code, error) {
	logger := c.logger.WithGroup("compile").With("file", fileName)
	if src == nil {
		return nil, ErrContentNil
	}

	bc, err := c.compile(string(src))
	if err != nil {
		logger.Warn("Compilation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if bc == nil {
		logger.Error("Compilation returned nil bytecode")
		return nil, ErrBytecodeNil
	}

	logger.Debug("Compilation completed", "instructionCount", bc.InstructionCount())
	return bc, nil
}

func (c *Compiler) compile(text string) (*risorCompiler.Code, error) {
	ast, err := risorParser.Parse(context.Background(), text)
	if err != nil {
		return nil, err
	}
	return risorCompiler.Compile(ast, risorCompiler.WithGlobalNames(c.globalNames()))
}
