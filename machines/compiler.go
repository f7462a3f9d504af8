package machines

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-scriptdesk/diagnostic"
	risorCompiler "github.com/robbyt/go-scriptdesk/machines/risor/compiler"
	starlarkCompiler "github.com/robbyt/go-scriptdesk/machines/starlark/compiler"
	"github.com/robbyt/go-scriptdesk/machines/types"
)

// Compiler routes analysis to the Starlark or Risor front end based on the
// document's file extension.
type Compiler struct {
	starlark *starlarkCompiler.Compiler
	risor    *risorCompiler.Compiler
}

// NewCompiler creates both front ends with the same log handler and globals.
func NewCompiler(handler slog.Handler, globals []string) (*Compiler, error) {
	if handler == nil {
		return nil, fmt.Errorf("log handler cannot be nil")
	}

	sc, err := starlarkCompiler.New(
		starlarkCompiler.WithLogHandler(handler),
		starlarkCompiler.WithGlobals(globals),
		starlarkCompiler.WithCtxGlobal(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create starlark compiler: %w", err)
	}

	rc, err := risorCompiler.New(
		risorCompiler.WithLogHandler(handler),
		risorCompiler.WithGlobals(globals),
		risorCompiler.WithCtxGlobal(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create risor compiler: %w", err)
	}

	return &Compiler{starlark: sc, risor: rc}, nil
}

func (c *Compiler) String() string {
	return "machines.Compiler"
}

// Starlark returns the Starlark front end.
func (c *Compiler) Starlark() *starlarkCompiler.Compiler {
	return c.starlark
}

// Risor returns the Risor front end.
func (c *Compiler) Risor() *risorCompiler.Compiler {
	return c.risor
}

// Analyze implements the controller's Compiler contract.
func (c *Compiler) Analyze(fileName, text string, caretOffset int) (*diagnostic.Analysis, error) {
	t, ok := types.FromFileName(fileName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, fileName)
	}

	switch t {
	case types.Starlark:
		return c.starlark.Analyze(fileName, text, caretOffset)
	case types.Risor:
		return c.risor.Analyze(fileName, text, caretOffset)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, t)
	}
}
