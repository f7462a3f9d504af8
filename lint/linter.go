// Package lint checks Starlark extension scripts for style problems and
// rewrites them into canonical format, using the buildifier parser and printer.
package lint

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bazelbuild/buildtools/build"

	"github.com/robbyt/go-scriptdesk/diagnostic"
	"github.com/robbyt/go-scriptdesk/internal/helpers"
	"github.com/robbyt/go-scriptdesk/machines/types"
)

// Linter is the style checker and formatter for Starlark scripts.
type Linter struct {
	enabled    []string
	rules      []string
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Linter with the provided options.
func New(opts ...FunctionalOption) (*Linter, error) {
	l := &Linter{}
	l.applyDefaults()

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("error applying linter option: %w", err)
		}
	}

	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("invalid linter configuration: %w", err)
	}

	if l.logger != nil {
		l.logHandler = l.logger.Handler()
	} else {
		l.logHandler, l.logger = helpers.SetupLogger(l.logHandler, "lint", "Linter")
	}

	l.rules = selectRules(l.enabled)
	return l, nil
}

func (l *Linter) String() string {
	return "lint.Linter"
}

// Rules returns the names of the enabled rules, sorted.
func (l *Linter) Rules() []string {
	return slices.Clone(l.rules)
}

func (l *Linter) parse(text, fileName string) (*build.File, error) {
	if t, ok := types.FromFileName(fileName); !ok || t != types.Starlark {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, fileName)
	}

	f, err := build.ParseDefault(fileName, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return f, nil
}

// Lint returns the style issues found in text, ordered by position.
func (l *Linter) Lint(text, fileName string) ([]diagnostic.Diagnostic, error) {
	logger := l.logger.WithGroup("Lint").With("file", fileName)

	f, err := l.parse(text, fileName)
	if err != nil {
		return nil, err
	}

	var issues []diagnostic.Diagnostic
	var warnings []string
	for _, name := range l.rules {
		check, local := localRules[name]
		if !local {
			warnings = append(warnings, name)
			continue
		}
		found := check(f, text)
		logger.Debug("Rule checked", "rule", name, "issues", len(found))
		issues = append(issues, found...)
	}

	found := checkWarnings(f, warnings)
	logger.Debug("Buildifier warnings checked", "rules", warnings, "issues", len(found))
	issues = append(issues, found...)

	slices.SortStableFunc(issues, func(a, b diagnostic.Diagnostic) int {
		if a.Position.Line != b.Position.Line {
			return a.Position.Line - b.Position.Line
		}
		return a.Position.Column - b.Position.Column
	})
	return issues, nil
}

// Format returns text rewritten into canonical format.
func (l *Linter) Format(text, fileName string) (string, error) {
	logger := l.logger.WithGroup("Format").With("file", fileName)

	f, err := l.parse(text, fileName)
	if err != nil {
		var parseErr build.ParseError
		if errors.As(err, &parseErr) {
			logger.Debug("Cannot format unparsable script", "line", parseErr.Pos.Line)
		}
		return "", err
	}

	return string(build.Format(f)), nil
}

func toPosition(p build.Position) diagnostic.Position {
	return diagnostic.Position{
		Line:   p.Line,
		Column: p.LineRune,
		Offset: p.Byte,
	}
}
