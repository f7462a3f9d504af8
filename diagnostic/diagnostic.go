package diagnostic

import (
	"fmt"
)

// Origin identifies which tool produced a Diagnostic.
type Origin string

const (
	// Compiler diagnostics are structural and block linting and running.
	Compiler Origin = "compiler"
	// Linter diagnostics are advisory.
	Linter Origin = "linter"
)

// Severity of a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Position is a location in a source document. Line and Column are 1-based;
// a zero Line means the position is unknown and the diagnostic applies to the
// whole document. Offset is the byte offset, or -1 when unknown.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Known reports whether the position points at a line.
func (p Position) Known() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.Known() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is a single finding about a script. It is a value type and is not
// modified after creation.
type Diagnostic struct {
	Origin   Origin
	Severity Severity
	Message  string
	Position Position
	// Code is an optional short rule or error identifier, e.g. "load-on-top".
	Code string
}

// String formats the diagnostic as "line:col: severity: message [code]".
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s: %s", d.Position, d.Severity, d.Message)
	if d.Code != "" {
		s += " [" + d.Code + "]"
	}
	return s
}

// NewCompilerError is a shortcut for the common compiler diagnostic.
func NewCompilerError(msg string, pos Position) Diagnostic {
	return Diagnostic{
		Origin:   Compiler,
		Severity: SeverityError,
		Message:  msg,
		Position: pos,
	}
}

// NewLintIssue is a shortcut for a linter diagnostic with a rule code.
func NewLintIssue(code, msg string, pos Position) Diagnostic {
	return Diagnostic{
		Origin:   Linter,
		Severity: SeverityWarning,
		Message:  msg,
		Position: pos,
		Code:     code,
	}
}
