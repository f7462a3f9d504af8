// Package report turns validation outcomes into the one-line editor status.
package report

import "fmt"

// CodeUpdated is shown after a reformat changed the document.
const CodeUpdated = "Code updated"

// Outcome is the result of one check of a script.
type Outcome struct {
	CompileErrors int
	LintIssues    int
	// Success is true when there were no compile errors. Lint issues never
	// make a check fail.
	Success bool
}

// NewOutcome builds an Outcome from diagnostic counts.
func NewOutcome(compileErrors, lintIssues int) Outcome {
	return Outcome{
		CompileErrors: compileErrors,
		LintIssues:    lintIssues,
		Success:       compileErrors == 0,
	}
}

// Status returns the status line for an outcome: the parse error count when
// the check failed, the lint issue count when there are any, and "" otherwise.
func Status(o Outcome) string {
	switch {
	case !o.Success:
		return fmt.Sprintf("Parsing errors: %d", o.CompileErrors)
	case o.LintIssues > 0:
		return fmt.Sprintf("Lint issues: %d", o.LintIssues)
	default:
		return ""
	}
}
