package diagnostic

// Analysis is the result of running a compiler front end over a script.
type Analysis struct {
	// Errors are the compiler diagnostics, in source order.
	Errors []Diagnostic

	// Caret is the resolved position of the caret offset passed to the compiler.
	Caret Position

	// Scope lists the names visible at the caret, sorted. Editors use it for
	// completion; it is empty when the script does not parse.
	Scope []string
}

// Success reports whether the analysis produced no errors.
func (a *Analysis) Success() bool {
	return a == nil || len(a.Errors) == 0
}
