// Package overlay collects diagnostics from the compiler and the linter and
// publishes them to the editor's marker layer in one update.
package overlay

import (
	"slices"

	"github.com/robbyt/go-scriptdesk/diagnostic"
)

// Kind is how a marker is drawn.
type Kind int

const (
	KindError Kind = iota
	KindLint
)

func (k Kind) String() string {
	if k == KindLint {
		return "lint"
	}
	return "error"
}

// Marker is one diagnostic as drawn on the editable surface.
type Marker struct {
	Kind       Kind
	Diagnostic diagnostic.Diagnostic
}

// Surface is the visual marker layer. SetMarkers replaces everything shown;
// an empty slice clears it.
type Surface interface {
	SetMarkers(markers []Marker)
}

// ErrorOverlay accumulates diagnostics until Apply. Addition order is display
// order, so compiler diagnostics are added before lint diagnostics. It is not
// safe for concurrent use; it belongs to the interactive thread.
type ErrorOverlay struct {
	surface Surface
	pending []Marker
}

// New creates an overlay that draws on surface.
func New(surface Surface) *ErrorOverlay {
	return &ErrorOverlay{surface: surface}
}

// Clear drops all pending diagnostics.
func (o *ErrorOverlay) Clear() {
	o.pending = nil
}

// AddCompilerDiagnostics appends compiler diagnostics to the pending set.
func (o *ErrorOverlay) AddCompilerDiagnostics(diags []diagnostic.Diagnostic) {
	o.add(KindError, diags)
}

// AddLintDiagnostics appends lint diagnostics to the pending set.
func (o *ErrorOverlay) AddLintDiagnostics(diags []diagnostic.Diagnostic) {
	o.add(KindLint, diags)
}

func (o *ErrorOverlay) add(kind Kind, diags []diagnostic.Diagnostic) {
	for _, d := range diags {
		o.pending = append(o.pending, Marker{Kind: kind, Diagnostic: d})
	}
}

// Pending returns a copy of the pending markers.
func (o *ErrorOverlay) Pending() []Marker {
	return slices.Clone(o.pending)
}

// Apply commits the pending set to the surface in a single call. With nothing
// pending it clears the surface.
func (o *ErrorOverlay) Apply() {
	if o.surface == nil {
		return
	}
	markers := slices.Clone(o.pending)
	if markers == nil {
		markers = []Marker{}
	}
	o.surface.SetMarkers(markers)
}
