package compiler

import (
	"slices"

	"go.starlark.net/resolve"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/robbyt/go-scriptdesk/diagnostic"
)

// scopeAt lists the names visible at the caret in a resolved file: the
// predeclared names, the module globals, and the locals of every function
// enclosing the caret.
func scopeAt(f *syntax.File, caret diagnostic.Position, predeclared starlarkLib.StringDict) []string {
	seen := make(map[string]struct{}, len(predeclared))
	for name := range predeclared {
		seen[name] = struct{}{}
	}

	if mod, ok := f.Module.(*resolve.Module); ok {
		addBindings(seen, mod.Globals)
	}

	syntax.Walk(f, func(n syntax.Node) bool {
		if n == nil || !contains(n, caret) {
			return false
		}
		var fn any
		switch n := n.(type) {
		case *syntax.DefStmt:
			fn = n.Function
		case *syntax.LambdaExpr:
			fn = n.Function
		}
		if rf, ok := fn.(*resolve.Function); ok {
			addBindings(seen, rf.Locals)
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func addBindings(seen map[string]struct{}, bindings []*resolve.Binding) {
	for _, b := range bindings {
		if b != nil && b.First != nil {
			seen[b.First.Name] = struct{}{}
		}
	}
}

// contains reports whether the caret lies within the node's span, inclusive.
func contains(n syntax.Node, caret diagnostic.Position) bool {
	if _, ok := n.(*syntax.File); ok {
		return true
	}
	start, end := n.Span()
	return !before(caret, start) && !after(caret, end)
}

func before(a diagnostic.Position, b syntax.Position) bool {
	return a.Line < int(b.Line) || (a.Line == int(b.Line) && a.Column < int(b.Col))
}

func after(a diagnostic.Position, b syntax.Position) bool {
	return a.Line > int(b.Line) || (a.Line == int(b.Line) && a.Column > int(b.Col))
}
