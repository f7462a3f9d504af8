package controller

import (
	"context"

	"github.com/robbyt/go-scriptdesk/diagnostic"
	"github.com/robbyt/go-scriptdesk/tasks"
)

// Compiler analyzes a script for structural errors.
type Compiler interface {
	Analyze(fileName, text string, caretOffset int) (*diagnostic.Analysis, error)
}

// Linter finds style issues in a script and rewrites it into canonical format.
type Linter interface {
	Lint(text, fileName string) ([]diagnostic.Diagnostic, error)
	Format(text, fileName string) (string, error)
}

// Document is the script buffer the editor tab operates on.
type Document interface {
	Name() string
	Text() string
	CaretOffset() int
	UpdateCode(text string)
	Save() error
}

// Scheduler runs a task off the interactive thread. onComplete must run on the
// interactive thread exactly once, whatever the task's outcome.
type Scheduler interface {
	Execute(ctx context.Context, label string, task func(context.Context) error, onComplete func(tasks.Status))
}

// Host is the application the extensions are loaded into.
type Host interface {
	// ReloadExtensions reloads every extension script. It runs in the background.
	ReloadExtensions(ctx context.Context) error
	// ReloadInactiveTabs refreshes documents that are open but not focused.
	ReloadInactiveTabs()
	// RefreshTree refreshes the project tree view.
	RefreshTree()
}

// StatusLabel displays the one-line status.
type StatusLabel interface {
	SetText(text string)
}
