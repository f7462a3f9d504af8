// Package workspace tracks the script tabs open in the editor and the
// extension tree shown next to them. A Workspace is the host the controller
// reloads after a successful run.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/robbyt/go-scriptdesk/document"
	"github.com/robbyt/go-scriptdesk/internal/helpers"
)

// Extensions is the registry of extension scripts behind the tree.
type Extensions interface {
	ReloadExtensions(ctx context.Context) error
	Scripts() ([]string, error)
}

// Workspace holds open tabs in the order they were opened.
type Workspace struct {
	extensions Extensions

	mu     sync.Mutex
	tabs   []*document.Document
	active int
	tree   []string
	onTree []func(tree []string)

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates an empty Workspace over the given extension registry.
func New(extensions Extensions, handler slog.Handler) (*Workspace, error) {
	if extensions == nil {
		return nil, ErrExtensionsNil
	}
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	handler, logger := helpers.SetupLogger(handler, "workspace", "Workspace")
	return &Workspace{
		extensions: extensions,
		active:     -1,
		logHandler: handler,
		logger:     logger,
	}, nil
}

func (w *Workspace) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fmt.Sprintf("workspace.Workspace{Tabs: %d}", len(w.tabs))
}

// Open opens path in a new tab and activates it. A file that is already open
// is activated instead of being loaded twice.
func (w *Workspace) Open(path string) (*document.Document, error) {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	for i, doc := range w.tabs {
		if doc.Path() == path {
			w.active = i
			return doc, nil
		}
	}

	doc, err := document.Open(path)
	if err != nil {
		return nil, err
	}
	w.tabs = append(w.tabs, doc)
	w.active = len(w.tabs) - 1
	w.logger.Debug("Tab opened", "name", doc.Name(), "path", path)
	return doc, nil
}

// Add opens an existing document in a new tab and activates it.
func (w *Workspace) Add(doc *document.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs = append(w.tabs, doc)
	w.active = len(w.tabs) - 1
}

// Activate focuses the tab with the given name.
func (w *Workspace) Activate(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTabNotFound, name)
	}
	w.active = i
	return nil
}

// Close closes the tab with the given name. Closing the active tab activates
// its left neighbour.
func (w *Workspace) Close(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTabNotFound, name)
	}
	w.tabs = slices.Delete(w.tabs, i, i+1)

	switch {
	case len(w.tabs) == 0:
		w.active = -1
	case i < w.active, i == w.active && w.active > 0:
		w.active--
	}
	return nil
}

// Active returns the focused tab, or nil when nothing is open.
func (w *Workspace) Active() *document.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active < 0 {
		return nil
	}
	return w.tabs[w.active]
}

// Tabs returns the open documents in tab order.
func (w *Workspace) Tabs() []*document.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.tabs)
}

func (w *Workspace) indexOf(name string) int {
	return slices.IndexFunc(w.tabs, func(d *document.Document) bool {
		return d.Name() == name
	})
}

// Tree returns the extension scripts found by the last RefreshTree.
func (w *Workspace) Tree() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.tree)
}

// OnTreeChange registers fn to be called with the new tree after every refresh.
func (w *Workspace) OnTreeChange(fn func(tree []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTree = append(w.onTree, fn)
}

// ReloadExtensions reloads the host's extensions.
func (w *Workspace) ReloadExtensions(ctx context.Context) error {
	return w.extensions.ReloadExtensions(ctx)
}

// ReloadInactiveTabs re-reads every open, unfocused, file-backed tab from disk
// so it shows what the last run saved. Tabs with unsaved edits are left alone.
func (w *Workspace) ReloadInactiveTabs() {
	logger := w.logger.WithGroup("ReloadInactiveTabs")

	w.mu.Lock()
	var inactive []*document.Document
	for i, doc := range w.tabs {
		if i != w.active {
			inactive = append(inactive, doc)
		}
	}
	w.mu.Unlock()

	for _, doc := range inactive {
		switch {
		case doc.Path() == "":
			continue
		case doc.Dirty():
			logger.Debug("Skipping tab with unsaved edits", "name", doc.Name())
			continue
		}
		if err := doc.Reload(); err != nil {
			logger.Warn("Failed to reload tab", "name", doc.Name(), "error", err)
		}
	}
}

// RefreshTree rescans the extension scripts and notifies tree listeners.
func (w *Workspace) RefreshTree() {
	scripts, err := w.extensions.Scripts()
	if err != nil {
		w.logger.Warn("Failed to refresh extension tree", "error", err)
		return
	}

	w.mu.Lock()
	w.tree = scripts
	listeners := slices.Clone(w.onTree)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(slices.Clone(scripts))
	}
}
