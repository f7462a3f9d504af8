// Package document holds the editable script buffer shown in an editor tab.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/robbyt/go-scriptdesk/internal/helpers"
)

// Document is a named, file-backed script buffer. It tracks whether the text
// differs from what was last loaded or saved and notifies listeners when that
// changes, which editors use to enable the save action.
type Document struct {
	mu        sync.Mutex
	name      string
	path      string
	text      string
	saved     string
	caret     int
	listeners []func(dirty bool)
}

// New creates an unsaved document with the given logical name and text.
func New(name, text string) (*Document, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	return &Document{name: name, text: text, saved: text}, nil
}

// Open loads a document from disk. The logical name is the file's base name.
func Open(path string) (*Document, error) {
	path = filepath.Clean(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	text := string(content)
	return &Document{
		name:  filepath.Base(path),
		path:  path,
		text:  text,
		saved: text,
	}, nil
}

func (d *Document) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("document.Document{Name: %s, SHA256: %s}", d.name, helpers.ShortSHA256(d.text))
}

// Name returns the logical file name, used to pick the compiler and linter.
func (d *Document) Name() string {
	return d.name
}

// Path returns the backing file path, or "" for an unsaved document.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// Text returns the current buffer contents.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// CaretOffset returns the caret's byte offset in the text.
func (d *Document) CaretOffset() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.caret
}

// SetCaret moves the caret, clamped to the text.
func (d *Document) SetCaret(offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.caret = clamp(offset, len(d.text))
}

// Dirty reports whether the text has unsaved changes.
func (d *Document) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text != d.saved
}

// OnChange registers a listener called with the new dirty state whenever it flips.
func (d *Document) OnChange(fn func(dirty bool)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// SetText replaces the text as a user edit would.
func (d *Document) SetText(text string) {
	d.update(func() {
		d.text = text
		d.caret = clamp(d.caret, len(text))
	})
}

// UpdateCode replaces the text programmatically, e.g. after reformatting.
// The caret keeps its offset where possible.
func (d *Document) UpdateCode(text string) {
	d.SetText(text)
}

// Save writes the text to the backing file. A document without unsaved
// edits is left alone, so the file is not touched.
func (d *Document) Save() error {
	return d.save(false)
}

func (d *Document) save(force bool) error {
	d.mu.Lock()
	path, text, clean := d.path, d.text, d.text == d.saved
	d.mu.Unlock()

	if path == "" {
		return ErrNoPath
	}
	if clean && !force {
		return nil
	}
	if err := writeFile(path, text); err != nil {
		return err
	}

	d.update(func() {
		d.saved = text
	})
	return nil
}

// SaveAs sets the backing file and writes the text to it, dirty or not.
func (d *Document) SaveAs(path string) error {
	d.mu.Lock()
	d.path = filepath.Clean(path)
	d.mu.Unlock()
	return d.save(true)
}

// Reload discards unsaved edits and re-reads the backing file.
func (d *Document) Reload() error {
	d.mu.Lock()
	path := d.path
	d.mu.Unlock()

	if path == "" {
		return ErrNoPath
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	d.update(func() {
		d.text = string(content)
		d.saved = d.text
		d.caret = clamp(d.caret, len(d.text))
	})
	return nil
}

// update applies fn under the lock and notifies listeners if the dirty state flipped.
func (d *Document) update(fn func()) {
	d.mu.Lock()
	before := d.text != d.saved
	fn()
	after := d.text != d.saved
	listeners := d.listeners
	d.mu.Unlock()

	if before == after {
		return
	}
	for _, l := range listeners {
		l(after)
	}
}

// writeFile replaces path atomically via a temp file in the same directory.
func writeFile(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to save script: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save script: %w", err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("failed to save script: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save script: %w", err)
	}
	return nil
}

func clamp(v, hi int) int {
	return max(0, min(v, hi))
}
