// Package watch notices when open scripts change on disk, so they can be
// checked again without the user doing anything.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robbyt/go-scriptdesk/internal/helpers"
)

// DefaultDebounce is how long the watcher waits for further events before
// reporting a change.
const DefaultDebounce = 50 * time.Millisecond

// Watcher reports changes to a fixed set of files. Directories are watched
// rather than the files themselves, so editors that save by renaming a temp
// file over the original are still noticed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	onChange func(paths []string)
	debounce time.Duration

	logger *slog.Logger
}

// New starts watching paths. onChange receives the sorted set of paths that
// changed during one debounce window.
func New(paths []string, onChange func(paths []string), handler slog.Handler) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("change callback cannot be nil")
	}
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	_, logger := helpers.SetupLogger(handler, "watch", "Watcher")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error setting up watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]struct{}, len(paths)),
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger,
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, present := dirs[dir]; present {
			continue
		}
		dirs[dir] = struct{}{}
		logger.Debug("Adding watch", "dir", dir)
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to add watch on %s: %w", dir, err)
		}
	}
	return w, nil
}

// SetDebounce changes the debounce window. It must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run delivers change notifications until ctx is cancelled, then releases
// the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			changed := map[string]struct{}{}
			w.collect(event, changed)

			// Debounce: gather everything else that arrives shortly after.
			timer := time.NewTimer(w.debounce)
		outer:
			for {
				select {
				case event, ok := <-w.fsw.Events:
					if !ok {
						break outer
					}
					w.collect(event, changed)
				case <-timer.C:
					break outer
				case <-ctx.Done():
					timer.Stop()
					return nil
				}
			}
			timer.Stop()

			if len(changed) == 0 {
				continue
			}
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			w.logger.InfoContext(ctx, "Files changed", "paths", paths)
			w.onChange(paths)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "Error watching files", "error", err)
		}
	}
}

func (w *Watcher) collect(event fsnotify.Event, changed map[string]struct{}) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	name := filepath.Clean(event.Name)
	if _, watched := w.files[name]; !watched {
		w.logger.Debug("Skipping notification", "path", name)
		return
	}
	changed[name] = struct{}{}
}
