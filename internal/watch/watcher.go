// Package watch re-runs the export when the source tree changes.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"nbexport/internal/logfields"
)

// Watcher observes a source tree recursively and invokes a rebuild callback
// after a quiet period. Bursts of filesystem events (editors writing temp
// files, bulk copies) collapse into one rebuild.
type Watcher struct {
	root     string
	debounce time.Duration
	rebuild  func()
	watcher  *fsnotify.Watcher
}

// New creates a watcher over root. The rebuild callback runs on the watch
// goroutine; long rebuilds delay event handling but never lose the final
// state, because a change during a rebuild queues the next one.
func New(root string, debounce time.Duration, rebuild func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: root, debounce: debounce, rebuild: rebuild, watcher: fsw}
	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addRecursive registers root and every directory below it.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Skipping unwatchable path", logfields.Path(path), logfields.Error(err))
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				slog.Warn("Failed to watch directory", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// Run blocks until ctx is done, dispatching debounced rebuilds.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Warn("Failed to close watcher", logfields.Error(err))
		}
	}()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be watched before their contents settle.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			slog.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			pending = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))

		case <-pending:
			pending = nil
			w.rebuild()
		}
	}
}
