package preview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/inkpress/inkpress/internal/logfields"
)

// Watcher observes the content tree and the configuration file and feeds
// change events into a debouncer.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce *Debouncer
}

// NewWatcher watches contentDir recursively plus any extra paths
// (typically the configuration file).
func NewWatcher(contentDir string, debounce *Debouncer, extraPaths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, debounce: debounce}

	if err := w.addTree(contentDir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	for _, p := range extraPaths {
		if err := fsw.Add(p); err != nil {
			slog.Warn("Cannot watch path", logfields.Path(p), logfields.Error(err))
		}
	}
	return w, nil
}

// addTree registers every directory under root with the watcher.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Run processes events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// New directories must be registered before their files produce events.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Cannot watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
		}
	}
	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		slog.Debug("Content changed", logfields.Path(event.Name))
		w.debounce.Trigger()
	}
}
