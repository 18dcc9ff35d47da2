package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the settings file so the scheduler can re-arm
// its alarms. It watches the parent directory rather than the file itself:
// atomic saves replace the file by rename, which would silently detach a
// direct file watch.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	changes chan struct{}
}

// NewWatcher starts watching the directory containing path. Events for other
// files in the directory are ignored.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings: creating watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("settings: watching %s: %w", dir, err)
	}

	logger.Info("watching settings file", "path", path)

	return &Watcher{
		path:    path,
		logger:  logger,
		watcher: fsw,
		changes: make(chan struct{}, 1),
	}, nil
}

// Changes returns the change feed. At most one notification is buffered;
// bursts of writes coalesce into a single signal.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run pumps filesystem events into the change feed until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	base := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("settings watcher stopping")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != base {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.logger.Debug("settings file changed", "op", event.Op.String())

			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("settings watcher error", "error", err)
		}
	}
}
