package filesystem

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/meridian-labs/docket-cli/internal/logger"
)

// Watcher reports candidate files appearing in an inbox folder.
type Watcher struct {
	lister  *Lister
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher filtered by the lister's extensions.
func NewWatcher(lister *Lister) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{lister: lister, watcher: w}, nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch watches the folder and invokes onCandidate for every candidate
// file created, renamed into place or written. Blocks until the context
// is cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context, folder string, onCandidate func(path string)) error {
	if err := w.watcher.Add(folder); err != nil {
		return fmt.Errorf("watching folder %s: %w", folder, err)
	}

	logger.Info("Watching %s", folder)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if !w.lister.Accepts(event.Name) {
				logger.Debug("Ignoring %s", event.Name)
				continue
			}
			logger.Debug("Candidate appeared: %s", event.Name)
			onCandidate(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
