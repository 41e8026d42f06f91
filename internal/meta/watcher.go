package meta

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader serves lookups from the current meta document and swaps in a fresh
// store whenever the file changes on disk. The scraping pipeline rewrites
// meta.json in place, so a long-running server wants the new numbers without
// a restart.
type Reloader struct {
	path  string
	log   *zap.Logger
	store atomic.Pointer[Store]
}

// NewReloader loads the document at path and returns a reloader serving it.
// Like Load, a missing file yields an empty store rather than an error.
func NewReloader(path string, log *zap.Logger) (*Reloader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	store, err := Load(path)
	if err != nil {
		return nil, err
	}
	r := &Reloader{path: path, log: log}
	r.store.Store(store)
	return r, nil
}

// Lookup finds the entry for a hero in the current document.
func (r *Reloader) Lookup(heroName string) *Entry {
	return r.store.Load().Lookup(heroName)
}

// Loaded reports whether the current document was actually read and parsed.
func (r *Reloader) Loaded() bool {
	return r.store.Load().Loaded()
}

// Len returns the number of hero entries in the current document.
func (r *Reloader) Len() int {
	return r.store.Load().Len()
}

// Reload re-reads the document from disk and swaps it in.
func (r *Reloader) Reload() error {
	store, err := Load(r.path)
	if err != nil {
		return err
	}
	r.store.Store(store)
	r.log.Info("meta document reloaded",
		zap.String("path", r.path),
		zap.Int("entries", store.Len()))
	return nil
}

// Watch blocks watching the document's directory and reloads on every write
// or create of the file, until ctx is cancelled. The directory is watched
// rather than the file itself so atomic rename-over-writes are caught.
func (r *Reloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			r.log.Warn("file watcher close failed", zap.Error(closeErr))
		}
	}()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	base := filepath.Base(r.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.Reload(); err != nil {
				r.log.Warn("meta reload failed", zap.Error(err))
			}
		case werr := <-watcher.Errors:
			r.log.Warn("file watcher error", zap.Error(werr))
		}
	}
}
