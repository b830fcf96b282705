package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/useraccounts/internal/logging"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a Store when its SQLite file, or the file's WAL, is
// modified by another process.
type Watcher struct {
	store    *Store
	path     string
	debounce time.Duration
	log      logging.Logger
}

func NewWatcher(store *Store, dbPath string, debounce time.Duration, log logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{store: store, path: filepath.Clean(dbPath), debounce: debounce, log: log}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == w.path || name == w.path+"-wal"
}

// Run watches the directory holding the database until ctx is done. Bursts
// of events within the debounce window trigger one reload.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "storage watcher error", "error", err)

		case <-timer.C:
			if err := w.store.Reload(ctx); err != nil {
				w.log.Warn(ctx, "storage reload failed", "error", err)
			}
		}
	}
}
