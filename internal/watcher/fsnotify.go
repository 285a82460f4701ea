package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename

// StartFsNotify runs detect() once a burst of events on dump files has been
// quiet for the debounce window. A dump being written by the database
// produces many Write events; only the settled state is interesting.
func (w *Watcher) StartFsNotify(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	w.mu.RLock()
	dir, debounce := w.dir, w.debounce
	w.mu.RUnlock()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.log.Info("watching for dump files", "dir", dir, "debounce", debounce)

	quiet := time.NewTimer(debounce)
	quiet.Stop()
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-quiet.C:
			w.detect()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("dump file event", "name", ev.Name, "op", ev.Op)
			quiet.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&relevantOps == 0 {
		return false
	}
	w.mu.RLock()
	suffix := w.suffix
	w.mu.RUnlock()
	return strings.HasSuffix(filepath.Base(ev.Name), suffix)
}
