package watcher

import (
	"path/filepath"
	"time"

	"github.com/raoulx24/sql-archiver/internal/catalog"
	"github.com/raoulx24/sql-archiver/internal/worker"
)

// snapshot maps each dump file name to its modification time.
func (w *Watcher) snapshot() (map[string]time.Time, error) {
	w.mu.RLock()
	dir, suffix := w.dir, w.suffix
	w.mu.RUnlock()

	names, err := catalog.NewScanner(w.fs, suffix).Names(dir)
	if err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(names))
	for _, n := range names {
		info, err := w.fs.Stat(filepath.Join(dir, n))
		if err != nil {
			// vanished between listing and stat
			continue
		}
		out[n] = info.MTime
	}
	return out, nil
}

func (w *Watcher) prime() {
	cur, err := w.snapshot()
	if err != nil {
		w.log.Warn("watcher: initial scan failed", "error", err)
		cur = map[string]time.Time{}
	}
	w.mu.Lock()
	w.seen = cur
	w.mu.Unlock()
}

// detect puts a trigger if a dump file is new or was modified since the
// previous call.
func (w *Watcher) detect() bool {
	cur, err := w.snapshot()
	if err != nil {
		w.log.Error("watcher: scan failed", "error", err)
		return false
	}

	w.mu.Lock()
	changed := ""
	for name, mod := range cur {
		if last, ok := w.seen[name]; !ok || mod.After(last) {
			changed = name
			break
		}
	}
	w.seen = cur
	w.mu.Unlock()

	if changed == "" {
		return false
	}

	w.log.Debug("watcher: dump files changed", "file", changed)
	w.mb.Put(worker.Trigger{Reason: "watch", At: time.Now()})
	return true
}
