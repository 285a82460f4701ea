package watcher

import (
	"github.com/raoulx24/sql-archiver/internal/config"
)

// UpdateConfig applies a reloaded source section. Poll interval and suffix
// take effect on the next pass; a different directory or suffix forgets
// what has been seen, so the next pass triggers a sweep if dumps exist.
// Switching watch mode or the fsnotify directory needs a restart.
func (w *Watcher) UpdateConfig(cfg config.SourceConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cfg.Watch.Mode != w.mode {
		w.log.Warn("watch mode change ignored until restart", "current", w.mode, "configured", cfg.Watch.Mode)
	}
	if cfg.Path != w.dir || cfg.Suffix != w.suffix {
		w.seen = nil
	}

	w.dir = cfg.Path
	w.suffix = cfg.Suffix
	w.interval = cfg.Watch.PollInterval
	w.debounce = cfg.Watch.DebounceWindow
}
