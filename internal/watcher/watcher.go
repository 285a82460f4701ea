// Package watcher monitors the source directory and triggers sweeps when
// dump files appear or change.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raoulx24/sql-archiver/internal/config"
	"github.com/raoulx24/sql-archiver/internal/fs"
	"github.com/raoulx24/sql-archiver/internal/fsprobe"
	"github.com/raoulx24/sql-archiver/internal/logging"
	"github.com/raoulx24/sql-archiver/internal/mailbox"
	"github.com/raoulx24/sql-archiver/internal/worker"
)

// Watcher observes dump files and puts a trigger when the set changes.
type Watcher struct {
	mu sync.RWMutex

	dir      string
	suffix   string
	interval time.Duration
	mode     string
	debounce time.Duration

	fs  fs.FS
	log logging.Logger

	seen map[string]time.Time // name -> mtime

	mb *mailbox.Mailbox[worker.Trigger]
}

// New creates a watcher from the source configuration.
func New(cfg config.SourceConfig, log logging.Logger, mb *mailbox.Mailbox[worker.Trigger]) *Watcher {
	return &Watcher{
		dir:      cfg.Path,
		suffix:   cfg.Suffix,
		interval: cfg.Watch.PollInterval,
		mode:     cfg.Watch.Mode,
		debounce: cfg.Watch.DebounceWindow,
		fs:       fs.New(),
		log:      log,
		mb:       mb,
	}
}

// Start chooses the watching strategy from config and blocks until ctx ends.
// Files already present are recorded without triggering.
func (w *Watcher) Start(ctx context.Context) error {
	w.prime()

	w.mu.RLock()
	mode, dir := w.mode, w.dir
	w.mu.RUnlock()

	switch mode {
	case "off":
		return nil

	case "fsnotify":
		return w.StartFsNotify(ctx)

	case "poll":
		w.StartPolling(ctx)
		return nil

	case "auto":
		res := fsprobe.Probe(dir, fsprobe.DefaultTimeout)
		if res.FsnotifySupported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, falling back to polling", "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
