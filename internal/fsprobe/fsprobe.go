// Package fsprobe checks whether fsnotify delivers events for a directory.
// Network and FUSE mounts often accept a watch and then stay silent, so the
// probe creates and renames a real file and waits for the event.
package fsprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultTimeout is how long Probe waits for the first event.
const DefaultTimeout = 200 * time.Millisecond

// Result reports whether fsnotify is usable and why.
type Result struct {
	FsnotifySupported bool
	Reason            string // set when unsupported
}

func unsupported(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Probe tests whether fsnotify reports create/rename events in dir.
func Probe(dir string, timeout time.Duration) Result {
	st, err := os.Stat(dir)
	if err != nil {
		return unsupported("stat failed: %v", err)
	}
	if !st.IsDir() {
		return unsupported("%s is not a directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return unsupported("cannot watch directory: %v", err)
	}

	// names must not carry the dump suffix or the probe would trigger a sweep
	tmp := filepath.Join(dir, ".sql-archiver-probe.tmp")
	final := filepath.Join(dir, ".sql-archiver-probe")

	f, err := os.Create(tmp)
	if err != nil {
		return unsupported("cannot create probe file: %v", err)
	}
	_ = f.Close()

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return unsupported("rename failed: %v", err)
	}
	defer os.Remove(final)

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return unsupported("event channel closed")
			}
			if ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				return Result{FsnotifySupported: true}
			}
		case err := <-w.Errors:
			return unsupported("watch error: %v", err)
		case <-deadline:
			return unsupported("no events received within %s", timeout)
		}
	}
}
