package watcher

import (
	"context"
	"time"
)

// StartPolling lists the source directory every poll interval. The interval
// is re-read after each pass so a reloaded config takes effect without a
// restart.
func (w *Watcher) StartPolling(ctx context.Context) {
	t := time.NewTimer(w.pollInterval())
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.detect()
			t.Reset(w.pollInterval())
		}
	}
}

func (w *Watcher) pollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.interval <= 0 {
		return time.Minute
	}
	return w.interval
}
