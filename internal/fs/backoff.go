package fs

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"
)

// Backoff retries filesystem operations that fail with transient errors,
// doubling the delay after every attempt.
type Backoff struct {
	Attempts int
	Base     time.Duration
}

// DefaultBackoff waits 100ms, 200ms, 400ms, 800ms between five attempts.
var DefaultBackoff = Backoff{Attempts: 5, Base: 100 * time.Millisecond}

// Do runs fn until it succeeds, fails permanently, or ctx ends.
func (b Backoff) Do(ctx context.Context, op string, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Base

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !transient(lastErr) {
			return fmt.Errorf("%s: %w", op, lastErr)
		}
		if attempt == attempts {
			return fmt.Errorf("%s: giving up after %d attempts: %w", op, attempts, lastErr)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// transient covers busy files on network shares and interrupted syscalls.
func transient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
