// Package mailbox is a single-slot buffer where the latest message always wins.
package mailbox

import "sync"

// Mailbox is NOT a queue. It holds at most one pending message; Put
// overwrites it. Triggers that arrive while a sweep runs collapse into
// one follow-up sweep.
type Mailbox[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	msg    *T
	closed bool
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Put stores msg, replacing any pending one. It never blocks and is a
// no-op after Close. It reports whether an older message was replaced.
func (m *Mailbox[T]) Put(msg T) (replaced bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	replaced = m.msg != nil
	m.msg = &msg
	m.mu.Unlock()
	m.cond.Signal()
	return replaced
}

// Take blocks until a message is available and clears the slot.
// It returns false once the mailbox is closed.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.msg == nil && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		var zero T
		return zero, false
	}

	msg := *m.msg
	m.msg = nil
	return msg, true
}

// Pending reports whether a message is waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msg != nil
}

// Close wakes every blocked Take and drops the pending message.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.msg = nil
	m.mu.Unlock()
	m.cond.Broadcast()
}
