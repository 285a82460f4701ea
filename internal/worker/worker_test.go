package worker

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raoulx24/sql-archiver/internal/logging"
	"github.com/raoulx24/sql-archiver/internal/mailbox"
	"github.com/raoulx24/sql-archiver/internal/sweep"
)

type fakeRunner struct {
	mu      sync.Mutex
	running int
	maxSeen int
	calls   int
	release chan struct{}
}

func (f *fakeRunner) Run(context.Context) sweep.Result {
	f.mu.Lock()
	f.running++
	f.calls++
	if f.running > f.maxSeen {
		f.maxSeen = f.running
	}
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	f.running--
	f.mu.Unlock()
	return sweep.Result{Outcome: sweep.OutcomeNoFilesSelected}
}

func TestWorkerRunsTriggers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mb := mailbox.New[Trigger]()
	r := &fakeRunner{}
	w := New(r, logging.Discard(), mb)

	results := make(chan sweep.Result, 4)
	w.OnResult = func(_ Trigger, res sweep.Result) { results <- res }

	go w.Start(ctx)
	mb.Put(Trigger{Reason: "schedule", At: time.Now()})

	select {
	case res := <-results:
		require.Equal(t, sweep.OutcomeNoFilesSelected, res.Outcome)
	case <-time.After(time.Second):
		t.Fatal("sweep did not run")
	}
}

func TestWorkerCollapsesTriggersAndNeverOverlaps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mb := mailbox.New[Trigger]()
	r := &fakeRunner{release: make(chan struct{})}
	w := New(r, logging.Discard(), mb)
	done := make(chan struct{}, 8)
	w.OnResult = func(Trigger, sweep.Result) { done <- struct{}{} }

	go w.Start(ctx)
	mb.Put(Trigger{Reason: "schedule"})

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.running == 1
	}, time.Second, 5*time.Millisecond)

	// three triggers while busy become a single follow-up sweep
	mb.Put(Trigger{Reason: "watch"})
	mb.Put(Trigger{Reason: "watch"})
	mb.Put(Trigger{Reason: "watch"})

	r.release <- struct{}{}
	r.release <- struct{}{}
	<-done
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	require.Equal(t, 2, r.calls)
	require.Equal(t, 1, r.maxSeen)
}

func TestWorkerLogsQueuedFollowUp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	mb := mailbox.New[Trigger]()
	r := &fakeRunner{release: make(chan struct{})}
	w := New(r, logging.New(&buf, logging.Options{Level: "info", Format: "json"}), mb)
	done := make(chan struct{}, 4)
	w.OnResult = func(Trigger, sweep.Result) { done <- struct{}{} }

	go w.Start(ctx)
	mb.Put(Trigger{Reason: "schedule"})

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.running == 1
	}, time.Second, 5*time.Millisecond)

	mb.Put(Trigger{Reason: "watch"})
	r.release <- struct{}{}
	<-done

	require.Contains(t, buf.String(), "follow-up sweep queued")

	r.release <- struct{}{}
	<-done
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := New(&fakeRunner{}, logging.Discard(), mailbox.New[Trigger]())

	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
