// Package worker runs sweeps one at a time as triggers arrive.
package worker

import (
	"context"
	"time"

	"github.com/raoulx24/sql-archiver/internal/logging"
	"github.com/raoulx24/sql-archiver/internal/mailbox"
	"github.com/raoulx24/sql-archiver/internal/sweep"
)

// Runner performs one sweep. *sweep.Archiver satisfies it.
type Runner interface {
	Run(ctx context.Context) sweep.Result
}

// Worker drains the trigger mailbox.
type Worker struct {
	runner Runner
	log    logging.Logger
	mb     *mailbox.Mailbox[Trigger]

	// OnResult, if set, sees every finished sweep.
	OnResult func(Trigger, sweep.Result)
}

// New creates a worker reading triggers from mb.
func New(runner Runner, log logging.Logger, mb *mailbox.Mailbox[Trigger]) *Worker {
	return &Worker{runner: runner, log: log, mb: mb}
}

// Start runs sweeps until ctx is cancelled. A sweep in progress finishes
// its current step before the loop exits.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")

	stop := context.AfterFunc(ctx, w.mb.Close)
	defer stop()

	for {
		trig, ok := w.mb.Take()
		if !ok {
			w.log.Info("worker stopped")
			return
		}
		w.handle(ctx, trig)
	}
}

func (w *Worker) handle(ctx context.Context, trig Trigger) {
	w.log.Debug("sweep triggered", "reason", trig.Reason, "queued", time.Since(trig.At))

	res := w.runner.Run(ctx)
	switch res.Outcome {
	case sweep.OutcomeFailed:
		w.log.Error("worker: sweep failed", "reason", trig.Reason, "error", res.Err)
	case sweep.OutcomeCompleted:
		w.log.Info("worker: sweep done", "reason", trig.Reason, "batch", res.Batch.ID, "files", len(res.Selection.Items))
	default:
		w.log.Debug("worker: nothing to archive", "reason", trig.Reason, "outcome", res.Outcome)
	}

	if w.mb.Pending() {
		w.log.Info("worker: follow-up sweep queued", "reason", trig.Reason)
	}

	if w.OnResult != nil {
		w.OnResult(trig, res)
	}
}
