// Package sweep runs one archiving pass over the source directory.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/raoulx24/sql-archiver/internal/aescrypt"
	"github.com/raoulx24/sql-archiver/internal/audit"
	"github.com/raoulx24/sql-archiver/internal/batch"
	"github.com/raoulx24/sql-archiver/internal/catalog"
	"github.com/raoulx24/sql-archiver/internal/config"
	"github.com/raoulx24/sql-archiver/internal/fs"
	"github.com/raoulx24/sql-archiver/internal/logging"
	"github.com/raoulx24/sql-archiver/internal/metrics"
	"github.com/raoulx24/sql-archiver/internal/pipeline"
	"github.com/raoulx24/sql-archiver/internal/relocator"
	"github.com/raoulx24/sql-archiver/internal/selector"
)

// Shipper copies a finished batch somewhere else. *offsite.Shipper satisfies it.
type Shipper interface {
	Ship(ctx context.Context, b batch.Batch) error
}

// Archiver owns the configuration and collaborators of a sweep.
type Archiver struct {
	mu  sync.RWMutex
	cfg config.Config

	fs           fs.FS
	log          logging.Logger
	metrics      *metrics.Metrics
	shipper      Shipper
	now          func() time.Time
	newEncryptor func(config.EncryptionConfig) pipeline.EncryptorFactory
}

type Option func(*Archiver)

func WithFS(f fs.FS) Option { return func(a *Archiver) { a.fs = f } }
func WithClock(now func() time.Time) Option { return func(a *Archiver) { a.now = now } }
func WithMetrics(m *metrics.Metrics) Option { return func(a *Archiver) { a.metrics = m } }
func WithShipper(s Shipper) Option { return func(a *Archiver) { a.shipper = s } }

// WithEncryptor replaces the AES Crypt encryptor.
func WithEncryptor(f func(config.EncryptionConfig) pipeline.EncryptorFactory) Option {
	return func(a *Archiver) { a.newEncryptor = f }
}

func New(cfg *config.Config, log logging.Logger, opts ...Option) *Archiver {
	a := &Archiver{
		cfg:          *cfg,
		fs:           fs.New(),
		log:          log,
		now:          time.Now,
		newEncryptor: aesEncryptor,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func aesEncryptor(enc config.EncryptionConfig) pipeline.EncryptorFactory {
	return func() (pipeline.FileEncryptor, error) {
		return aescrypt.New(enc.Passphrase, int(enc.BufferSize))
	}
}

// UpdateConfig swaps the configuration used by the next Run.
func (a *Archiver) UpdateConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = *cfg
	a.mu.Unlock()
}

// Run performs one sweep. It never panics on expected conditions; the
// outcome and any errors are in the Result.
func (a *Archiver) Run(ctx context.Context) Result {
	a.mu.RLock()
	cfg := a.cfg
	a.mu.RUnlock()

	start := a.now()
	runID := uuid.NewString()
	log := a.log.With("run", runID)
	log.Info("initiating archive process", "source", cfg.Source.Path)

	res := a.run(ctx, cfg, log, start)
	res.RunID = runID

	a.metrics.ObserveRun(res.Outcome.String(), a.now().Sub(start))
	switch {
	case res.Outcome == OutcomeFailed:
		log.Error("archive process failed", "error", res.Err)
	case res.Outcome == OutcomeCompleted:
		log.Info("archive process finished", "batch", res.Batch.ID, "archived", res.ArchiveErr == nil)
	}
	return res
}

func (a *Archiver) run(ctx context.Context, cfg config.Config, log logging.Logger, start time.Time) Result {
	for _, dir := range []string{cfg.Destination.Target, cfg.Destination.Completed} {
		if err := a.fs.MkdirAll(dir); err != nil {
			return failed(fmt.Errorf("creating %s: %w", dir, err))
		}
	}

	lock, err := fs.LockDir(cfg.Destination.Target)
	if err != nil {
		return failed(err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("releasing lock failed", "path", lock.Path(), "error", err)
		}
	}()

	records, err := catalog.NewScanner(a.fs, cfg.Source.Suffix).Scan(cfg.Source.Path)
	if err != nil {
		return failed(err)
	}

	sel, err := selector.New(selector.Policy{
		MinSize:   int64(cfg.Policy.MinSize),
		MaxSize:   int64(cfg.Policy.MaxSize),
		AgeCutoff: cfg.Policy.AgeCutoff,
	}, log).Select(records, start)
	switch {
	case errors.Is(err, selector.ErrNoFilesSelected):
		log.Warn("no files selected")
		return Result{Outcome: OutcomeNoFilesSelected, Selection: sel}
	case errors.Is(err, selector.ErrInsufficientVolume):
		log.Warn("not enough files collected", "total", sel.TotalSize, "size", humanize.IBytes(uint64(sel.TotalSize)))
		return Result{Outcome: OutcomeInsufficientVolume, Selection: sel}
	case err != nil:
		return failed(err)
	}

	a.metrics.ObserveSelection(len(sel.Items), sel.TotalSize)
	log.Info("batch selected", "files", len(sel.Items), "total", sel.TotalSize, "size", humanize.IBytes(uint64(sel.TotalSize)))

	b, err := batch.NewSequencer(a.fs).Allocate(cfg.Destination.Target, cfg.Destination.Completed, start)
	if err != nil {
		return failed(err)
	}
	res := Result{Outcome: OutcomeCompleted, Batch: &b, Selection: sel}
	selected := sel.Records()

	p := pipeline.New(a.fs, a.newEncryptor(cfg.Encryption), log)
	if err := p.Run(ctx, b, selected); err != nil {
		log.Error("error archiving files", "batch", b.ID, "error", err)
		a.metrics.PipelineFailed(string(pipeline.StageOf(err)))
		res.ArchiveErr = err

		if !cfg.Policy.RelocateAlways() {
			log.Warn("leaving sources in place after archive failure", "files", len(selected))
			res.Outcome = OutcomeFailed
			res.Err = err
			return res
		}
	} else {
		a.metrics.ArchiveWritten(a.now())
	}

	if err := relocator.New(a.fs, log).Relocate(ctx, b.CompletedDir, selected); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if err := audit.Write(b.LogPath, sel); err != nil {
		log.Error("writing audit log failed", "path", b.LogPath, "error", err)
		res.AuditErr = err
	}

	if a.shipper != nil && res.ArchiveErr == nil {
		if err := a.shipper.Ship(ctx, b); err != nil {
			log.Error("off-site shipping failed", "batch", b.ID, "error", err)
			res.ShipErr = err
		}
	}

	return res
}

func failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: err}
}
