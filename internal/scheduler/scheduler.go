// Package scheduler fires sweep triggers on a cron schedule.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/sql-archiver/internal/logging"
)

// Scheduler wraps a cron instance with a single job.
type Scheduler struct {
	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID
	spec  string
	fire  func(at time.Time)
	log   logging.Logger
}

// New parses spec (standard five-field or @every/@daily descriptors) and
// prepares a scheduler that calls fire on every tick.
func New(spec string, log logging.Logger, fire func(at time.Time)) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{log}))),
		fire: fire,
		log:  log,
	}
	if err := s.schedule(spec); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.Spec(), "next", s.Next())
}

// Stop halts the scheduler; it does not wait for a running fire call.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Update swaps the schedule, keeping the old one if spec is invalid.
func (s *Scheduler) Update(spec string) error {
	if spec == s.Spec() {
		return nil
	}
	if err := s.schedule(spec); err != nil {
		return err
	}
	s.log.Info("schedule updated", "spec", spec, "next", s.Next())
	return nil
}

// Spec returns the active schedule.
func (s *Scheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Next returns the next fire time, or zero before Start.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entry
	s.mu.Unlock()
	return s.cron.Entry(id).Next
}

func (s *Scheduler) schedule(spec string) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("parsing schedule %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	s.entry = s.cron.Schedule(sched, cron.FuncJob(func() {
		s.fire(time.Now())
	}))
	s.spec = spec
	return nil
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	l logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
