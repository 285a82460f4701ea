package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/raoulx24/sql-archiver/internal/config"
	"github.com/raoulx24/sql-archiver/internal/logging"
	"github.com/raoulx24/sql-archiver/internal/mailbox"
	"github.com/raoulx24/sql-archiver/internal/scheduler"
	"github.com/raoulx24/sql-archiver/internal/sweep"
	"github.com/raoulx24/sql-archiver/internal/watcher"
	"github.com/raoulx24/sql-archiver/internal/worker"
)

// runDaemon wires scheduler and watcher into a single worker and blocks
// until ctx is cancelled. SIGHUP reloads the configuration.
func runDaemon(ctx context.Context, configPath string, archiver *sweep.Archiver, cfg *config.Config, log logging.Logger) error {
	mb := mailbox.New[worker.Trigger]()

	w := worker.New(archiver, log, mb)

	sched, err := scheduler.New(cfg.Schedule.Cron, log, func(at time.Time) {
		if mb.Put(worker.Trigger{Reason: "schedule", At: at}) {
			log.Debug("schedule tick merged into pending sweep")
		}
	})
	if err != nil {
		return err
	}

	watch := watcher.New(cfg.Source, log, mb)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(ctx)
	}()

	sched.Start()
	defer sched.Stop()

	if cfg.Source.Watch.Mode != "off" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watch.Start(ctx); err != nil {
				log.Error("watcher stopped", "error", err)
			}
		}()
	}

	if cfg.Schedule.RunOnStart {
		mb.Put(worker.Trigger{Reason: "startup", At: time.Now()})
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			wg.Wait()
			return nil
		case <-hup:
			reload(configPath, archiver, sched, watch, log)
		}
	}
}

// reload applies a fresh config. Watch mode, metrics and offsite settings
// take effect only after a restart.
func reload(configPath string, archiver *sweep.Archiver, sched *scheduler.Scheduler, watch *watcher.Watcher, log logging.Logger) {
	newCfg, err := config.Load(configPath)
	if err != nil {
		log.Error("config reload failed", "error", err)
		return
	}

	archiver.UpdateConfig(newCfg)
	watch.UpdateConfig(newCfg.Source)
	if newCfg.Schedule.Cron != sched.Spec() {
		if err := sched.Update(newCfg.Schedule.Cron); err != nil {
			log.Error("schedule reload failed", "error", err)
		}
	}

	log.Info("config reloaded", "next", sched.Next())
}
