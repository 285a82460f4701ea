package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/earthboundkid/versioninfo/v2"

	"github.com/raoulx24/sql-archiver/internal/config"
	"github.com/raoulx24/sql-archiver/internal/logging"
	"github.com/raoulx24/sql-archiver/internal/metrics"
	"github.com/raoulx24/sql-archiver/internal/offsite"
	"github.com/raoulx24/sql-archiver/internal/sweep"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration")
	once := flag.Bool("once", false, "Run a single sweep and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *version {
		fmt.Println(versioninfo.Short())
		return
	}

	os.Exit(run(*configPath, *once, *debug))
}

func run(configPath string, once, debug bool) int {
	boot := logging.New(os.Stderr, logging.Options{Debug: debug})

	if err := config.LoadDotEnv(".env"); err != nil {
		boot.Error("error loading .env file", "error", err)
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		boot.Error("failed to load config", "path", configPath, "error", err)
		return 1
	}

	log := logging.New(os.Stderr, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Debug:  debug,
	})
	log.Info("starting sql-archiver", "version", versioninfo.Short(), "once", once)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(!once)
	opts := []sweep.Option{sweep.WithMetrics(m)}

	if cfg.Offsite.URL != "" {
		bucket, err := offsite.NewBucket(ctx, cfg.Offsite.URL)
		if err != nil {
			log.Error("setting up offsite storage", "error", err)
			return 1
		}
		shipper := offsite.NewShipper(bucket, log)
		defer shipper.Close()
		opts = append(opts, sweep.WithShipper(shipper))
	}

	archiver := sweep.New(cfg, log, opts...)

	if once {
		return runOnce(ctx, archiver, m, cfg, log)
	}

	if cfg.Metrics.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metricsMux(m),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("serving metrics", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := runDaemon(ctx, configPath, archiver, cfg, log); err != nil {
		log.Error("daemon failed", "error", err)
		return 1
	}
	log.Info("exit complete")
	return 0
}

func runOnce(ctx context.Context, archiver *sweep.Archiver, m *metrics.Metrics, cfg *config.Config, log logging.Logger) int {
	res := archiver.Run(ctx)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("writing metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if !res.OK() {
		return 1
	}
	return 0
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
