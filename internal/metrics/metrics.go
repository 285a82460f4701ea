// Package metrics exposes sweep outcomes to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sqlarchiver"

// Metrics owns its registry so tests and one-shot runs start clean.
type Metrics struct {
	reg *prometheus.Registry

	runs             *prometheus.CounterVec
	pipelineFailures *prometheus.CounterVec
	selectedBytes    prometheus.Gauge
	selectedFiles    prometheus.Gauge
	runDuration      prometheus.Histogram
	lastSuccess      prometheus.Gauge
}

// New registers the archiver collectors. withRuntime adds the Go and
// process collectors, which only make sense for the long-running daemon.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Sweeps by outcome.",
		}, []string{"outcome"}),
		pipelineFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_failures_total",
			Help:      "Archive pipeline failures by stage.",
		}, []string{"stage"}),
		selectedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_bytes",
			Help:      "Total size of the last selected batch.",
		}),
		selectedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_files",
			Help:      "Number of files in the last selected batch.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10), // 0.1s .. ~7h
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last sweep that produced an archive.",
		}),
	}
	reg.MustRegister(m.runs, m.pipelineFailures, m.selectedBytes, m.selectedFiles, m.runDuration, m.lastSuccess)
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return m
}

// ObserveRun records one finished sweep.
func (m *Metrics) ObserveRun(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(took.Seconds())
}

// ObserveSelection records the size of a selected batch.
func (m *Metrics) ObserveSelection(files int, bytes int64) {
	if m == nil {
		return
	}
	m.selectedFiles.Set(float64(files))
	m.selectedBytes.Set(float64(bytes))
}

// PipelineFailed counts a contained pipeline failure.
func (m *Metrics) PipelineFailed(stage string) {
	if m == nil {
		return
	}
	m.pipelineFailures.WithLabelValues(stage).Inc()
}

// ArchiveWritten stamps the last successful archive time.
func (m *Metrics) ArchiveWritten(at time.Time) {
	if m == nil {
		return
	}
	m.lastSuccess.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
