package metrics

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	m := New(false)
	m.ObserveRun("completed", 2*time.Second)
	m.ObserveRun("completed", time.Second)
	m.ObserveRun("no_files_selected", time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("no_files_selected")))
}

func TestObserveSelectionAndFailures(t *testing.T) {
	m := New(false)
	m.ObserveSelection(3, 18<<30)
	m.PipelineFailed("encrypt")
	m.ArchiveWritten(time.Unix(1713520800, 0))

	require.Equal(t, 3.0, testutil.ToFloat64(m.selectedFiles))
	require.Equal(t, float64(18<<30), testutil.ToFloat64(m.selectedBytes))
	require.Equal(t, 1.0, testutil.ToFloat64(m.pipelineFailures.WithLabelValues("encrypt")))
	require.Equal(t, 1713520800.0, testutil.ToFloat64(m.lastSuccess))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRun("completed", time.Second)
	m.ObserveSelection(1, 1)
	m.PipelineFailed("encrypt")
	m.ArchiveWritten(time.Now())
}

func TestHandlerAndTextfile(t *testing.T) {
	m := New(true)
	m.ObserveRun("failed", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Contains(t, rec.Body.String(), `sqlarchiver_runs_total{outcome="failed"} 1`)
	require.Contains(t, rec.Body.String(), "go_goroutines")

	path := filepath.Join(t.TempDir(), "sqlarchiver.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "sqlarchiver_run_duration_seconds_count 1"))
}
