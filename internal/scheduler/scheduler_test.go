package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raoulx24/sql-archiver/internal/logging"
)

func TestSchedulerFires(t *testing.T) {
	var fired atomic.Int32
	s, err := New("@every 1s", logging.Discard(), func(time.Time) { fired.Add(1) })
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return fired.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := New("whenever", logging.Discard(), func(time.Time) {})
	require.Error(t, err)
}

func TestSchedulerUpdate(t *testing.T) {
	s, err := New("0 3 * * *", logging.Discard(), func(time.Time) {})
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	require.Equal(t, 3, s.Next().Hour())

	require.Error(t, s.Update("not a spec"))
	require.Equal(t, "0 3 * * *", s.Spec())

	require.NoError(t, s.Update("30 4 * * *"))
	require.Equal(t, "30 4 * * *", s.Spec())
	require.Equal(t, 4, s.Next().Hour())
	require.Len(t, s.cron.Entries(), 1)
}

func TestSchedulerRecoversFromPanic(t *testing.T) {
	var calls atomic.Int32
	s, err := New("@every 1s", logging.Discard(), func(time.Time) {
		calls.Add(1)
		panic("boom")
	})
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 4*time.Second, 20*time.Millisecond)
}
