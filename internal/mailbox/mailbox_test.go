package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLatestWins(t *testing.T) {
	m := New[int]()
	require.False(t, m.Put(1))
	require.True(t, m.Put(2))
	require.True(t, m.Pending())

	got, ok := m.Take()
	require.True(t, ok)
	require.Equal(t, 2, got)
	require.False(t, m.Pending())
}

func TestTakeBlocksUntilPut(t *testing.T) {
	m := New[string]()
	done := make(chan string)
	go func() {
		v, _ := m.Take()
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Take returned before Put")
	case <-time.After(20 * time.Millisecond):
	}

	m.Put("run")
	select {
	case v := <-done:
		require.Equal(t, "run", v)
	case <-time.After(time.Second):
		t.Fatal("Take did not wake up")
	}
}

func TestCloseReleasesTakers(t *testing.T) {
	m := New[int]()
	done := make(chan bool)
	go func() {
		_, ok := m.Take()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	m.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Take did not return after Close")
	}

	require.False(t, m.Put(3))
	_, ok := m.Take()
	require.False(t, ok)
}
