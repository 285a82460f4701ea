package fsprobe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeMissingDirectory(t *testing.T) {
	res := Probe(filepath.Join(t.TempDir(), "nope"), DefaultTimeout)
	require.False(t, res.FsnotifySupported)
	require.Contains(t, res.Reason, "stat failed")
}

func TestProbeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	res := Probe(path, DefaultTimeout)
	require.False(t, res.FsnotifySupported)
	require.Contains(t, res.Reason, "not a directory")
}

func TestProbeCleansUp(t *testing.T) {
	dir := t.TempDir()
	res := Probe(dir, DefaultTimeout)
	if !res.FsnotifySupported {
		t.Logf("fsnotify unsupported here: %s", res.Reason)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
