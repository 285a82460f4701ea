package audit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raoulx24/sql-archiver/internal/catalog"
	"github.com/raoulx24/sql-archiver/internal/selector"
)

func selection() selector.Selection {
	mtime := time.Date(2024, 4, 19, 9, 30, 15, 123456000, time.Local)
	return selector.Selection{
		Items: []selector.Item{
			{Record: catalog.Record{Name: "a.sql", Size: 1024, ModTime: mtime}, Eligible: true},
			{Record: catalog.Record{Name: "b.sql", Size: 2048, ModTime: mtime.Truncate(time.Second)}, Eligible: true},
		},
		TotalSize: 3072,
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "20240419-0001.log", selection()))

	want := "# 20240419-0001.log\n" +
		"\n" +
		"Selected Files:\n" +
		"File Name: a.sql\n" +
		"File Size: 1024 bytes\n" +
		"File Modification Time: 2024-04-19 09:30:15.123456\n" +
		"Is Target: True\n" +
		"\n" +
		"File Name: b.sql\n" +
		"File Size: 2048 bytes\n" +
		"File Modification Time: 2024-04-19 09:30:15\n" +
		"Is Target: True\n" +
		"\n"
	require.Equal(t, want, buf.String())
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20240419-0002.log")
	require.NoError(t, Write(path, selection()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# 20240419-0002.log\n")
	require.Contains(t, string(data), "File Name: b.sql\n")
}

func TestWriteUnwritableLocation(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing", "x.log"), selection())
	require.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 999, time.Local)
	require.Equal(t, "2024-01-02 03:04:05", FormatTime(ts))
	require.Equal(t, "2024-01-02 03:04:05.000001", FormatTime(ts.Add(time.Microsecond)))
}
