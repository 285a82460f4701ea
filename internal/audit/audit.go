// Package audit writes the per-batch record of what was archived.
package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raoulx24/sql-archiver/internal/selector"
)

// Write creates the log file at path describing sel.
func Write(path string, sel selector.Selection) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating audit log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing audit log: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := Render(w, filepath.Base(path), sel); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Render writes the log body:
//
//	# <name>
//
//	Selected Files:
//	File Name: ...
//	File Size: N bytes
//	File Modification Time: YYYY-MM-DD HH:MM:SS[.ffffff]
//	Is Target: True|False
//	<blank>
func Render(w io.Writer, name string, sel selector.Selection) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	b.WriteString("Selected Files:\n")
	for _, it := range sel.Items {
		fmt.Fprintf(&b, "File Name: %s\n", it.Name)
		fmt.Fprintf(&b, "File Size: %d bytes\n", it.Size)
		fmt.Fprintf(&b, "File Modification Time: %s\n", FormatTime(it.ModTime))
		fmt.Fprintf(&b, "Is Target: %s\n", pyBool(it.Eligible))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatTime renders t in local time, with microseconds only when non-zero.
func FormatTime(t time.Time) string {
	t = t.Local()
	if t.Nanosecond()/1000 == 0 {
		return t.Format(time.DateTime)
	}
	return t.Format("2006-01-02 15:04:05.000000")
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
