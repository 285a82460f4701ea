// Package relocator moves archived dump files into the completed area.
package relocator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raoulx24/sql-archiver/internal/catalog"
	"github.com/raoulx24/sql-archiver/internal/fs"
	"github.com/raoulx24/sql-archiver/internal/logging"
)

// Error reports the file that could not be relocated.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("relocating %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Relocator struct {
	fs  fs.FS
	log logging.Logger
}

func New(filesystem fs.FS, log logging.Logger) *Relocator {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Relocator{fs: filesystem, log: log}
}

// Relocate moves every record into dir, creating it first. A file already
// present under the same name in dir is replaced. It stops at the first
// failure; files moved before it stay moved.
func (r *Relocator) Relocate(ctx context.Context, dir string, records []catalog.Record) error {
	if err := r.fs.MkdirAll(dir); err != nil {
		return &Error{Path: dir, Err: err}
	}

	for _, rec := range records {
		dst := filepath.Join(dir, rec.Name)

		if _, err := r.fs.Stat(dst); err == nil {
			r.log.Warn("replacing stale file in completed dir", "path", dst)
			if err := r.fs.Remove(dst); err != nil {
				return &Error{Path: dst, Err: err}
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return &Error{Path: dst, Err: err}
		}

		if err := r.fs.Move(ctx, rec.Path, dst); err != nil {
			return &Error{Path: rec.Path, Err: err}
		}
		r.log.Debug("relocated file", "from", rec.Path, "to", dst)
	}
	return nil
}
