// Package catalog lists the dump files waiting in the source directory.
package catalog

import (
	"fmt"
	"iter"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raoulx24/sql-archiver/internal/fs"
)

// FilesystemError reports a failed listing or stat of the source directory.
type FilesystemError struct {
	Op   string // "list" or "stat"
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("catalog: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// Scanner finds dump files by name suffix.
type Scanner struct {
	fs     fs.FS
	suffix string
}

func NewScanner(filesystem fs.FS, suffix string) *Scanner {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Scanner{fs: filesystem, suffix: suffix}
}

// Scan lists dir and returns its dump files in ascending name order.
// The listing happens immediately; each file is stat'ed only when the
// sequence reaches it, so a consumer that stops early never touches the
// rest. A stat failure is yielded as a *FilesystemError and ends the sequence.
func (s *Scanner) Scan(dir string) (iter.Seq2[Record, error], error) {
	names, err := s.Names(dir)
	if err != nil {
		return nil, err
	}

	return func(yield func(Record, error) bool) {
		for _, name := range names {
			full := filepath.Join(dir, name)
			info, err := s.fs.Stat(full)
			if err != nil {
				yield(Record{}, &FilesystemError{Op: "stat", Path: full, Err: err})
				return
			}
			if info.IsDir {
				continue
			}
			if !yield(FromFileInfo(info), nil) {
				return
			}
		}
	}, nil
}

// Names returns the dump file names Scan would visit, without stat'ing them.
func (s *Scanner) Names(dir string) ([]string, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, &FilesystemError{Op: "list", Path: dir, Err: err}
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), s.suffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
