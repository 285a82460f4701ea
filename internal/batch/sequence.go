package batch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raoulx24/sql-archiver/internal/fs"
)

// Sequencer numbers archives by scanning the target directory.
// It does no locking of its own; callers hold fs.LockDir on the target.
type Sequencer struct {
	fs fs.FS
}

func NewSequencer(filesystem fs.FS) *Sequencer {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Sequencer{fs: filesystem}
}

// Next returns one more than the highest NNNN among files named
// <prefix>NNNN.tar.aes in dir, or 1 when there are none. prefix includes the
// trailing dash, e.g. "20240419-". Names that do not parse are ignored.
func (s *Sequencer) Next(dir, prefix string) (int, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", dir, err)
	}

	highest := 0
	for _, e := range entries {
		if n, ok := parseSequence(e.Name(), prefix); ok && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// Allocate builds the next Batch for t.
func (s *Sequencer) Allocate(targetDir, completedDir string, t time.Time) (Batch, error) {
	date := DatePrefix(t)
	seq, err := s.Next(targetDir, date+"-")
	if err != nil {
		return Batch{}, err
	}
	return New(targetDir, completedDir, date, seq), nil
}

func parseSequence(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ArchiveExt) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ArchiveExt)
	if digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
