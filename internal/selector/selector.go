// Package selector picks the batch of dump files that goes into one archive.
package selector

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/raoulx24/sql-archiver/internal/catalog"
	"github.com/raoulx24/sql-archiver/internal/logging"
)

var (
	// ErrNoFilesSelected means no file was both old enough and small enough.
	ErrNoFilesSelected = errors.New("no files selected")
	// ErrInsufficientVolume means the selected files do not reach the size floor.
	ErrInsufficientVolume = errors.New("not enough files collected")
)

// Policy bounds a selection.
type Policy struct {
	MinSize   int64
	MaxSize   int64
	AgeCutoff time.Duration
}

// Item is a selected record with the eligibility computed for this run.
type Item struct {
	catalog.Record
	Eligible bool
}

// Selection is the ordered batch picked for one archive.
type Selection struct {
	Items     []Item
	TotalSize int64
	Cutoff    time.Time
}

// Records returns the selected records in order.
func (s Selection) Records() []catalog.Record {
	out := make([]catalog.Record, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Record
	}
	return out
}

// Selector applies a Policy to the scanner's name-ordered records.
type Selector struct {
	policy Policy
	log    logging.Logger
}

func New(p Policy, log logging.Logger) *Selector {
	return &Selector{policy: p, log: log}
}

// Select walks records in order until the running total reaches MinSize.
// A record is taken when it was modified before now-AgeCutoff and still fits
// under MaxSize; anything else is skipped and the walk continues.
//
// The returned Selection is always populated with what was gathered. The
// error is ErrNoFilesSelected, ErrInsufficientVolume, or the first error
// from records.
func (s *Selector) Select(records iter.Seq2[catalog.Record, error], now time.Time) (Selection, error) {
	sel := Selection{Cutoff: now.Add(-s.policy.AgeCutoff)}

	for r, err := range records {
		if sel.TotalSize >= s.policy.MinSize {
			break
		}
		if err != nil {
			return sel, err
		}

		eligible := r.EligibleAt(sel.Cutoff)
		fits := sel.TotalSize+r.Size <= s.policy.MaxSize

		s.log.Debug("inspecting file",
			"name", r.Name,
			"size", humanize.IBytes(uint64(r.Size)),
			"modified", r.ModTime,
			"eligible", eligible,
			"fits", fits)

		if eligible && fits {
			sel.Items = append(sel.Items, Item{Record: r, Eligible: eligible})
			sel.TotalSize += r.Size
		}
		// stop before the next file is even stat'ed
		if sel.TotalSize >= s.policy.MinSize {
			break
		}
	}

	if len(sel.Items) == 0 {
		return sel, ErrNoFilesSelected
	}
	if sel.TotalSize < s.policy.MinSize {
		return sel, fmt.Errorf("%w: total size is %d (%s), need %s",
			ErrInsufficientVolume, sel.TotalSize,
			humanize.IBytes(uint64(sel.TotalSize)), humanize.IBytes(uint64(s.policy.MinSize)))
	}

	return sel, nil
}
