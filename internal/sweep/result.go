package sweep

import (
	"github.com/raoulx24/sql-archiver/internal/batch"
	"github.com/raoulx24/sql-archiver/internal/selector"
)

// Outcome tags how a sweep ended.
type Outcome int

const (
	// OutcomeCompleted means a batch was selected and its sources relocated.
	// ArchiveErr may still be set if the pipeline failed.
	OutcomeCompleted Outcome = iota
	OutcomeNoFilesSelected
	OutcomeInsufficientVolume
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNoFilesSelected:
		return "no_files_selected"
	case OutcomeInsufficientVolume:
		return "insufficient_volume"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one sweep.
type Result struct {
	Outcome   Outcome
	RunID     string
	Batch     *batch.Batch
	Selection selector.Selection

	// Err is the fatal error behind OutcomeFailed.
	Err error
	// ArchiveErr is a contained pipeline failure.
	ArchiveErr error
	// AuditErr and ShipErr are reported but never fail the sweep.
	AuditErr error
	ShipErr  error
}

// OK reports whether the sweep finished without a fatal or archive error.
// No-op outcomes count as OK.
func (r Result) OK() bool {
	return r.Outcome != OutcomeFailed && r.ArchiveErr == nil
}
