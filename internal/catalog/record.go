package catalog

import (
	"time"

	"github.com/raoulx24/sql-archiver/internal/fs"
)

// Record describes one candidate dump file.
type Record struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// EligibleAt reports whether the file was last modified strictly before cutoff.
func (r Record) EligibleAt(cutoff time.Time) bool {
	return r.ModTime.Before(cutoff)
}

// FromFileInfo constructs a Record from a stat result.
func FromFileInfo(info fs.FileInfo) Record {
	return Record{
		Path:    info.Path,
		Name:    info.Name,
		Size:    info.Size,
		ModTime: info.MTime,
	}
}
