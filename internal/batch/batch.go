// Package batch names archive units and numbers them within a day.
package batch

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	// ArchiveExt is the encrypted archive extension.
	ArchiveExt = ".tar.aes"
	tarExt     = ".tar"
	logExt     = ".log"
	dateLayout = "20060102"
)

// Batch identifies one archive unit and every path derived from it.
type Batch struct {
	DatePrefix string // YYYYMMDD
	Sequence   int    // 1-based, unique per day in the target directory

	ID           string // YYYYMMDD-NNNN
	TarPath      string // plaintext container, removed after encryption
	ArchivePath  string
	LogPath      string
	CompletedDir string
}

// DatePrefix formats t as the YYYYMMDD archive prefix.
func DatePrefix(t time.Time) string {
	return t.Format(dateLayout)
}

// New derives the batch paths for date/seq.
func New(targetDir, completedDir, date string, seq int) Batch {
	id := fmt.Sprintf("%s-%04d", date, seq)
	return Batch{
		DatePrefix:   date,
		Sequence:     seq,
		ID:           id,
		TarPath:      filepath.Join(targetDir, id+tarExt),
		ArchivePath:  filepath.Join(targetDir, id+ArchiveExt),
		LogPath:      filepath.Join(targetDir, id+logExt),
		CompletedDir: filepath.Join(completedDir, id),
	}
}

// ArchiveName is the base name of the encrypted archive.
func (b Batch) ArchiveName() string { return filepath.Base(b.ArchivePath) }

// LogName is the base name of the audit log.
func (b Batch) LogName() string { return filepath.Base(b.LogPath) }
