// Package fs is the filesystem layer under the archiver: listing, stat,
// moves that survive device boundaries, and the run lock.
package fs

import (
	"context"
	"os"
	"time"
)

// FileID identifies a file independent of its name. Zero on platforms
// without device/inode numbers.
type FileID struct {
	Dev uint64
	Ino uint64
}

func (id FileID) known() bool { return id != FileID{} }

type FileInfo struct {
	Path  string
	Name  string
	Size  int64
	Mode  os.FileMode
	MTime time.Time
	ID    FileID
	IsDir bool
}

type FS interface {
	ReadDir(path string) ([]os.DirEntry, error)
	Stat(path string) (FileInfo, error)
	MkdirAll(path string) error
	Remove(path string) error
	// Move relocates src to dst, falling back to copy+remove across devices.
	Move(ctx context.Context, src, dst string) error
}
