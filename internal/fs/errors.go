package fs

import "errors"

var (
	// ErrLocked is returned by LockDir when another run holds the directory lock.
	ErrLocked = errors.New("directory is locked by another run")

	// ErrSourceChanged aborts a cross-device move whose source was modified
	// or replaced while it was being copied.
	ErrSourceChanged = errors.New("source changed during copy")
)
