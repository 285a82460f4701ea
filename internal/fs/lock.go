package fs

import "path/filepath"

// LockName is the lock file created inside a locked directory.
const LockName = ".sql-archiver.lock"

// Lock is an advisory, process-wide lock on a directory. It guards the
// archive sequence numbering against a second sweep in another process.
type Lock struct {
	path    string
	release func() error
}

// LockDir takes the lock on dir without blocking. It returns ErrLocked if
// another holder exists.
func LockDir(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockName)
	release, err := acquire(path)
	if err != nil {
		return nil, err
	}
	return &Lock{path: path, release: release}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Unlock releases the lock. It is safe to call more than once.
func (l *Lock) Unlock() error {
	if l == nil || l.release == nil {
		return nil
	}
	err := l.release()
	l.release = nil
	return err
}
