//go:build windows

package fs

import (
	"errors"
	"fmt"
	"os"
)

// acquire creates path exclusively. A crashed run leaves the file behind and
// it has to be removed by hand.
func acquire(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("creating lock file: %w", err)
	}
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())

	return func() error {
		_ = f.Close()
		return os.Remove(path)
	}, nil
}
