package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// partialSuffix marks a cross-device copy that has not been committed yet.
const partialSuffix = ".partial"

// Move renames src to dst. When they live on different devices it copies
// into dst.partial, checks that the source did not change meanwhile, then
// renames into place and removes src. Mode and mtime are preserved.
func (o *OSFS) Move(ctx context.Context, src, dst string) error {
	err := o.backoff.Do(ctx, "rename", func() error {
		return os.Rename(src, dst)
	})
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := o.crossDevice(ctx, src, dst); err != nil {
		return fmt.Errorf("moving %s across devices: %w", src, err)
	}
	return os.Remove(src)
}

func (o *OSFS) crossDevice(ctx context.Context, src, dst string) error {
	before, err := o.Stat(src)
	if err != nil {
		return err
	}

	tmp := dst + partialSuffix
	err = o.backoff.Do(ctx, "copy", func() error {
		return copyFile(ctx, src, tmp, before)
	})
	if err == nil {
		var after FileInfo
		after, err = o.Stat(src)
		if err == nil && sourceChanged(before, after) {
			err = ErrSourceChanged
		}
	}
	if err == nil {
		err = os.Rename(tmp, dst)
	}
	if err != nil {
		_ = os.Remove(tmp)
	}
	return err
}

func sourceChanged(before, after FileInfo) bool {
	if before.ID.known() && after.ID.known() && before.ID != after.ID {
		return true
	}
	return after.Size != before.Size || !after.MTime.Equal(before.MTime)
}

func copyFile(ctx context.Context, src, dst string, info FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, ctxReader{ctx: ctx, r: in}); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.MTime, info.MTime)
}

// ctxReader stops a long copy once ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
