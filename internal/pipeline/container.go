package pipeline

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/raoulx24/sql-archiver/internal/catalog"
)

// buildContainer writes an uncompressed tar holding each record under its
// bare file name.
func buildContainer(ctx context.Context, path string, records []catalog.Record) (err error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("creating container: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing container: %w", cerr)
		}
	}()

	tw := tar.NewWriter(out)
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addFile(tw, r); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finishing container: %w", err)
	}
	return out.Sync()
}

func addFile(tw *tar.Writer, r catalog.Record) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", r.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", r.Path, err)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", r.Path, err)
	}
	hdr.Name = r.Name

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing tar header for %s: %w", r.Path, err)
	}
	// LimitReader keeps the entry consistent with the header if the file grows.
	if _, err := io.Copy(tw, io.LimitReader(f, hdr.Size)); err != nil {
		return fmt.Errorf("copying %s into container: %w", r.Path, err)
	}
	return nil
}
