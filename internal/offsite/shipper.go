package offsite

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/thanos-io/objstore"

	"github.com/raoulx24/sql-archiver/internal/batch"
	"github.com/raoulx24/sql-archiver/internal/logging"
)

// Shipper uploads a batch's encrypted archive and audit log.
type Shipper struct {
	bucket objstore.Bucket
	log    logging.Logger
}

func NewShipper(bucket objstore.Bucket, log logging.Logger) *Shipper {
	return &Shipper{bucket: bucket, log: log}
}

// ObjectName is the key a local file of batch b is stored under.
func ObjectName(b batch.Batch, file string) string {
	return path.Join(b.DatePrefix, path.Base(file))
}

// Ship uploads the archive, then the log. The archive must exist.
func (s *Shipper) Ship(ctx context.Context, b batch.Batch) error {
	if err := s.upload(ctx, b, b.ArchivePath); err != nil {
		return err
	}
	if _, err := os.Stat(b.LogPath); err == nil {
		if err := s.upload(ctx, b, b.LogPath); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shipper) upload(ctx context.Context, b batch.Batch, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	name := ObjectName(b, file)
	if err := s.bucket.Upload(ctx, name, f); err != nil {
		return fmt.Errorf("uploading %s to %s: %w", file, name, err)
	}
	s.log.Info("shipped file off-site", "object", name, "bucket", s.bucket.Name())
	return nil
}

// Close releases the bucket client.
func (s *Shipper) Close() error {
	return s.bucket.Close()
}
