// Package offsite ships finished archives to object storage.
package offsite

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/thanos-io/objstore"
	"github.com/thanos-io/objstore/providers/filesystem"
	"github.com/thanos-io/objstore/providers/s3"
)

// NewBucket opens the bucket named by bucketURL:
//
//	s3://endpoint/bucket[/prefix]   credentials from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY
//	filesystem:///path
//	inmemory://
func NewBucket(ctx context.Context, bucketURL string) (objstore.Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parsing bucket URL: %w", err)
	}

	switch u.Scheme {
	case "s3":
		path := strings.TrimPrefix(u.Path, "/")
		bucketName, prefix, _ := strings.Cut(path, "/")
		if bucketName == "" {
			return nil, fmt.Errorf("bucket name is empty")
		}

		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = "us-east-1"
		}

		var bucket objstore.Bucket
		bucket, err = s3.NewBucketWithConfig(
			log.With(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), "component", "offsite"),
			s3.Config{
				Bucket:    bucketName,
				Endpoint:  u.Host,
				Region:    region,
				Insecure:  u.Query().Get("insecure") == "true",
				AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			},
			"sql-archiver",
			func(tpt http.RoundTripper) http.RoundTripper {
				return tpt
			},
		)
		if err != nil {
			return nil, fmt.Errorf("creating S3 bucket: %w", err)
		}

		if prefix = strings.Trim(prefix, "/"); prefix != "" {
			bucket = objstore.NewPrefixedBucket(bucket, prefix)
		}
		return bucket, nil

	case "filesystem":
		return filesystem.NewBucket(u.Path)

	case "inmemory":
		return objstore.NewInMemBucket(), nil

	default:
		return nil, fmt.Errorf("unsupported bucket scheme: %s", u.Scheme)
	}
}
