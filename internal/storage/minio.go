// Package storage resolves model weights kept in MinIO / S3 into URLs the
// model server can download.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/talqs/talqs/backend/go-services/internal/config"
)

// DefaultPresignExpiry bounds how long a presigned weights URL stays valid.
const DefaultPresignExpiry = time.Hour

// objectStore is the subset of the minio client used here.
type objectStore interface {
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// MinIOStorage is a thin wrapper around the minio client.
type MinIOStorage struct {
	client objectStore
	bucket string
	expiry time.Duration
}

// NewMinIOStorage creates a MinIO client for cfg. The bucket is not created:
// weights are uploaded out of band.
func NewMinIOStorage(cfg config.MinIOConfig) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	return &MinIOStorage{client: mc, bucket: cfg.Bucket, expiry: DefaultPresignExpiry}, nil
}

// ParseObjectPath splits s3://bucket/key into its parts. ok is false for
// anything that is not an s3 URL.
func ParseObjectPath(path string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(path, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// ResolveWeights returns a presigned GET URL for s3:// paths after checking
// the object exists. Other paths are returned unchanged.
func (s *MinIOStorage) ResolveWeights(ctx context.Context, path string) (string, error) {
	bucket, key, ok := ParseObjectPath(path)
	if !ok {
		if strings.HasPrefix(path, "s3://") {
			return "", fmt.Errorf("malformed object path %q", path)
		}
		return path, nil
	}
	if _, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, key, s.expiry, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

// Ping checks that the configured bucket is reachable.
func (s *MinIOStorage) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
