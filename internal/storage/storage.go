// Package storage wraps the object store holding user documents and
// rendered reports.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/config"
)

const defaultSignedURLTTL = 15 * time.Minute

// Service talks to one bucket of the object store.
type Service struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}

	return &Service{
		client: client,
		bucket: cfg.Bucket,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Upload stores an object under key. An empty contentType is inferred
// from the key's extension, falling back to application/octet-stream.
func (s *Service) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	s.logger.Debug("object uploaded",
		zap.String("key", key),
		zap.Int64("size", size),
		zap.String("content_type", contentType))
	return nil
}

// Download opens an object for reading. The caller closes the reader.
func (s *Service) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	// GetObject is lazy; surface missing keys now.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	return obj, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *Service) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// SignedGetURL returns a time-limited download URL for an object.
func (s *Service) SignedGetURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("signing download URL for %s: %w", key, err)
	}
	return u.String(), nil
}

// SignedPutURL returns a time-limited upload URL for an object.
func (s *Service) SignedPutURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, s.ttl)
	if err != nil {
		return "", fmt.Errorf("signing upload URL for %s: %w", key, err)
	}
	return u.String(), nil
}

// ContentTypeFor infers a MIME type from a key's extension.
func ContentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
