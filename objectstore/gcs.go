package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"portfolio/api/config"
)

type GCSStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewGCSStore connects to Google Cloud Storage. Without a credentials file
// the client falls back to application default credentials.
func NewGCSStore(ctx context.Context, cfg config.GCSConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("GCS_BUCKET is not set")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", cfg.CredentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	slog.Info("object storage ready", "bucket", cfg.Bucket)
	return &GCSStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, obj Object) (string, error) {
	writer := s.client.Bucket(s.bucket).Object(obj.Key).NewWriter(ctx)
	writer.ContentType = obj.ContentType
	writer.CacheControl = obj.CacheControl

	if _, err := io.Copy(writer, obj.Body); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to copy upload to GCS object %s: %w", obj.Key, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", obj.Key, err)
	}

	slog.Info("uploaded object", "bucket", s.bucket, "key", obj.Key)
	return PublicURL(s.publicBaseURL, s.bucket, obj.Key), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// PublicURL joins key onto base, or onto the bucket's storage.googleapis.com
// address when base is empty.
func PublicURL(base, bucket, key string) string {
	if base == "" {
		base = "https://storage.googleapis.com/" + url.PathEscape(bucket)
	}
	return strings.TrimRight(base, "/") + "/" + key
}
