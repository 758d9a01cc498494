package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrDisabled is returned when no storage driver is configured.
var ErrDisabled = errors.New("file storage is not configured")

// Storage keeps uploaded course images and lesson files.
type Storage interface {
	// Upload stores r under key and returns its public URL.
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL recovers the key of an object from its public URL.
	KeyFromURL(publicURL string) (string, bool)
}

type Config struct {
	Driver string // supabase | s3 | empty

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

// New returns the configured driver, or nil when uploads are disabled.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "":
		slog.Warn("STORAGE_DRIVER not set, uploads disabled")
		return nil, nil
	case "supabase":
		slog.Info("initializing supabase storage", "bucket", cfg.SupabaseBucket)
		s, err := NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		slog.Info("initializing S3 storage", "bucket", cfg.S3Bucket, "region", cfg.S3Region, "endpoint", cfg.S3Endpoint)
		s, err := NewS3Storage(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Driver)
	}
}

// ObjectKey builds "<folder>/<uuid><ext>" keeping the extension of filename.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)
}

// DeleteURL deletes the object behind publicURL if it belongs to s. Unknown URLs are ignored.
func DeleteURL(ctx context.Context, s Storage, publicURL string) error {
	if s == nil || publicURL == "" {
		return nil
	}
	key, ok := s.KeyFromURL(publicURL)
	if !ok {
		return nil
	}
	return s.Delete(ctx, key)
}
