package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	supastorage "github.com/supabase-community/storage-go"
)

// SupabaseStorage stores objects in a public Supabase Storage bucket.
type SupabaseStorage struct {
	client  *supastorage.Client
	baseURL string
	bucket  string
}

func NewSupabaseStorage(supabaseURL, key, bucket string) (*SupabaseStorage, error) {
	if supabaseURL == "" || key == "" {
		return nil, errors.New("SUPABASE_URL or SUPABASE_KEY is not set")
	}
	if bucket == "" {
		bucket = "uploads"
	}
	base := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStorage{
		client:  supastorage.NewClient(base+"/storage/v1", key, nil),
		baseURL: base,
		bucket:  bucket,
	}, nil
}

func (s *SupabaseStorage) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	opts := supastorage.FileOptions{ContentType: &contentType}
	if _, err := s.client.UploadFile(s.bucket, key, r, opts); err != nil {
		return "", fmt.Errorf("upload to supabase: %w", err)
	}
	return s.publicURL(key), nil
}

func (s *SupabaseStorage) Delete(_ context.Context, key string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("delete from supabase: %w", err)
	}
	return nil
}

func (s *SupabaseStorage) publicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}

// KeyFromURL accepts ".../storage/v1/object/[public/]<bucket>/<key>[?query]" URLs of this bucket.
func (s *SupabaseStorage) KeyFromURL(publicURL string) (string, bool) {
	const marker = "/storage/v1/object/"
	idx := strings.Index(publicURL, marker)
	if idx == -1 {
		return "", false
	}
	rest := strings.TrimPrefix(publicURL[idx+len(marker):], "public/")
	if q := strings.Index(rest, "?"); q != -1 {
		rest = rest[:q]
	}

	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket != s.bucket || object == "" {
		return "", false
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}
	return object, true
}
