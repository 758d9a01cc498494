package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("images", "Cover Photo.PNG")
	assert.Regexp(t, regexp.MustCompile(`^images/[0-9a-f-]{36}\.png$`), key)
	assert.NotEqual(t, key, ObjectKey("images", "Cover Photo.PNG"))
}

func TestSupabaseStorage_KeyFromURL(t *testing.T) {
	s, err := NewSupabaseStorage("https://abc.supabase.co/", "service-key", "uploads")
	require.NoError(t, err)

	url := s.publicURL("images/a%20b.png")
	assert.Equal(t, "https://abc.supabase.co/storage/v1/object/public/uploads/images/a%20b.png", url)

	key, ok := s.KeyFromURL(url + "?t=1")
	assert.True(t, ok)
	assert.Equal(t, "images/a b.png", key)

	_, ok = s.KeyFromURL("https://abc.supabase.co/storage/v1/object/public/other/x.png")
	assert.False(t, ok)

	_, ok = s.KeyFromURL("https://cdn.example.com/x.png")
	assert.False(t, ok)
}

func TestS3Storage_KeyFromURL(t *testing.T) {
	s := &S3Storage{publicURL: s3PublicURL(S3Config{Bucket: "courses", Region: "eu-west-1"})}

	key, ok := s.KeyFromURL("https://courses.s3.eu-west-1.amazonaws.com/content/x.mp3")
	assert.True(t, ok)
	assert.Equal(t, "content/x.mp3", key)

	_, ok = s.KeyFromURL("https://other.s3.eu-west-1.amazonaws.com/content/x.mp3")
	assert.False(t, ok)

	minio := &S3Storage{publicURL: s3PublicURL(S3Config{Bucket: "courses", Endpoint: "http://localhost:9000/"})}
	key, ok = minio.KeyFromURL("http://localhost:9000/courses/images/y.jpg")
	assert.True(t, ok)
	assert.Equal(t, "images/y.jpg", key)
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), Config{})
	assert.NoError(t, err)
	assert.Nil(t, s)

	_, err = New(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Driver: "supabase"})
	assert.Error(t, err)

	assert.NoError(t, DeleteURL(context.Background(), nil, "https://x"))
}
