package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mokshithabhi/chatpdf/internal/core"
)

func TestFetcher_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes"), 0o644))

	f := NewFetcher(nil)
	data, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)
}

func TestFetcher_LocalFileMissing(t *testing.T) {
	f := NewFetcher(nil)

	_, err := f.Fetch(context.Background(), "/nonexistent/doc.pdf")
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}

func TestFetcher_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("remote bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	data, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("remote bytes"), data)
}

func TestFetcher_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}

func TestFetcher_S3WithoutClient(t *testing.T) {
	f := NewFetcher(nil)

	_, err := f.Fetch(context.Background(), "s3://bucket/key.pdf")
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}

func TestSplitS3Locator(t *testing.T) {
	bucket, key, err := splitS3Locator("s3://my-bucket/docs/a/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "docs/a/b.pdf", key)

	_, _, err = splitS3Locator("s3://only-bucket")
	assert.Error(t, err)
}
