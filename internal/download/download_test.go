package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/sky.png"))
	assert.True(t, IsURL("HTTP://example.com/sky.png"))
	assert.False(t, IsURL("assets/background.png"))
	assert.False(t, IsURL(""))
}

func TestCachePath(t *testing.T) {
	assert.Equal(t, filepath.Join("cache", "sky.jpg"), CachePath("https://x.test/img/sky.jpeg?w=2", "cache"))
	assert.Equal(t, filepath.Join("cache", "a_b.png"), CachePath("https://x.test/a b", "cache"))
}

func TestImageFetchesAndCaches(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := Image(context.Background(), srv.Client(), srv.URL+"/bg.png", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bg.png"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))

	again, err := Image(context.Background(), srv.Client(), srv.URL+"/bg.png", dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, requests)
}

func TestImageRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := Image(context.Background(), srv.Client(), srv.URL+"/page", t.TempDir())
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestImageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Image(context.Background(), srv.Client(), srv.URL+"/missing.png", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestImageWithoutExtensionIsCachedUnderServedType(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("\xff\xd8 fake"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := Image(context.Background(), srv.Client(), srv.URL+"/photo", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo.jpg"), path)

	again, err := Image(context.Background(), srv.Client(), srv.URL+"/photo", dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, requests, "the cached jpeg is reused")
}
