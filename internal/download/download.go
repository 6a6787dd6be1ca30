// Package download fetches remote background images into a local cache directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const userAgent = "metaball-renderer/1.0"

// ErrNotImage is returned when the server answers with something other than a PNG or JPEG.
var ErrNotImage = errors.New("not a png or jpeg image")

// IsURL reports whether s names a remote resource rather than a local path.
func IsURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// CachePath returns where Image stores url under dir when the URL names its extension. Without
// one the served Content-Type decides, and the ".png" form is returned.
func CachePath(url, dir string) string {
	name := sanitizeFilename(filenameFromURL(url))
	ext := extensionFromURL(url)
	if ext == "" {
		ext = ".png"
	}
	return filepath.Join(dir, name+ext)
}

// cached returns a non-empty file already stored for url under dir, trying every extension the
// download may have been saved with.
func cached(url, dir string) (string, bool) {
	base := filepath.Join(dir, sanitizeFilename(filenameFromURL(url)))
	candidates := []string{".png", ".jpg"}
	if ext := extensionFromURL(url); ext != "" {
		candidates = append([]string{ext}, candidates...)
	}
	for _, ext := range candidates {
		if info, err := os.Stat(base + ext); err == nil && info.Size() > 0 {
			return base + ext, true
		}
	}
	return "", false
}

// Image fetches the image at url into dir and returns the saved path. When the file is already
// cached no request is made. dir is created if needed.
func Image(ctx context.Context, client *http.Client, url, dir string) (string, error) {
	if path, ok := cached(url, dir); ok {
		return path, nil
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}

	ext := extensionFromContentType(resp.Header.Get("Content-Type"))
	if ext == "" {
		ext = extensionFromURL(url)
	}
	if ext == "" {
		return "", fmt.Errorf("download %s: %w", url, ErrNotImage)
	}
	saved := filepath.Join(dir, sanitizeFilename(filenameFromURL(url))+ext)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	out, err := os.Create(saved)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = os.Remove(saved)
		return "", fmt.Errorf("download: %w", err)
	}
	return saved, nil
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return ".jpg"
	}
	return ""
}

func extensionFromURL(url string) string {
	path := url
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", ".jpg":
		return ext
	case ".jpeg":
		return ".jpg"
	}
	return ""
}

func filenameFromURL(url string) string {
	path := url
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	if name == "" || name == "." || name == "/" {
		return "background"
	}
	name = safeNameRe.ReplaceAllString(name, "_")
	if len(name) > 96 {
		name = name[:96]
	}
	return name
}
