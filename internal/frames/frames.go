// Package frames persists rendered frames as numbered image files.
package frames

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/hack-pad/hackpadfs"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for an image format the writer cannot encode.
var ErrUnknownFormat = errors.New("unknown image format")

type encodeFunc func(buf *bytes.Buffer, img image.Image) error

var encoders = map[string]encodeFunc{
	"png": func(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) },
	"jpeg": func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: 95})
	},
	"bmp": func(buf *bytes.Buffer, img image.Image) error { return bmp.Encode(buf, img) },
	"tiff": func(buf *bytes.Buffer, img image.Image) error {
		return tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	},
}

// Normalize returns the canonical name of an image format ("jpg" → "jpeg").
func Normalize(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	switch f {
	case "jpg":
		f = "jpeg"
	case "tif":
		f = "tiff"
	}
	if _, ok := encoders[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return f, nil
}

// Writer stores frame N as <dir>/N.<format> on a hackpadfs file system.
// Frames arrive with the GL bottom-left origin and are flipped before encoding.
type Writer struct {
	fs     hackpadfs.FS
	dir    string
	format string
	encode encodeFunc
}

// NewWriter returns a writer for format into dir, creating dir if needed.
func NewWriter(fs hackpadfs.FS, dir, format string) (*Writer, error) {
	f, err := Normalize(format)
	if err != nil {
		return nil, err
	}
	dir = path.Clean(dir)
	if err := hackpadfs.MkdirAll(fs, dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame directory %s: %w", dir, err)
	}
	return &Writer{fs: fs, dir: dir, format: f, encode: encoders[f]}, nil
}

// Path returns the file name used for frame index.
func (w *Writer) Path(index int) string {
	return path.Join(w.dir, strconv.Itoa(index)+"."+w.format)
}

// WriteFrame flips img vertically, encodes it and writes it under the frame's index.
func (w *Writer) WriteFrame(index int, img image.Image) error {
	if index < 0 {
		return fmt.Errorf("negative frame index %d", index)
	}
	var buf bytes.Buffer
	if err := w.encode(&buf, transform.FlipV(img)); err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	if err := hackpadfs.WriteFullFile(w.fs, w.Path(index), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write frame %d: %w", index, err)
	}
	return nil
}
