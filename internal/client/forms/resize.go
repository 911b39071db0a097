package forms

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// downscale shrinks an image so neither side exceeds limit. Files that are
// already small enough, or that do not decode as an image, pass through
// unchanged.
func downscale(filename string, r io.Reader, limit int) (string, io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return filename, nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || (cfg.Width <= limit && cfg.Height <= limit) {
		return filename, bytes.NewReader(data), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return filename, bytes.NewReader(data), nil
	}
	thumb := resize.Thumbnail(uint(limit), uint(limit), img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, thumb)
	default:
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85})
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
	}
	if err != nil {
		return filename, nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return filename, &buf, nil
}
