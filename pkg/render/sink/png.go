package sink

import (
	"image"
	"image/png"
	"io"
	"os"

	"github.com/bannerlord/bannerlord/pkg/errors"
)

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode png")
	}
	return nil
}

// WritePNG writes img to a PNG file at path.
// Failures (permissions, disk full) surface as IO_ERROR; they are not
// retried here - callers may retry transient failures with backoff.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()

	if err := EncodePNG(f, img); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}

// ReadPNG loads a raster image from path. Any registered image format is
// accepted; banners produced by this package are always PNG.
func ReadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "decode %s", path)
	}
	return img, nil
}
