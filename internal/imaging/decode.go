package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// MaxPixels bounds the decoded size of a background image.
const MaxPixels = 40_000_000

var ErrEmptyImage = errors.New("empty image data")

// Decode turns encoded background bytes into an image. Supported formats
// depend on the build: jpeg, png, gif, bmp, webp and tiff always, plus
// whatever ImageMagick reads when built with the imagick tag.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if cfg.Width*cfg.Height > MaxPixels {
			return nil, fmt.Errorf("image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, MaxPixels)
		}
	}
	return decodeImage(data)
}

// EncodePNG serializes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
