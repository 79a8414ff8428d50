//go:build imagick

package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gographics/imagick/imagick"
)

// decodeImage lets ImageMagick read the blob and hand back PNG, which covers
// formats and color profiles the Go decoders do not.
func decodeImage(data []byte) (image.Image, error) {
	imagick.Initialize()
	defer imagick.Terminate()

	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	if err := mw.ReadImageBlob(data); err != nil {
		return decodeNative(data, err)
	}
	// Only the first frame of animated inputs is kept.
	mw.ResetIterator()
	mw.NextImage()
	if err := mw.SetImageFormat("png"); err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}

	blob := mw.GetImageBlob()
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("decode converted image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}

func decodeNative(data []byte, magickErr error) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %v (imagick: %v)", err, magickErr)
	}
	return img, nil
}
