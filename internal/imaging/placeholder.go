package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
)

// Placeholder draws a gradient test image with label centered on a dark band.
func Placeholder(width, height int, label string) (*image.RGBA, error) {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8((x + y) % 255)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	band := image.Rect(0, height/2-height/10, width, height/2+height/10)
	overlay := image.NewUniform(color.RGBA{R: 12, G: 14, B: 18, A: 200})
	draw.Draw(img, band, overlay, image.Point{}, draw.Over)

	if label == "" {
		return img, nil
	}
	f, err := DefaultFont(float64(band.Dy()) / 2)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	paint(img, Wrap(label, f, width), f, color.NRGBA{R: 240, G: 196, B: 120, A: 255}, 0, AlignCenter)
	return img, nil
}

// Encode writes img as png or jpg.
func Encode(img image.Image, ext string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch ext {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	case "jpg", "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	default:
		return nil, "", fmt.Errorf("unsupported extension %q", ext)
	}
}
