package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"textimg-service/internal/apperr"
)

func padding(size int, ratio float64) int {
	return int(float64(size) * ratio)
}

// RenderGenerated draws opts.Text centered on a new square canvas just big
// enough for the wrapped text, no smaller than MinSize and, when MaxSize is
// set, no larger than MaxSize. Text may overflow a capped canvas.
func RenderGenerated(opts GenerateOptions) (*image.RGBA, error) {
	align, err := validate("render generated", opts.Text, opts.Font, opts.PaddingRatio, opts.Align)
	if err != nil {
		return nil, err
	}
	s := opts.sizing()
	pad := func(size int) int { return padding(size, opts.PaddingRatio) }

	lines := Wrap(opts.Text, opts.Font, s.maxSize-2*pad(s.maxSize))
	block := MeasureBlock(lines, opts.Font)

	width := max(block.LongestLineWidth+2*pad(s.minSize), s.minSize)
	height := max(block.TotalHeight+2*pad(s.minSize), s.minSize)
	size := max(width, height)
	if s.bounded {
		size = min(size, s.maxSize)
	}
	if opts.Limit > 0 && size > opts.Limit {
		return nil, apperr.New(apperr.KindRender, "render generated", fmt.Errorf("canvas side %d exceeds limit %d", size, opts.Limit))
	}

	// The wrap width changes with the final size.
	lines = Wrap(opts.Text, opts.Font, size-2*pad(size))

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	paint(canvas, lines, opts.Font, opts.TextColor, opts.PaddingRatio, align)
	return canvas, nil
}

// RenderOverlay decodes background and draws opts.Text vertically centered
// on it. The image keeps its size.
func RenderOverlay(background []byte, opts OverlayOptions) (*image.RGBA, error) {
	align, err := validate("render overlay", opts.Text, opts.Font, opts.PaddingRatio, opts.Align)
	if err != nil {
		return nil, err
	}

	src, err := Decode(background)
	if err != nil {
		return nil, apperr.New(apperr.KindRender, "decode background", err)
	}
	canvas := ToRGBA(src)
	width := canvas.Bounds().Dx()
	if width == 0 || canvas.Bounds().Dy() == 0 {
		return nil, apperr.Invalidf("render overlay", "background image is empty")
	}

	lines := Wrap(opts.Text, opts.Font, width-2*padding(width, opts.PaddingRatio))
	paint(canvas, lines, opts.Font, opts.TextColor, opts.PaddingRatio, align)
	return canvas, nil
}

// ToRGBA copies img into a new RGBA canvas anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)
	return canvas
}

// paint draws lines onto a transparent layer the size of canvas and
// composites it over canvas.
func paint(canvas *image.RGBA, lines []string, f Font, textColor color.NRGBA, ratio float64, align Align) {
	bounds := canvas.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pad := padding(width, ratio)
	block := MeasureBlock(lines, f)

	layer := image.NewRGBA(bounds)
	src := image.NewUniform(textColor)

	y := (height - block.TotalHeight) / 2
	for _, line := range lines {
		lineWidth := f.Bounds(line).Width()
		var x int
		switch align {
		case AlignLeft:
			x = pad
		case AlignRight:
			x = width - lineWidth - pad
		default:
			x = (width - lineWidth) / 2
		}
		f.Draw(layer, image.Pt(x, y), line, src)
		y += block.LineAdvance()
	}

	draw.Draw(canvas, bounds, layer, bounds.Min, draw.Over)
}
