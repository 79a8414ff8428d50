package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Box is the bounding box of rendered text relative to the point the text is
// drawn at, with y growing downwards from the top of the line.
type Box struct {
	Left, Top, Right, Bottom int
}

func (b Box) Width() int  { return b.Right - b.Left }
func (b Box) Height() int { return b.Bottom - b.Top }

// Font measures and rasterizes a single line of text. Implementations are
// not required to be safe for concurrent use.
type Font interface {
	Bounds(text string) Box
	Draw(dst draw.Image, pt image.Point, text string, src image.Image)
}

// FaceFont adapts a font.Face. The point passed to Draw is the top of the
// line; the baseline sits one ascent below it.
type FaceFont struct {
	face   font.Face
	ascent fixed.Int26_6
}

func NewFaceFont(face font.Face) *FaceFont {
	return &FaceFont{face: face, ascent: face.Metrics().Ascent}
}

func (f *FaceFont) Bounds(text string) Box {
	if text == "" {
		return Box{}
	}
	ink, _ := font.BoundString(f.face, text)
	return Box{
		Left:   ink.Min.X.Floor(),
		Top:    (f.ascent + ink.Min.Y).Floor(),
		Right:  ink.Max.X.Ceil(),
		Bottom: (f.ascent + ink.Max.Y).Ceil(),
	}
}

func (f *FaceFont) Draw(dst draw.Image, pt image.Point, text string, src image.Image) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: f.face,
		Dot:  fixed.Point26_6{X: fixed.I(pt.X), Y: fixed.I(pt.Y) + f.ascent},
	}
	d.DrawString(text)
}

func (f *FaceFont) Close() error {
	return f.face.Close()
}

var (
	defaultOnce sync.Once
	defaultFont *opentype.Font
	defaultErr  error
)

// DefaultFont returns the built-in Go Regular face at size pixels.
func DefaultFont(size float64) (*FaceFont, error) {
	defaultOnce.Do(func() {
		defaultFont, defaultErr = opentype.Parse(goregular.TTF)
	})
	if defaultErr != nil {
		return nil, fmt.Errorf("parse default font: %w", defaultErr)
	}
	return newOpenTypeFace(defaultFont, size)
}

// LoadFont reads a TrueType/OpenType file. sfnt is tried first; files it
// rejects, such as ones whose table records are not sorted by tag, are
// retried with freetype's parser.
func LoadFont(path string, size float64) (*FaceFont, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %g", size)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	if parsed, err := opentype.Parse(data); err == nil {
		return newOpenTypeFace(parsed, size)
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return NewFaceFont(truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})), nil
}

func newOpenTypeFace(f *opentype.Font, size float64) (*FaceFont, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %g", size)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return NewFaceFont(face), nil
}
