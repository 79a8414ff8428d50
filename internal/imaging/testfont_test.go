package imaging

import (
	"image"
	"image/draw"
	"unicode/utf8"
)

// blockFont draws every rune as a solid block so layout results can be
// checked pixel by pixel. Ink spans [InkTop, InkBottom) below the line top.
type blockFont struct {
	Advance   int
	InkTop    int
	InkBottom int

	measured int
	drawn    int
}

func newBlockFont() *blockFont {
	return &blockFont{Advance: 10, InkTop: 5, InkBottom: 25}
}

func (f *blockFont) Bounds(text string) Box {
	f.measured++
	if text == "" {
		return Box{}
	}
	return Box{Top: f.InkTop, Right: f.Advance * utf8.RuneCountInString(text), Bottom: f.InkBottom}
}

func (f *blockFont) Draw(dst draw.Image, pt image.Point, text string, src image.Image) {
	f.drawn++
	w := f.Advance * utf8.RuneCountInString(text)
	r := image.Rect(pt.X, pt.Y+f.InkTop, pt.X+w, pt.Y+f.InkBottom)
	draw.Draw(dst, r, src, image.Point{}, draw.Over)
}
