package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"

	"textimg-service/internal/apperr"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func inkRect(t *testing.T, img *image.RGBA, bg color.NRGBA) image.Rectangle {
	t.Helper()
	want := color.RGBAModel.Convert(bg).(color.RGBA)
	var r image.Rectangle
	found := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == want {
				continue
			}
			p := image.Rect(x, y, x+1, y+1)
			if !found {
				r, found = p, true
				continue
			}
			r = r.Union(p)
		}
	}
	if !found {
		t.Fatalf("no text pixels found")
	}
	return r
}

func generate(t *testing.T, opts GenerateOptions) *image.RGBA {
	t.Helper()
	if opts.Font == nil {
		opts.Font = newBlockFont()
	}
	opts.TextColor, opts.Background = black, white
	img, err := RenderGenerated(opts)
	if err != nil {
		t.Fatalf("render generated: %v", err)
	}
	if b := img.Bounds(); b.Dx() != b.Dy() {
		t.Fatalf("canvas not square: %dx%d", b.Dx(), b.Dy())
	}
	return img
}

func TestRenderGeneratedUnboundedShortText(t *testing.T) {
	img := generate(t, GenerateOptions{Text: "hello world", MinSize: 300, PaddingRatio: 0.1})
	if side := img.Bounds().Dx(); side != 300 {
		t.Fatalf("unexpected side: %d", side)
	}
}

func TestRenderGeneratedUnboundedGrowsPastWorkingMax(t *testing.T) {
	// 70 px-wide glyph run: 700px line, no cap requested.
	img := generate(t, GenerateOptions{Text: strings.Repeat("x", 70), MinSize: 300, PaddingRatio: 0.1})
	if side := img.Bounds().Dx(); side != 760 {
		t.Fatalf("unexpected side: %d", side)
	}
}

func TestRenderGeneratedClampedByMaxSize(t *testing.T) {
	img := generate(t, GenerateOptions{Text: strings.Repeat("x", 30), MinSize: 100, MaxSize: 200, PaddingRatio: 0.1})
	if side := img.Bounds().Dx(); side != 200 {
		t.Fatalf("unexpected side: %d", side)
	}
}

func TestRenderGeneratedLimit(t *testing.T) {
	_, err := RenderGenerated(GenerateOptions{Text: strings.Repeat("x", 70), Font: newBlockFont(), PaddingRatio: 0.1, Limit: 700})
	if apperr.KindOf(err) != apperr.KindRender {
		t.Fatalf("expected render failure, got %v", err)
	}
}

func TestRenderGeneratedDefaultMinSize(t *testing.T) {
	img := generate(t, GenerateOptions{Text: "hi", PaddingRatio: 0.1})
	if side := img.Bounds().Dx(); side != DefaultMinSize {
		t.Fatalf("unexpected side: %d", side)
	}
}

func TestRenderGeneratedRewrapsAtFinalSize(t *testing.T) {
	// One 290px line at the working width; the final 350px canvas only
	// leaves 280px, so the last word moves to a second line.
	img := generate(t, GenerateOptions{Text: "aaaa bbbb cccc dddd eeee ffff", MinSize: 300, PaddingRatio: 0.1})
	if side := img.Bounds().Dx(); side != 350 {
		t.Fatalf("unexpected side: %d", side)
	}
	ink := inkRect(t, img, white)
	if ink.Min.Y != 150 || ink.Max.Y != 200 {
		t.Fatalf("expected two lines between rows 150 and 200, got %v", ink)
	}
	if ink.Dx() != 240 {
		t.Fatalf("expected widest line of 240px, got %v", ink)
	}
}

func TestRenderGeneratedAlignment(t *testing.T) {
	cases := []struct {
		align      Align
		minX, maxX int
	}{
		{AlignLeft, 30, 60},
		{AlignRight, 240, 270},
		{AlignCenter, 135, 165},
		{"RIGHT", 240, 270},
	}
	for _, tc := range cases {
		img := generate(t, GenerateOptions{Text: "abc", MinSize: 300, PaddingRatio: 0.1, Align: tc.align})
		ink := inkRect(t, img, white)
		if ink.Min.X != tc.minX || ink.Max.X != tc.maxX {
			t.Fatalf("align %s: got columns %d..%d want %d..%d", tc.align, ink.Min.X, ink.Max.X, tc.minX, tc.maxX)
		}
	}
}

func TestRenderGeneratedRightEdgeAtPadding(t *testing.T) {
	img := generate(t, GenerateOptions{Text: "one two three four five six seven", MinSize: 400, PaddingRatio: 0.15, Align: AlignRight})
	side := img.Bounds().Dx()
	ink := inkRect(t, img, white)
	if want := side - padding(side, 0.15); ink.Max.X != want {
		t.Fatalf("right edge %d, want %d", ink.Max.X, want)
	}
}

func TestRenderGeneratedRejectsBeforeLayout(t *testing.T) {
	cases := []GenerateOptions{
		{Text: "hello", Align: "up"},
		{Text: "", Align: AlignCenter},
		{Text: "hello", PaddingRatio: 0.5},
		{Text: "hello", PaddingRatio: -0.1},
	}
	for _, opts := range cases {
		f := newBlockFont()
		opts.Font = f
		img, err := RenderGenerated(opts)
		if err == nil || img != nil {
			t.Fatalf("expected error for %+v", opts)
		}
		if !errors.Is(err, apperr.InvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
		if f.measured != 0 || f.drawn != 0 {
			t.Fatalf("font used before rejection: measured=%d drawn=%d", f.measured, f.drawn)
		}
	}
}

func TestRenderGeneratedBlendsTranslucentText(t *testing.T) {
	img, err := RenderGenerated(GenerateOptions{
		Text:         "abc",
		Font:         newBlockFont(),
		TextColor:    color.NRGBA{A: 128},
		Background:   white,
		PaddingRatio: 0.1,
	})
	if err != nil {
		t.Fatalf("render generated: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("unexpected background: %+v", got)
	}
	// Center line spans columns 135..165 and rows 140..160.
	got := img.RGBAAt(150, 150)
	if got.A != 255 || got.R < 126 || got.R > 128 {
		t.Fatalf("unexpected blended pixel: %+v", got)
	}
}

func encodeBackground(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode background: %v", err)
	}
	return buf.Bytes()
}

func TestRenderOverlayCentersVertically(t *testing.T) {
	bg := encodeBackground(t, 100, 100, white)
	img, err := RenderOverlay(bg, OverlayOptions{Text: "hi", Font: newBlockFont(), TextColor: black, PaddingRatio: 0.1})
	if err != nil {
		t.Fatalf("render overlay: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("overlay resized image: %v", b)
	}
	ink := inkRect(t, img, white)
	if ink.Min.Y != 40 || ink.Max.Y != 60 {
		t.Fatalf("unexpected rows: %v", ink)
	}
	if ink.Min.X != 40 || ink.Max.X != 60 {
		t.Fatalf("unexpected columns: %v", ink)
	}
}

func TestRenderOverlayWrapsAgainstImageWidth(t *testing.T) {
	bg := encodeBackground(t, 200, 100, white)
	img, err := RenderOverlay(bg, OverlayOptions{Text: "aaaaa bbbbb ccccc", Font: newBlockFont(), TextColor: black, PaddingRatio: 0.1, Align: AlignLeft})
	if err != nil {
		t.Fatalf("render overlay: %v", err)
	}
	// 160px available: two lines, 60px of block starting at row 20.
	ink := inkRect(t, img, white)
	if ink.Min.X != 20 || ink.Min.Y != 25 || ink.Max.Y != 75 {
		t.Fatalf("unexpected ink: %v", ink)
	}
}

func TestRenderOverlayErrors(t *testing.T) {
	_, err := RenderOverlay([]byte("garbage"), OverlayOptions{Text: "hi", Font: newBlockFont()})
	if apperr.KindOf(err) != apperr.KindRender {
		t.Fatalf("expected render failure, got %v", err)
	}
	bg := encodeBackground(t, 10, 10, white)
	_, err = RenderOverlay(bg, OverlayOptions{Text: "hi", Font: newBlockFont(), Align: "up"})
	if !errors.Is(err, apperr.InvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
