package imaging

import (
	"image/color"
	"strings"

	"textimg-service/internal/apperr"
)

const (
	DefaultMinSize      = 300
	DefaultPaddingRatio = 0.1
)

type Align string

const (
	AlignCenter Align = "center"
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
)

// ParseAlign accepts center, left or right in any case. An empty token means
// center.
func ParseAlign(token string) (Align, error) {
	switch a := Align(strings.ToLower(strings.TrimSpace(token))); a {
	case "":
		return AlignCenter, nil
	case AlignCenter, AlignLeft, AlignRight:
		return a, nil
	default:
		return "", apperr.Invalidf("parse alignment", "text_align %q must be one of center, left, right", token)
	}
}

// GenerateOptions configures RenderGenerated.
type GenerateOptions struct {
	Text       string
	Font       Font
	TextColor  color.NRGBA
	Background color.NRGBA

	// MinSize is the smallest canvas side. Zero means DefaultMinSize.
	MinSize int
	// MaxSize caps the canvas side. Zero leaves the canvas uncapped and wraps
	// against twice MinSize.
	MaxSize int

	// PaddingRatio is the fraction of the canvas side kept empty on each edge.
	PaddingRatio float64
	Align        Align

	// Limit rejects, rather than clamps, canvases with a larger side. Zero
	// disables the check.
	Limit int
}

// OverlayOptions configures RenderOverlay.
type OverlayOptions struct {
	Text         string
	Font         Font
	TextColor    color.NRGBA
	PaddingRatio float64
	Align        Align
}

type sizing struct {
	minSize int
	maxSize int
	bounded bool
}

func (o GenerateOptions) sizing() sizing {
	s := sizing{minSize: o.MinSize, maxSize: o.MaxSize, bounded: o.MaxSize > 0}
	if s.minSize <= 0 {
		s.minSize = DefaultMinSize
	}
	if !s.bounded {
		s.maxSize = s.minSize * 2
	}
	return s
}

// validate runs before any canvas is allocated and returns the normalized
// alignment.
func validate(op, text string, f Font, ratio float64, align Align) (Align, error) {
	if text == "" {
		return "", apperr.Invalidf(op, "text is required")
	}
	if f == nil {
		return "", apperr.Invalidf(op, "font is required")
	}
	if ratio < 0 || ratio >= 0.5 {
		return "", apperr.Invalidf(op, "padding_ratio %g must be in [0, 0.5)", ratio)
	}
	return ParseAlign(string(align))
}
