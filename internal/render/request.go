package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"textimg-service/internal/apperr"
	"textimg-service/internal/fetch"
	"textimg-service/internal/imaging"
)

const (
	DefaultFontSize   = 52
	DefaultTextColor  = "#FFFFFFFF"
	DefaultBackground = "#000000FF"

	MaxFontSize   = 1000
	MaxCanvasSide = 4096
	MaxTextRunes  = 2000
)

// Values returns the raw parameter stored under key, or "" when absent.
type Values func(key string) string

// TextToImageRequest holds the resolved parameters of a generated image.
type TextToImageRequest struct {
	Text         string
	Font         string
	FontSize     float64
	TextColor    color.NRGBA
	Background   color.NRGBA
	MinSize      int
	MaxSize      int
	PaddingRatio float64
	Align        imaging.Align
}

// AddTextRequest holds the resolved parameters of a text overlay.
type AddTextRequest struct {
	Text          string
	BackgroundURL string
	Font          string
	FontSize      float64
	TextColor     color.NRGBA
	PaddingRatio  float64
	Align         imaging.Align
}

func ParseTextToImage(v Values) (TextToImageRequest, error) {
	const op = "text-to-image"
	var req TextToImageRequest
	var err error

	if req.Text, err = parseText(op, v("text")); err != nil {
		return req, err
	}
	if req.Align, err = imaging.ParseAlign(v("text_align")); err != nil {
		return req, err
	}
	req.Font = strings.TrimSpace(v("font"))
	if req.FontSize, err = parseFontSize(op, v("font_size")); err != nil {
		return req, err
	}
	if req.TextColor, err = imaging.HexToRGBA(orDefault(v("color"), DefaultTextColor)); err != nil {
		return req, err
	}
	if req.Background, err = imaging.HexToRGBA(orDefault(v("bg_color"), DefaultBackground)); err != nil {
		return req, err
	}
	if req.MinSize, err = parseSide(op, "min_size", v("min_size")); err != nil {
		return req, err
	}
	if req.MaxSize, err = parseSide(op, "max_size", v("max_size")); err != nil {
		return req, err
	}
	if req.PaddingRatio, err = parseRatio(op, v("padding_ratio")); err != nil {
		return req, err
	}
	return req, nil
}

func ParseAddText(v Values) (AddTextRequest, error) {
	const op = "add-text-to-img"
	var req AddTextRequest
	var err error

	if req.Text, err = parseText(op, v("text")); err != nil {
		return req, err
	}
	req.BackgroundURL = strings.TrimSpace(v("bg"))
	if req.BackgroundURL == "" {
		return req, apperr.Invalidf(op, "bg is required")
	}
	if !fetch.IsValidURL(req.BackgroundURL) {
		return req, apperr.Invalidf(op, "invalid url %q", req.BackgroundURL)
	}
	if req.Align, err = imaging.ParseAlign(v("text_align")); err != nil {
		return req, err
	}
	req.Font = strings.TrimSpace(v("font"))
	if req.FontSize, err = parseFontSize(op, v("font_size")); err != nil {
		return req, err
	}
	if req.TextColor, err = imaging.HexToRGBA(orDefault(v("color"), DefaultTextColor)); err != nil {
		return req, err
	}
	if req.PaddingRatio, err = parseRatio(op, v("padding_ratio")); err != nil {
		return req, err
	}
	return req, nil
}

// CacheKey identifies the rendered output of req.
func (r TextToImageRequest) CacheKey() string {
	return fmt.Sprintf("t2i|%q|%q|%g|%02x%02x%02x%02x|%02x%02x%02x%02x|%d|%d|%g|%s",
		r.Text, r.Font, r.FontSize,
		r.TextColor.R, r.TextColor.G, r.TextColor.B, r.TextColor.A,
		r.Background.R, r.Background.G, r.Background.B, r.Background.A,
		r.MinSize, r.MaxSize, r.PaddingRatio, r.Align)
}

// Params renders req back into request parameters that ParseTextToImage
// resolves to an equal request.
func (r TextToImageRequest) Params() map[string]any {
	params := map[string]any{
		"text":          r.Text,
		"font_size":     r.FontSize,
		"color":         imaging.RGBAToHex(r.TextColor),
		"bg_color":      imaging.RGBAToHex(r.Background),
		"min_size":      r.MinSize,
		"max_size":      r.MaxSize,
		"padding_ratio": r.PaddingRatio,
		"text_align":    string(r.Align),
	}
	if r.Font != "" {
		params["font"] = r.Font
	}
	return params
}

// Params renders req back into request parameters that ParseAddText
// resolves to an equal request.
func (r AddTextRequest) Params() map[string]any {
	params := map[string]any{
		"text":          r.Text,
		"bg":            r.BackgroundURL,
		"font_size":     r.FontSize,
		"color":         imaging.RGBAToHex(r.TextColor),
		"padding_ratio": r.PaddingRatio,
		"text_align":    string(r.Align),
	}
	if r.Font != "" {
		params["font"] = r.Font
	}
	return params
}

func parseText(op, raw string) (string, error) {
	if raw == "" {
		return "", apperr.Invalidf(op, "text is required")
	}
	text := norm.NFC.String(raw)
	if n := utf8.RuneCountInString(text); n > MaxTextRunes {
		return "", apperr.Invalidf(op, "text has %d characters, the limit is %d", n, MaxTextRunes)
	}
	return text, nil
}

func parseFontSize(op, raw string) (float64, error) {
	if raw == "" {
		return DefaultFontSize, nil
	}
	size, err := strconv.ParseFloat(raw, 64)
	if err != nil || size <= 0 || size > MaxFontSize {
		return 0, apperr.Invalidf(op, "font_size %q must be a number in (0, %d]", raw, MaxFontSize)
	}
	return size, nil
}

func parseSide(op, name, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	side, err := strconv.Atoi(raw)
	if err != nil || side < 0 || side > MaxCanvasSide {
		return 0, apperr.Invalidf(op, "%s %q must be an integer in [0, %d]", name, raw, MaxCanvasSide)
	}
	return side, nil
}

func parseRatio(op, raw string) (float64, error) {
	if raw == "" {
		return imaging.DefaultPaddingRatio, nil
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio < 0 || ratio >= 0.5 {
		return 0, apperr.Invalidf(op, "padding_ratio %q must be a number in [0, 0.5)", raw)
	}
	return ratio, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
