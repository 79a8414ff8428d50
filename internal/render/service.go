package render

import (
	"context"
	"errors"
	"image"

	"textimg-service/internal/apperr"
	"textimg-service/internal/fetch"
	"textimg-service/internal/imaging"
	"textimg-service/internal/logging"
)

// FontLookup resolves a font name to a file path.
type FontLookup interface {
	Lookup(name string) (string, bool)
}

// Fetcher downloads background images.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Image, error)
}

var errNoFetcher = errors.New("no image fetcher configured")

// Service runs validated requests through the imaging engine and returns PNG
// bytes. It keeps no per-request state and is safe for concurrent use.
type Service struct {
	Fonts   FontLookup
	Fetcher Fetcher
}

func (s *Service) TextToImage(ctx context.Context, req TextToImageRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	font, err := s.loadFont(req.Font, req.FontSize)
	if err != nil {
		return nil, err
	}
	defer font.Close()

	img, err := imaging.RenderGenerated(imaging.GenerateOptions{
		Text:         req.Text,
		Font:         font,
		TextColor:    req.TextColor,
		Background:   req.Background,
		MinSize:      req.MinSize,
		MaxSize:      req.MaxSize,
		PaddingRatio: req.PaddingRatio,
		Align:        req.Align,
		Limit:        MaxCanvasSide,
	})
	if err != nil {
		return nil, err
	}
	return encode(img)
}

func (s *Service) AddText(ctx context.Context, req AddTextRequest) ([]byte, error) {
	if s.Fetcher == nil {
		return nil, apperr.New(apperr.KindFetch, "add text", errNoFetcher)
	}
	bg, err := s.Fetcher.Get(ctx, req.BackgroundURL)
	if err != nil {
		return nil, err
	}
	logging.Infof("background fetched url=%s format=%s bytes=%d", req.BackgroundURL, bg.Format, len(bg.Data))

	font, err := s.loadFont(req.Font, req.FontSize)
	if err != nil {
		return nil, err
	}
	defer font.Close()

	img, err := imaging.RenderOverlay(bg.Data, imaging.OverlayOptions{
		Text:         req.Text,
		Font:         font,
		TextColor:    req.TextColor,
		PaddingRatio: req.PaddingRatio,
		Align:        req.Align,
	})
	if err != nil {
		return nil, err
	}
	return encode(img)
}

// loadFont opens the named font, falling back to the built-in face when the
// name is unknown or the file cannot be parsed.
func (s *Service) loadFont(name string, size float64) (*imaging.FaceFont, error) {
	if name != "" && s.Fonts != nil {
		if path, ok := s.Fonts.Lookup(name); ok {
			font, err := imaging.LoadFont(path, size)
			if err == nil {
				return font, nil
			}
			logging.Warnf("font load failed name=%s err=%v, using default font", name, apperr.New(apperr.KindFontLoad, "load font", err))
		} else {
			logging.Warnf("font not found name=%s, using default font", name)
		}
	}
	font, err := imaging.DefaultFont(size)
	if err != nil {
		return nil, apperr.New(apperr.KindRender, "load default font", err)
	}
	return font, nil
}

func encode(img image.Image) ([]byte, error) {
	payload, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, apperr.New(apperr.KindRender, "encode png", err)
	}
	return payload, nil
}
