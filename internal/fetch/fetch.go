package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"textimg-service/internal/apperr"
)

const DefaultMaxBytes = 20 << 20

var contentTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/webp": "webp",
	"image/tiff": "tiff",
}

// Image is a downloaded, still encoded image.
type Image struct {
	Data   []byte
	Format string
}

type Client struct {
	HTTP     *http.Client
	MaxBytes int64
}

func NewClient(timeout time.Duration, maxBytes int64) *Client {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{HTTP: &http.Client{Timeout: timeout}, MaxBytes: maxBytes}
}

// IsValidURL reports whether raw has both a scheme and a host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// FormatFor maps a Content-Type header to an image format name.
func FormatFor(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	format, ok := contentTypes[mediaType]
	return format, ok
}

// Get downloads rawURL and checks that it is an image of a supported type.
func (c *Client) Get(ctx context.Context, rawURL string) (*Image, error) {
	if !IsValidURL(rawURL) {
		return nil, apperr.Invalidf("fetch background", "invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Invalidf("fetch background", "invalid url %q: %v", rawURL, err)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "fetch background", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.New(apperr.KindFetch, "fetch background", fmt.Errorf("unexpected status %s", resp.Status))
	}
	contentType := resp.Header.Get("Content-Type")
	format, ok := FormatFor(contentType)
	if !ok {
		return nil, apperr.New(apperr.KindFetch, "fetch background", fmt.Errorf("unsupported content type %q", contentType))
	}

	maxBytes := c.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "fetch background", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.New(apperr.KindFetch, "fetch background", fmt.Errorf("image larger than %d bytes", maxBytes))
	}
	return &Image{Data: data, Format: format}, nil
}
