package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"textimg-service/internal/apperr"
	"textimg-service/internal/cache"
	"textimg-service/internal/imaging"
	"textimg-service/internal/logging"
	"textimg-service/internal/render"
)

const maxBodyBytes = 1 << 20

// Renderer produces PNG bytes for parsed requests.
type Renderer interface {
	TextToImage(ctx context.Context, req render.TextToImageRequest) ([]byte, error)
	AddText(ctx context.Context, req render.AddTextRequest) ([]byte, error)
}

// FontIndex resolves font names the way the renderer does. The generation
// changes whenever the index is rebuilt.
type FontIndex interface {
	Lookup(name string) (string, bool)
	Generation() uint64
}

// Developer identifies the maintainer advertised in JSON responses.
type Developer struct {
	UserName    string `json:"user_name"`
	ProfileLink string `json:"profile_link"`
}

// GithubDeveloper returns the Developer for a GitHub user name.
func GithubDeveloper(user string) *Developer {
	return &Developer{UserName: user, ProfileLink: "https://github.com/" + user}
}

type errorResponse struct {
	Error     string     `json:"error"`
	Developer *Developer `json:"developer_github,omitempty"`
}

type healthResponse struct {
	Status    string     `json:"status"`
	Developer *Developer `json:"developer_github,omitempty"`
}

type Gateway struct {
	renderer   Renderer
	cache      *cache.TTL
	fonts      FontIndex
	developer  *Developer
	testImages *cycler
}

type Option func(*Gateway)

// WithFonts folds the resolved font file and the index generation into
// cache keys, so a font added or replaced under a cached name is picked up.
func WithFonts(fonts FontIndex) Option {
	return func(g *Gateway) { g.fonts = fonts }
}

// WithDeveloper adds a developer_github object to every JSON response.
func WithDeveloper(d *Developer) Option {
	return func(g *Gateway) { g.developer = d }
}

func New(renderer Renderer, responses *cache.TTL, opts ...Option) *Gateway {
	g := &Gateway{
		renderer:   renderer,
		cache:      responses,
		testImages: newCycler("png", "jpg"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", g.handleDocs)
	mux.HandleFunc("/healthz", g.handleHealth)
	mux.HandleFunc("/test-img", g.handleTestImage)
	mux.HandleFunc("/api/v1/text-to-image", g.handleTextToImage)
	mux.HandleFunc("/api/v1/add-text-to-img", g.handleAddText)
	return logRequests(withCORS(mux))
}

func (g *Gateway) handleDocs(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Check our github for docs")
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Developer: g.developer})
}

func (g *Gateway) handleTextToImage(w http.ResponseWriter, r *http.Request) {
	values, ok := g.requestValues(w, r)
	if !ok {
		return
	}
	req, err := render.ParseTextToImage(values)
	if err != nil {
		g.writeError(w, err)
		return
	}

	key := g.cacheKey(req)
	if payload, contentType, ok := g.cache.Get(key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeImage(w, contentType, payload)
		return
	}

	payload, err := g.renderer.TextToImage(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}
	logging.Infof("image created text=%q size=%d", imaging.Preview(req.Text, 32), len(payload))
	g.cache.Set(key, payload, "image/png")
	w.Header().Set("X-Cache", "MISS")
	writeImage(w, "image/png", payload)
}

func (g *Gateway) cacheKey(req render.TextToImageRequest) string {
	key := req.CacheKey()
	if g.fonts == nil || req.Font == "" {
		return key
	}
	path, _ := g.fonts.Lookup(req.Font)
	return fmt.Sprintf("%s|%q|%d", key, path, g.fonts.Generation())
}

func (g *Gateway) handleAddText(w http.ResponseWriter, r *http.Request) {
	values, ok := g.requestValues(w, r)
	if !ok {
		return
	}
	req, err := render.ParseAddText(values)
	if err != nil {
		g.writeError(w, err)
		return
	}

	payload, err := g.renderer.AddText(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}
	logging.Infof("image created text=%q bg=%s size=%d", imaging.Preview(req.Text, 32), req.BackgroundURL, len(payload))
	writeImage(w, "image/png", payload)
}

func (g *Gateway) handleTestImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ext := r.URL.Query().Get("ext")
	if ext == "" {
		ext = g.testImages.Next()
	} else if !g.testImages.Contains(ext) {
		http.Error(w, "error", http.StatusBadRequest)
		return
	}

	img, err := imaging.Placeholder(512, 512, "test."+ext)
	if err != nil {
		g.writeError(w, apperr.New(apperr.KindRender, "test image", err))
		return
	}
	payload, contentType, err := imaging.Encode(img, ext)
	if err != nil {
		g.writeError(w, apperr.New(apperr.KindRender, "test image", err))
		return
	}
	writeImage(w, contentType, payload)
}

// requestValues reads parameters from the query string first and from a
// JSON object body second, for GET and POST alike.
func (g *Gateway) requestValues(w http.ResponseWriter, r *http.Request) (render.Values, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	query := r.URL.Query()
	body := map[string]any{}

	if r.Method == http.MethodPost {
		defer r.Body.Close()
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, g.errorBody("failed to read body"))
			return nil, false
		}
		if int64(len(payload)) > maxBodyBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, g.errorBody("payload too large"))
			return nil, false
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &body); err != nil {
				writeJSON(w, http.StatusBadRequest, g.errorBody("body must be a JSON object"))
				return nil, false
			}
		}
	}

	return func(key string) string {
		if value := query.Get(key); value != "" {
			return value
		}
		return stringValue(body[key])
	}, true
}

func stringValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if !value {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(value)
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		message := err.Error()
		if errors.As(err, &appErr) && appErr.Err != nil {
			message = appErr.Err.Error()
		}
		logging.Errorf("invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, g.errorBody(message))
	case apperr.KindFetch:
		logging.Errorf("background fetch failed: %v", err)
		writeJSON(w, http.StatusBadGateway, g.errorBody("failed to fetch background image"))
	default:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logging.Warnf("request abandoned: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, g.errorBody("request cancelled"))
			return
		}
		logging.Errorf("error creating image: %v", err)
		writeJSON(w, http.StatusInternalServerError, g.errorBody("failed to create image"))
	}
}

func (g *Gateway) errorBody(message string) errorResponse {
	return errorResponse{Error: message, Developer: g.developer}
}

func writeImage(w http.ResponseWriter, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cycler hands out extensions in round-robin order.
type cycler struct {
	mu    sync.Mutex
	items []string
	next  int
}

func newCycler(items ...string) *cycler {
	return &cycler{items: items}
}

func (c *cycler) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.items[c.next]
	c.next = (c.next + 1) % len(c.items)
	return item
}

func (c *cycler) Contains(item string) bool {
	for _, candidate := range c.items {
		if candidate == item {
			return true
		}
	}
	return false
}
