package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration shared by the gateway and renderer
// binaries. Every field has an environment variable and a default.
type Config struct {
	GatewayAddr        string        // GATEWAY_ADDR
	RendererAddr       string        // RENDERER_ADDR
	RendererTarget     string        // RENDERER_TARGET, empty renders in process
	FontsDir           string        // FONTS_DIR
	LogDir             string        // LOG_DIR
	CacheTTL           time.Duration // CACHE_TTL
	CacheMaxEntries    int           // CACHE_MAX_ENTRIES
	FetchTimeout       time.Duration // FETCH_TIMEOUT
	MaxBackgroundBytes int64         // MAX_BACKGROUND_BYTES
	WatchFonts         bool          // WATCH_FONTS
	DeveloperGithub    string        // DEVELOPER_GITHUB, empty omits the field
}

func Load() Config {
	return Config{
		GatewayAddr:        envOrDefault("GATEWAY_ADDR", ":8080"),
		RendererAddr:       envOrDefault("RENDERER_ADDR", ":9090"),
		RendererTarget:     envOrDefault("RENDERER_TARGET", ""),
		FontsDir:           envOrDefault("FONTS_DIR", "static/fonts"),
		LogDir:             envOrDefault("LOG_DIR", ".log"),
		CacheTTL:           envDurationOrDefault("CACHE_TTL", 60*time.Second),
		CacheMaxEntries:    int(envInt64OrDefault("CACHE_MAX_ENTRIES", 500)),
		FetchTimeout:       envDurationOrDefault("FETCH_TIMEOUT", 15*time.Second),
		MaxBackgroundBytes: envInt64OrDefault("MAX_BACKGROUND_BYTES", 20<<20),
		WatchFonts:         envBoolOrDefault("WATCH_FONTS", true),
		DeveloperGithub:    envOrDefault("DEVELOPER_GITHUB", ""),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt64OrDefault(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// envDurationOrDefault accepts Go durations ("90s") or plain seconds ("90").
func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func envBoolOrDefault(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
