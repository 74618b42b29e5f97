package config

import (
	"os"
	"strings"
)

// Engine holds the runtime knobs for the resolution engine. Everything is
// env-driven with dev defaults, so `go run` works with no setup.
type Engine struct {
	HTTPAddr string

	// Adapter overrides; empty means each adapter's public endpoint.
	MangaDexBaseURL   string
	TrackerMoeBaseURL string
	TrackerMoeClient  string
	KitsuInBaseURL    string
}

func LoadEngine() Engine {
	return Engine{
		HTTPAddr:          envOr("ENGINE_HTTP_ADDR", ":8091"),
		MangaDexBaseURL:   os.Getenv("ENGINE_MANGADEX_URL"),
		TrackerMoeBaseURL: os.Getenv("ENGINE_TRACKERMOE_URL"),
		TrackerMoeClient:  strings.TrimSpace(os.Getenv("ENGINE_TRACKERMOE_CLIENT_ID")),
		KitsuInBaseURL:    os.Getenv("ENGINE_KITSUIN_URL"),
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
