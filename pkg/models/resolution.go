package models

import "time"

// SeriesStatus is the publication lifecycle reported by the caller for a
// series. It drives the cache freshness policy: completed series re-scrape
// far less often than ongoing ones.
type SeriesStatus string

const (
	StatusOngoing   SeriesStatus = "ONGOING"
	StatusCompleted SeriesStatus = "COMPLETED"
	StatusUnknown   SeriesStatus = "UNKNOWN"
)

// ResolutionSource identifies where a resolved count came from.
type ResolutionSource string

const (
	SourceKnowledgeBase ResolutionSource = "KNOWLEDGE_BASE"
	SourceEstimate      ResolutionSource = "ESTIMATE"
	SourceFallback      ResolutionSource = "FALLBACK"
	// Adapter names are also valid sources, e.g. "mangadex".
)

// ResolutionRequest asks the engine for an authoritative chapter/volume
// count for one series.
type ResolutionRequest struct {
	Title        string       `json:"title"`
	ExternalID   string       `json:"external_id,omitempty"` // catalog ID; stronger cache key than the title
	Status       SeriesStatus `json:"status,omitempty"`
	ForceRefresh bool         `json:"force_refresh,omitempty"`
}

// ResolutionResult is the engine's answer: best-known counts plus the
// provenance the caller needs to decide how much to trust them.
type ResolutionResult struct {
	ChapterCount int              `json:"chapter_count"`
	VolumeCount  int              `json:"volume_count"`
	Source       ResolutionSource `json:"source"`
}

// IsEstimated reports whether the result came from a heuristic rather than
// a real catalog. Estimated results are never promoted to durable knowledge.
func (r ResolutionResult) IsEstimated() bool {
	return r.Source == SourceEstimate || r.Source == SourceFallback
}

// CacheRecord is one row of the persistent resolution cache.
// Keyed uniquely by NormalizedTitle; updated in place on re-resolution,
// never re-inserted and never deleted by the engine itself.
type CacheRecord struct {
	Title           string    `json:"title"`
	NormalizedTitle string    `json:"normalized_title"`
	ExternalID      string    `json:"external_id,omitempty"`
	ChapterCount    int       `json:"chapter_count"`
	VolumeCount     int       `json:"volume_count"`
	Source          string    `json:"source"`
	Status          string    `json:"status,omitempty"`
	FirstCachedAt   time.Time `json:"first_cached_at"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
	RefreshCount    int       `json:"refresh_count"`
}

// KnowledgeBaseEntry maps a normalized title (and optional aliases) to a
// previously established chapter/volume pair.
type KnowledgeBaseEntry struct {
	NormalizedTitle string   `json:"normalized_title" yaml:"title"`
	Chapters        int      `json:"chapters" yaml:"chapters"`
	Volumes         int      `json:"volumes" yaml:"volumes"`
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}
