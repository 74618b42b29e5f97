// Package cache is the engine's persistent resolution cache: one row per
// normalized title, refreshed in place, never evicted by the engine itself.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

// ErrStoreBroken marks storage faults (corruption, unreachable file) so
// callers can tell "something is broken" apart from "no data found".
var ErrStoreBroken = errors.New("cache store broken")

// Freshness windows. Completed series barely change, so their cached
// counts live much longer before a re-scrape.
const (
	FreshCompleted = 90 * 24 * time.Hour
	FreshDefault   = 30 * 24 * time.Hour
)

type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Get returns the cached record for a normalized title, or nil when the
// title has never been resolved.
func (s *Store) Get(ctx context.Context, normalizedTitle string) (*models.CacheRecord, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT normalized_title, title, external_id, chapter_count, volume_count,
		       source, status, first_cached_at, last_refreshed_at, refresh_count
		FROM series_cache
		WHERE normalized_title = ?
	`, normalizedTitle)

	var (
		rec        models.CacheRecord
		externalID sql.NullString
		status     sql.NullString
	)
	if err := row.Scan(
		&rec.NormalizedTitle, &rec.Title, &externalID, &rec.ChapterCount, &rec.VolumeCount,
		&rec.Source, &status, &rec.FirstCachedAt, &rec.LastRefreshedAt, &rec.RefreshCount,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: scan cache get: %v", ErrStoreBroken, err)
	}

	rec.ExternalID = externalID.String
	rec.Status = status.String
	return &rec, nil
}

// GetByExternalID looks a record up by its external catalog ID, a stronger
// key than the normalized title when the caller has one.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*models.CacheRecord, error) {
	if externalID == "" {
		return nil, nil
	}
	row := s.DB.QueryRowContext(ctx, `
		SELECT normalized_title, title, external_id, chapter_count, volume_count,
		       source, status, first_cached_at, last_refreshed_at, refresh_count
		FROM series_cache
		WHERE external_id = ?
		LIMIT 1
	`, externalID)

	var (
		rec    models.CacheRecord
		extID  sql.NullString
		status sql.NullString
	)
	if err := row.Scan(
		&rec.NormalizedTitle, &rec.Title, &extID, &rec.ChapterCount, &rec.VolumeCount,
		&rec.Source, &status, &rec.FirstCachedAt, &rec.LastRefreshedAt, &rec.RefreshCount,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: scan cache get by external id: %v", ErrStoreBroken, err)
	}

	rec.ExternalID = extID.String
	rec.Status = status.String
	return &rec, nil
}

// Upsert writes a resolution through to the cache. First write creates the
// row with refresh_count 0; every later write for the same normalized title
// updates it in place, bumps refresh_count and last_refreshed_at, and keeps
// first_cached_at. The unique key serializes concurrent writers per title.
func (s *Store) Upsert(ctx context.Context, rec models.CacheRecord) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO series_cache
		  (normalized_title, title, external_id, chapter_count, volume_count,
		   source, status, first_cached_at, last_refreshed_at, refresh_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(normalized_title) DO UPDATE SET
		  title = excluded.title,
		  external_id = excluded.external_id,
		  chapter_count = excluded.chapter_count,
		  volume_count = excluded.volume_count,
		  source = excluded.source,
		  status = excluded.status,
		  last_refreshed_at = excluded.last_refreshed_at,
		  refresh_count = series_cache.refresh_count + 1
	`,
		rec.NormalizedTitle,
		rec.Title,
		nullable(rec.ExternalID),
		rec.ChapterCount,
		rec.VolumeCount,
		rec.Source,
		nullable(rec.Status),
		rec.FirstCachedAt,
		rec.LastRefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cache %q: %w", rec.NormalizedTitle, err)
	}
	return nil
}

// Fresh reports whether a record is still inside its freshness window at
// the given instant.
func Fresh(rec *models.CacheRecord, now time.Time) bool {
	window := FreshDefault
	if rec.Status == string(models.StatusCompleted) {
		window = FreshCompleted
	}
	return now.Sub(rec.LastRefreshedAt) < window
}

// Stats summarizes the cache for operational endpoints.
type Stats struct {
	Records        int       `json:"records"`
	TotalRefreshes int       `json:"total_refreshes"`
	OldestRefresh  time.Time `json:"oldest_refresh,omitempty"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(refresh_count), 0), MIN(last_refreshed_at)
		FROM series_cache
	`)

	var (
		st     Stats
		oldest sql.NullTime
	)
	if err := row.Scan(&st.Records, &st.TotalRefreshes, &oldest); err != nil {
		return Stats{}, fmt.Errorf("%w: scan cache stats: %v", ErrStoreBroken, err)
	}
	if oldest.Valid {
		st.OldestRefresh = oldest.Time
	}
	return st, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
