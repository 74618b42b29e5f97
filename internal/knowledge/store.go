package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

// OverlayStore persists learned knowledge-base entries in the
// knowledge_overlay table, keyed uniquely by normalized title.
type OverlayStore struct {
	DB *sql.DB
}

func NewOverlayStore(db *sql.DB) *OverlayStore {
	return &OverlayStore{DB: db}
}

func (s *OverlayStore) LoadAll(ctx context.Context) ([]models.KnowledgeBaseEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT normalized_title, chapters, volumes, aliases
		FROM knowledge_overlay
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("overlay query: %w", err)
	}
	defer rows.Close()

	var out []models.KnowledgeBaseEntry
	for rows.Next() {
		var (
			e          models.KnowledgeBaseEntry
			aliasesRaw string
		)
		if err := rows.Scan(&e.NormalizedTitle, &e.Chapters, &e.Volumes, &aliasesRaw); err != nil {
			return nil, fmt.Errorf("overlay scan: %w", err)
		}
		_ = json.Unmarshal([]byte(aliasesRaw), &e.Aliases)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("overlay rows: %w", err)
	}
	return out, nil
}

func (s *OverlayStore) Upsert(ctx context.Context, e models.KnowledgeBaseEntry) error {
	aliasesJSON, err := json.Marshal(e.Aliases)
	if err != nil {
		return fmt.Errorf("marshal aliases for %q: %w", e.NormalizedTitle, err)
	}
	if e.Aliases == nil {
		aliasesJSON = []byte("[]")
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO knowledge_overlay (normalized_title, chapters, volumes, aliases, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(normalized_title) DO UPDATE SET
		  chapters = excluded.chapters,
		  volumes = excluded.volumes,
		  aliases = excluded.aliases,
		  updated_at = excluded.updated_at
	`, e.NormalizedTitle, e.Chapters, e.Volumes, string(aliasesJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert overlay %q: %w", e.NormalizedTitle, err)
	}
	return nil
}

// Compact is the maintenance hook for the otherwise append-only overlay:
// it drops rows that duplicate the given entries (typically the seed set)
// so the table does not accumulate redundant learned rows. The engine
// never calls it on its own.
func (s *OverlayStore) Compact(ctx context.Context, against []models.KnowledgeBaseEntry) (int, error) {
	removed := 0
	for _, e := range against {
		res, err := s.DB.ExecContext(ctx, `
			DELETE FROM knowledge_overlay
			WHERE normalized_title = ? AND chapters = ? AND volumes = ?
		`, e.NormalizedTitle, e.Chapters, e.Volumes)
		if err != nil {
			return removed, fmt.Errorf("compact overlay %q: %w", e.NormalizedTitle, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}
	return removed, nil
}

// Seed exposes the parsed built-in entries, for compaction runs.
func Seed() ([]models.KnowledgeBaseEntry, error) {
	return parseSeed()
}
