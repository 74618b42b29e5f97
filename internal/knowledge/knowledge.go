// Package knowledge is the durable title→count mapping: an immutable
// embedded seed set plus a growable sqlite overlay that the resolver
// writes after successful scrapes.
package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Darius662/Readloom-Angular-sub001/internal/title"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

//go:embed seed.yaml
var seedYAML []byte

// Base answers "have we ever established counts for this title?". Overlay
// entries are consulted before the seed so learned data wins.
type Base struct {
	seed []models.KnowledgeBaseEntry

	mu      sync.RWMutex
	overlay []models.KnowledgeBaseEntry
	byTitle map[string]int // normalized title -> overlay index
	store   *OverlayStore  // nil means memory-only (tests)
}

// New loads the embedded seed set and, when store is non-nil, the persisted
// overlay. A broken overlay load degrades to seed-only operation.
func New(store *OverlayStore) (*Base, error) {
	seed, err := parseSeed()
	if err != nil {
		return nil, err
	}

	b := &Base{
		seed:    seed,
		byTitle: make(map[string]int),
		store:   store,
	}

	if store != nil {
		entries, err := store.LoadAll(context.Background())
		if err != nil {
			log.Printf("[knowledge] overlay load failed, continuing with seed only: %v", err)
		}
		for _, e := range entries {
			b.byTitle[e.NormalizedTitle] = len(b.overlay)
			b.overlay = append(b.overlay, e)
		}
	}

	return b, nil
}

func parseSeed() ([]models.KnowledgeBaseEntry, error) {
	var seed []models.KnowledgeBaseEntry
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return nil, fmt.Errorf("parse knowledge seed: %w", err)
	}
	return seed, nil
}

// Lookup scans overlay then seed for a match on the normalized title, then
// on every alias, both directions. First match wins in insertion order;
// entries are expected to be near-disjoint so ordering across ties is not
// ranked further.
func (b *Base) Lookup(normalizedTitle string) (models.ResolutionResult, bool) {
	if normalizedTitle == "" {
		return models.ResolutionResult{}, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, entries := range [][]models.KnowledgeBaseEntry{b.overlay, b.seed} {
		for _, e := range entries {
			if entryMatches(e, normalizedTitle) {
				return models.ResolutionResult{
					ChapterCount: e.Chapters,
					VolumeCount:  e.Volumes,
					Source:       models.SourceKnowledgeBase,
				}, true
			}
		}
	}
	return models.ResolutionResult{}, false
}

func entryMatches(e models.KnowledgeBaseEntry, key string) bool {
	if contains(e.NormalizedTitle, key) {
		return true
	}
	for _, alias := range e.Aliases {
		if contains(title.Normalize(alias), key) {
			return true
		}
	}
	return false
}

// contains is the baseline substring scan, both directions. Known
// false-positive risk for very short titles; kept as the documented
// behavior rather than silently replaced with token matching.
func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Record learns a scraped count: normalizes the raw title, overwrites any
// existing overlay entry, and persists the overlay row. Persistence
// failures are logged and swallowed; the in-memory entry still serves the
// current process.
func (b *Base) Record(ctx context.Context, rawTitle string, chapters, volumes int) {
	key := title.Normalize(rawTitle)
	if key == "" {
		return
	}

	b.mu.Lock()
	entry := models.KnowledgeBaseEntry{
		NormalizedTitle: key,
		Chapters:        chapters,
		Volumes:         volumes,
	}
	if i, ok := b.byTitle[key]; ok {
		entry.Aliases = b.overlay[i].Aliases // keep learned aliases on overwrite
		b.overlay[i] = entry
	} else {
		b.byTitle[key] = len(b.overlay)
		b.overlay = append(b.overlay, entry)
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}
	if err := store.Upsert(ctx, entry); err != nil {
		log.Printf("[knowledge] persist %q failed: %v", key, err)
	}
}

// Len reports seed and overlay sizes, for operational endpoints.
func (b *Base) Len() (seed, overlay int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.seed), len(b.overlay)
}
