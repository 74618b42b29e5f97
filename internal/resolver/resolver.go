// Package resolver orchestrates series metadata resolution: cache and
// knowledge-base consultation, the concurrent adapter fan-out, best-result
// selection, and the write-through that makes successful scrapes durable.
package resolver

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Darius662/Readloom-Angular-sub001/internal/cache"
	"github.com/Darius662/Readloom-Angular-sub001/internal/estimate"
	"github.com/Darius662/Readloom-Angular-sub001/internal/knowledge"
	"github.com/Darius662/Readloom-Angular-sub001/internal/sources"
	"github.com/Darius662/Readloom-Angular-sub001/internal/title"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

// Conservative last-resort counts, used only when even the estimator path
// is unavailable (e.g. a blank title with nothing to estimate from).
var fallbackResult = models.ResolutionResult{
	ChapterCount: 10,
	VolumeCount:  1,
	Source:       models.SourceFallback,
}

type Resolver struct {
	Cache   *cache.Store
	KB      *knowledge.Base
	Sources []sources.Source

	// now is overridable so freshness tests can move the clock.
	now func() time.Time
}

func New(store *cache.Store, kb *knowledge.Base, srcs ...sources.Source) *Resolver {
	return &Resolver{
		Cache:   store,
		KB:      kb,
		Sources: srcs,
		now:     time.Now,
	}
}

// Resolve runs the full state machine for one request. The returned error
// is non-nil only for broken storage; "no data found" is never an error:
// the estimator (or the fixed fallback) guarantees a usable result.
func (r *Resolver) Resolve(ctx context.Context, sess *Session, req models.ResolutionRequest) (models.ResolutionResult, error) {
	key := title.Normalize(req.Title)
	if key == "" {
		return fallbackResult, nil
	}

	memoKey := key + "|" + req.ExternalID
	if !req.ForceRefresh {
		if res, ok := sess.get(memoKey); ok {
			return res, nil
		}
	}

	if !req.ForceRefresh {
		if rec, err := r.cachedRecord(ctx, key, req.ExternalID); err != nil {
			return models.ResolutionResult{}, err
		} else if rec != nil && cache.Fresh(rec, r.now()) {
			res := models.ResolutionResult{
				ChapterCount: rec.ChapterCount,
				VolumeCount:  rec.VolumeCount,
				Source:       models.ResolutionSource(rec.Source),
			}
			sess.put(memoKey, res)
			return res, nil
		}

		if res, ok := r.KB.Lookup(key); ok {
			sess.put(memoKey, res)
			return res, nil
		}
	}

	res := r.scrape(ctx, sess, req, key)
	sess.put(memoKey, res)
	return res, nil
}

// cachedRecord prefers the external catalog ID over the normalized title
// when the caller supplied one.
func (r *Resolver) cachedRecord(ctx context.Context, key, externalID string) (*models.CacheRecord, error) {
	if externalID != "" {
		rec, err := r.Cache.GetByExternalID(ctx, externalID)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", key, err)
		}
		if rec != nil {
			return rec, nil
		}
	}
	rec, err := r.Cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", key, err)
	}
	return rec, nil
}

// scrape fans out to every adapter plus the estimator, waits for all of
// them, selects the best result, and writes it through.
func (r *Resolver) scrape(ctx context.Context, sess *Session, req models.ResolutionRequest, key string) models.ResolutionResult {
	log.Printf("[resolver] session=%s scraping %q (force=%v)", sess.ID, req.Title, req.ForceRefresh)

	adapterResults, estimated := r.fanOut(ctx, req.Title)

	res := selectBest(r.Sources, adapterResults, estimated)
	r.writeThrough(ctx, req, key, res)
	return res
}

// fanOut runs all adapter tasks and the estimator task over a bounded
// worker pool (width = adapters + 1) and blocks until every task is done.
// There is no early return: a slow adapter may still hold the best count.
// A panicking task is caught at the task boundary and becomes a zero
// result, never a torn-down fan-out.
func (r *Resolver) fanOut(ctx context.Context, rawTitle string) ([]sources.Counts, sources.Counts) {
	adapterResults := make([]sources.Counts, len(r.Sources))
	var estimated sources.Counts

	tasks := make([]func(), 0, len(r.Sources)+1)
	for i, src := range r.Sources {
		tasks = append(tasks, func() {
			adapterResults[i] = fetchGuarded(ctx, src, rawTitle)
		})
	}
	tasks = append(tasks, func() {
		ch, vol := estimate.Counts(rawTitle)
		estimated = sources.Counts{Chapters: ch, Volumes: vol}
	})

	runAll(tasks, len(r.Sources)+1)
	return adapterResults, estimated
}

// fetchGuarded converts an adapter panic into a zero result. Adapters
// already promise not to fail past their boundary; this is the resolver's
// own guarantee that a broken sibling cannot take the fan-out down.
func fetchGuarded(ctx context.Context, src sources.Source, rawTitle string) (c sources.Counts) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[resolver] source %s panicked: %v", src.Name(), rec)
			c = sources.Counts{}
		}
	}()
	return src.Fetch(ctx, rawTitle)
}

// selectBest orders adapter results by descending chapter count with
// enumeration order as the tie-break, and keeps the estimate only when
// every adapter came back empty.
func selectBest(srcs []sources.Source, adapterResults []sources.Counts, estimated sources.Counts) models.ResolutionResult {
	bestIdx := -1
	for i, c := range adapterResults {
		if c.IsZero() {
			continue
		}
		if bestIdx == -1 || c.Chapters > adapterResults[bestIdx].Chapters {
			bestIdx = i
		}
	}

	if bestIdx >= 0 {
		best := adapterResults[bestIdx]
		return models.ResolutionResult{
			ChapterCount: best.Chapters,
			VolumeCount:  best.Volumes,
			Source:       models.ResolutionSource(srcs[bestIdx].Name()),
		}
	}

	if estimated.IsZero() {
		return fallbackResult
	}
	return models.ResolutionResult{
		ChapterCount: estimated.Chapters,
		VolumeCount:  estimated.Volumes,
		Source:       models.SourceEstimate,
	}
}

// writeThrough persists a scraped result: always to the cache, and to the
// knowledge overlay only when a real adapter produced a usable volume
// count. Storage failures are logged and swallowed; the in-memory result
// is still valid for the current caller.
func (r *Resolver) writeThrough(ctx context.Context, req models.ResolutionRequest, key string, res models.ResolutionResult) {
	now := r.now().UTC()
	rec := models.CacheRecord{
		Title:           req.Title,
		NormalizedTitle: key,
		ExternalID:      req.ExternalID,
		ChapterCount:    res.ChapterCount,
		VolumeCount:     res.VolumeCount,
		Source:          string(res.Source),
		Status:          string(req.Status),
		FirstCachedAt:   now,
		LastRefreshedAt: now,
	}
	if err := r.Cache.Upsert(ctx, rec); err != nil {
		log.Printf("[resolver] cache write for %q failed: %v", key, err)
	}

	if !res.IsEstimated() && res.VolumeCount > 0 {
		r.KB.Record(ctx, req.Title, res.ChapterCount, res.VolumeCount)
	}
}

// runAll drains tasks through a fixed-width worker pool and waits for all
// of them.
func runAll(tasks []func(), width int) {
	if width < 1 {
		width = 1
	}
	jobs := make(chan func())
	done := make(chan struct{})

	for w := 0; w < width; w++ {
		go func() {
			for task := range jobs {
				task()
			}
			done <- struct{}{}
		}()
	}
	for _, t := range tasks {
		jobs <- t
	}
	close(jobs)
	for w := 0; w < width; w++ {
		<-done
	}
}
