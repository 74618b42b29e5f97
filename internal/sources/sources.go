// Package sources holds the external catalog adapters. Each adapter is an
// isolated client for one catalog: it searches by free-text title,
// disambiguates candidates, and extracts a best-available chapter/volume
// count. Every failure mode (transport, decode, not-found) is converted to
// the zero Counts at the adapter boundary so one bad catalog can never
// tear down the resolver's fan-out.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Darius662/Readloom-Angular-sub001/internal/title"
)

// Counts is an adapter's answer. Zero means "this catalog has nothing".
type Counts struct {
	Chapters int `json:"chapters"`
	Volumes  int `json:"volumes"`
}

func (c Counts) IsZero() bool { return c.Chapters == 0 && c.Volumes == 0 }

// Source is implemented by each catalog adapter.
type Source interface {
	Name() string
	// Fetch never returns an error: adapters degrade to zero Counts.
	Fetch(ctx context.Context, rawTitle string) Counts
}

const requestTimeout = 10 * time.Second

// Derived volume guess when a catalog reports chapters but no volume count.
const chaptersPerVolumeGuess = 10

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// getJSON fetches url and decodes the body into v.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	return decodeJSON(resp, v)
}

func decodeJSON(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// pickByTitle disambiguates search candidates: exact normalized-title match
// wins, then normalized containment, then the first candidate. Returns -1
// for an empty list.
func pickByTitle(wanted string, candidates []string) int {
	if len(candidates) == 0 {
		return -1
	}
	key := title.Normalize(wanted)

	for i, c := range candidates {
		if title.Normalize(c) == key {
			return i
		}
	}
	for i, c := range candidates {
		ck := title.Normalize(c)
		if ck == "" || key == "" {
			continue
		}
		if contains(ck, key) {
			return i
		}
	}
	return 0
}

func contains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// volumesOrDerived applies the shared extraction rule: keep an
// authoritative volume count when the catalog reports one, otherwise take
// the larger of the derived count and a chapters-based guess.
func volumesOrDerived(authoritative, derived, chapters int) int {
	if authoritative > 0 {
		return authoritative
	}
	guess := chapters / chaptersPerVolumeGuess
	if derived > guess {
		return derived
	}
	return guess
}
