package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
)

const trackerMoeBase = "https://api.tracker.moe/v2"

// TrackerMoe talks to a MAL-style tracker API whose detail endpoint
// reports authoritative num_chapters / num_volumes attribute fields.
type TrackerMoe struct {
	BaseURL  string
	ClientID string // optional API key, sent as X-Client-ID
	Client   *http.Client
}

func NewTrackerMoe(clientID string) *TrackerMoe {
	return &TrackerMoe{
		BaseURL:  trackerMoeBase,
		ClientID: clientID,
		Client:   newHTTPClient(),
	}
}

func (s *TrackerMoe) Name() string { return "trackermoe" }

type tmSearchResponse struct {
	Data []struct {
		Node struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"node"`
	} `json:"data"`
}

type tmDetailResponse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	NumChapters int    `json:"num_chapters"`
	NumVolumes  int    `json:"num_volumes"`
	Status      string `json:"status"`
}

func (s *TrackerMoe) Fetch(ctx context.Context, rawTitle string) Counts {
	u, err := url.Parse(s.BaseURL + "/manga")
	if err != nil {
		return Counts{}
	}
	q := u.Query()
	q.Set("q", rawTitle)
	q.Set("limit", "5")
	u.RawQuery = q.Encode()

	var search tmSearchResponse
	if err := s.getJSON(ctx, u.String(), &search); err != nil {
		log.Printf("[sources] trackermoe search %q: %v", rawTitle, err)
		return Counts{}
	}
	if len(search.Data) == 0 {
		return Counts{}
	}

	names := make([]string, len(search.Data))
	for i, d := range search.Data {
		names[i] = d.Node.Title
	}
	best := search.Data[pickByTitle(rawTitle, names)]

	var detail tmDetailResponse
	detailURL := fmt.Sprintf("%s/manga/%d?fields=num_chapters,num_volumes,status", s.BaseURL, best.Node.ID)
	if err := s.getJSON(ctx, detailURL, &detail); err != nil {
		log.Printf("[sources] trackermoe detail %d: %v", best.Node.ID, err)
		return Counts{}
	}

	chapters := detail.NumChapters
	volumes := volumesOrDerived(detail.NumVolumes, 0, chapters)
	return Counts{Chapters: chapters, Volumes: volumes}
}

func (s *TrackerMoe) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.ClientID != "" {
		req.Header.Set("X-Client-ID", s.ClientID)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return decodeJSON(resp, v)
}
