package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const mangadexBase = "https://api.mangadex.org"

// MangaDex reads counts from the public MangaDex API: a title search
// followed by the per-series aggregate listing, which itemizes every
// volume and chapter the catalog knows about.
type MangaDex struct {
	BaseURL string
	Client  *http.Client
}

func NewMangaDex() *MangaDex {
	return &MangaDex{
		BaseURL: mangadexBase,
		Client:  newHTTPClient(),
	}
}

func (s *MangaDex) Name() string { return "mangadex" }

type mdSearchResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Title       map[string]string `json:"title"`
			LastChapter string            `json:"lastChapter"`
			LastVolume  string            `json:"lastVolume"`
		} `json:"attributes"`
	} `json:"data"`
}

type mdAggregateResponse struct {
	Volumes map[string]struct {
		Volume   string `json:"volume"`
		Count    int    `json:"count"`
		Chapters map[string]struct {
			Chapter string `json:"chapter"`
		} `json:"chapters"`
	} `json:"volumes"`
}

func (s *MangaDex) Fetch(ctx context.Context, rawTitle string) Counts {
	u, err := url.Parse(s.BaseURL + "/manga")
	if err != nil {
		return Counts{}
	}
	q := u.Query()
	q.Set("title", rawTitle)
	q.Set("limit", "5")
	u.RawQuery = q.Encode()

	var search mdSearchResponse
	if err := getJSON(ctx, s.Client, u.String(), &search); err != nil {
		log.Printf("[sources] mangadex search %q: %v", rawTitle, err)
		return Counts{}
	}
	if len(search.Data) == 0 {
		return Counts{}
	}

	names := make([]string, len(search.Data))
	for i, d := range search.Data {
		names[i] = pickAnyTitle(d.Attributes.Title)
	}
	best := search.Data[pickByTitle(rawTitle, names)]

	derivedChapters, derivedVolumes := s.aggregate(ctx, best.ID)

	chapters := parseCount(best.Attributes.LastChapter)
	if derivedChapters > chapters {
		chapters = derivedChapters
	}
	volumes := volumesOrDerived(parseCount(best.Attributes.LastVolume), derivedVolumes, chapters)

	return Counts{Chapters: chapters, Volumes: volumes}
}

// aggregate counts the itemized volume/chapter listing for one series.
func (s *MangaDex) aggregate(ctx context.Context, id string) (chapters, volumes int) {
	var agg mdAggregateResponse
	url := fmt.Sprintf("%s/manga/%s/aggregate", s.BaseURL, id)
	if err := getJSON(ctx, s.Client, url, &agg); err != nil {
		log.Printf("[sources] mangadex aggregate %s: %v", id, err)
		return 0, 0
	}

	for key, vol := range agg.Volumes {
		if key != "none" && key != "" {
			volumes++
		}
		if vol.Count > 0 {
			chapters += vol.Count
		} else {
			chapters += len(vol.Chapters)
		}
	}
	return chapters, volumes
}

func pickAnyTitle(m map[string]string) string {
	if v := strings.TrimSpace(m["en"]); v != "" {
		return v
	}
	for _, v := range m {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// parseCount reads a catalog count field that may be "", "107", or "107.5".
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
