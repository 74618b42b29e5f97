package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const kitsuinBase = "https://kitsuin.to"

// KitsuIn scrapes a catalog that only publishes HTML: a search results
// page, then a series detail page whose stats block is scanned for
// "N chapters" / "N volumes" text patterns. The site rate-limits
// aggressively, so the adapter self-throttles instead of relying on the
// orchestrator to space requests out.
type KitsuIn struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
}

func NewKitsuIn() *KitsuIn {
	return &KitsuIn{
		BaseURL: kitsuinBase,
		Client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Limit(1), 1), // one request per second
	}
}

func (s *KitsuIn) Name() string { return "kitsuin" }

var (
	chaptersPattern = regexp.MustCompile(`(?i)(\d+)\s*chapters?`)
	volumesPattern  = regexp.MustCompile(`(?i)(\d+)\s*volumes?`)
)

func (s *KitsuIn) Fetch(ctx context.Context, rawTitle string) Counts {
	doc, err := s.getDoc(ctx, s.BaseURL+"/search?q="+url.QueryEscape(rawTitle))
	if err != nil {
		log.Printf("[sources] kitsuin search %q: %v", rawTitle, err)
		return Counts{}
	}

	var (
		names []string
		hrefs []string
	)
	doc.Find("a.series-link").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(sel.Text()) == "" {
			return
		}
		names = append(names, strings.TrimSpace(sel.Text()))
		hrefs = append(hrefs, href)
	})
	if len(hrefs) == 0 {
		return Counts{}
	}

	detailURL := s.BaseURL + hrefs[pickByTitle(rawTitle, names)]
	detail, err := s.getDoc(ctx, detailURL)
	if err != nil {
		log.Printf("[sources] kitsuin detail %s: %v", detailURL, err)
		return Counts{}
	}

	// prefer the stats block; fall back to scanning the whole page
	text := detail.Find(".series-stats").Text()
	if strings.TrimSpace(text) == "" {
		text = detail.Text()
	}

	chapters := firstNumber(chaptersPattern, text)
	derivedVolumes := firstNumber(volumesPattern, text)
	if chapters == 0 && derivedVolumes == 0 {
		return Counts{}
	}

	return Counts{
		Chapters: chapters,
		Volumes:  volumesOrDerived(derivedVolumes, 0, chapters),
	}
}

func (s *KitsuIn) getDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func firstNumber(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
