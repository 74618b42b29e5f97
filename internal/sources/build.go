package sources

import "github.com/Darius662/Readloom-Angular-sub001/pkg/config"

// DefaultSet builds the production adapter set in enumeration order, which
// is also the resolver's selection tie-break order. Base-URL overrides
// point adapters at mirrors or test doubles.
func DefaultSet(cfg config.Engine) []Source {
	md := NewMangaDex()
	if cfg.MangaDexBaseURL != "" {
		md.BaseURL = cfg.MangaDexBaseURL
	}

	tm := NewTrackerMoe(cfg.TrackerMoeClient)
	if cfg.TrackerMoeBaseURL != "" {
		tm.BaseURL = cfg.TrackerMoeBaseURL
	}

	ki := NewKitsuIn()
	if cfg.KitsuInBaseURL != "" {
		ki.BaseURL = cfg.KitsuInBaseURL
	}

	return []Source{md, tm, ki}
}
