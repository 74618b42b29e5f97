// Package covers pairs externally reported volume→artifact candidates
// with locally known volume records. The two sets are keyed differently
// (catalog volume numbers vs. free-text local labels), so matching is
// numeric: parse the labels, look for exact hits, then accept bounded
// fuzzy hits. Everything that cannot be paired is reported, never dropped.
package covers

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

// fuzzyTolerance is the largest numeric distance accepted for a fuzzy
// pairing: one whole volume, which covers off-by-one numbering and .5
// omnibus releases.
const fuzzyTolerance = 1.0

var digitRun = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Match pairs candidates with local volumes. Candidates are processed in
// ascending reported volume order and each local volume is consumed the
// moment it matches, so a later candidate can never re-claim it. Ties
// among fuzzy options go to the smallest distance.
func Match(candidates []models.CoverCandidate, locals []models.LocalVolume) models.CoverMatchReport {
	report := models.CoverMatchReport{
		Matched:             []models.CoverMatch{},
		UnmatchedCandidates: []models.CoverCandidate{},
		UnmatchedLocals:     []models.LocalVolume{},
	}

	type parsedLocal struct {
		number float64
		vol    models.LocalVolume
		taken  bool
	}

	var pool []*parsedLocal
	byNumber := make(map[float64]*parsedLocal)
	for _, lv := range locals {
		n, ok := ParseVolumeLabel(lv.Label)
		if !ok {
			// unparsable labels sit out of matching entirely
			report.UnmatchedLocals = append(report.UnmatchedLocals, lv)
			continue
		}
		p := &parsedLocal{number: n, vol: lv}
		pool = append(pool, p)
		if _, exists := byNumber[n]; !exists {
			byNumber[n] = p
		}
	}

	ordered := make([]models.CoverCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].VolumeNumber < ordered[j].VolumeNumber
	})

	for _, cand := range ordered {
		if p, ok := byNumber[cand.VolumeNumber]; ok && !p.taken {
			p.taken = true
			report.Matched = append(report.Matched, models.CoverMatch{
				Local:     p.vol,
				Candidate: cand,
				Kind:      models.MatchExact,
				Distance:  0,
			})
			continue
		}

		var best *parsedLocal
		bestDist := math.Inf(1)
		for _, p := range pool {
			if p.taken {
				continue
			}
			d := math.Abs(p.number - cand.VolumeNumber)
			if d < bestDist {
				best, bestDist = p, d
			}
		}
		if best != nil && bestDist > 0 && bestDist <= fuzzyTolerance {
			best.taken = true
			report.Matched = append(report.Matched, models.CoverMatch{
				Local:     best.vol,
				Candidate: cand,
				Kind:      models.MatchFuzzy,
				Distance:  bestDist,
			})
			continue
		}

		report.UnmatchedCandidates = append(report.UnmatchedCandidates, cand)
	}

	for _, p := range pool {
		if !p.taken {
			report.UnmatchedLocals = append(report.UnmatchedLocals, p.vol)
		}
	}
	return report
}

// ParseVolumeLabel turns a free-text volume label into a comparable
// number: integer parse, then float parse, then the first embedded digit
// run ("Vol. 3 (Deluxe)" → 3). Returns false for labels with no number.
func ParseVolumeLabel(label string) (float64, bool) {
	s := strings.TrimSpace(label)
	if s == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		return float64(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	if m := digitRun.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
