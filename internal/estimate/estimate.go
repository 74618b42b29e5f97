// Package estimate guesses chapter and volume counts from a title alone.
// It is the resolver's last-resort signal when every real catalog comes
// back empty: always available, deterministic, never authoritative.
package estimate

import (
	"strings"

	"github.com/Darius662/Readloom-Angular-sub001/internal/title"
)

const (
	baseChapters      = 30
	chaptersPerVolume = 9
)

// Long-running series tend to carry saga-style words in their titles.
var sagaKeywords = []string{
	"saga", "chronicle", "chronicles", "legend", "legends",
	"monogatari", "gaiden", "story", "stories", "tales",
}

// Counts derives a plausible (chapters, volumes) pair from lexical
// properties of the title: short titles skew long-running, saga-style
// keywords skew longer still. Volumes floor at 1.
func Counts(rawTitle string) (chapters, volumes int) {
	key := title.Normalize(rawTitle)
	words := strings.Fields(key)

	ch := float64(baseChapters)
	switch {
	case len(words) <= 1:
		ch *= 2.0
	case len(words) == 2:
		ch *= 1.5
	case len(words) == 3:
		// base holds
	default:
		ch *= 0.7
	}

	for _, w := range words {
		if containsKeyword(w) {
			ch *= 1.8
			break
		}
	}

	chapters = int(ch)
	if chapters < 1 {
		chapters = 1
	}
	volumes = chapters / chaptersPerVolume
	if volumes < 1 {
		volumes = 1
	}
	return chapters, volumes
}

func containsKeyword(word string) bool {
	for _, kw := range sagaKeywords {
		if word == kw {
			return true
		}
	}
	return false
}
