// Package title turns free-text series titles into canonical comparison
// keys. Every other engine component keys on the output of Normalize, so
// two titles that normalize identically are the same series as far as
// caching and the knowledge base are concerned.
package title

import (
	"strings"
	"unicode"
)

// The multiplication sign shows up in romanized titles ("Spy × Family")
// where catalogs write a plain "x". Mapped before stripping so both
// spellings land on the same key.
var crossReplacer = strings.NewReplacer("×", "x", "✕", "x")

// Normalize converts a title to its canonical form: lowercase, letters and
// digits only, runs of everything else collapsed to a single space, trimmed.
// Pure and total; an empty or all-symbol title normalizes to "".
func Normalize(s string) string {
	s = crossReplacer.Replace(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		// treat everything else as a space separator
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
