package models

// CoverCandidate is a volume→artifact pairing reported by an external
// catalog, awaiting association with a locally known volume. VolumeNumber
// may be fractional (e.g. an omnibus "1.5" release).
type CoverCandidate struct {
	VolumeNumber float64 `json:"volume_number"`
	ArtifactRef  string  `json:"artifact_ref"` // opaque reference (URL or file name)
}

// LocalVolume is a volume record already known to the caller's library.
// Label is free text ("Vol. 3", "3.5", "Omnibus 2") and must be parsed
// into a comparable number before matching.
type LocalVolume struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// MatchKind says how confident a cover pairing is.
type MatchKind string

const (
	MatchExact MatchKind = "EXACT"
	MatchFuzzy MatchKind = "FUZZY" // numeric distance in (0, 1]
)

// CoverMatch pairs one local volume with one reported artifact.
type CoverMatch struct {
	Local     LocalVolume    `json:"local"`
	Candidate CoverCandidate `json:"candidate"`
	Kind      MatchKind      `json:"kind"`
	Distance  float64        `json:"distance"` // 0 for EXACT
}

// CoverMatchReport is the full outcome of a matching pass. Unmatched
// entries are reported, never dropped, so callers can surface them for
// manual linking.
type CoverMatchReport struct {
	Matched             []CoverMatch     `json:"matched"`
	UnmatchedCandidates []CoverCandidate `json:"unmatched_candidates"`
	UnmatchedLocals     []LocalVolume    `json:"unmatched_locals"`
}
