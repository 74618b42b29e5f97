package covers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

func local(id, label string) models.LocalVolume {
	return models.LocalVolume{ID: id, Label: label}
}

func candidate(n float64) models.CoverCandidate {
	return models.CoverCandidate{VolumeNumber: n, ArtifactRef: "cover"}
}

func TestParseVolumeLabel(t *testing.T) {
	cases := []struct {
		label string
		want  float64
		ok    bool
	}{
		{"3", 3, true},
		{" 12 ", 12, true},
		{"1.5", 1.5, true},
		{"Vol. 3", 3, true},
		{"Volume 10 (Deluxe)", 10, true},
		{"Omnibus 2.5 Edition", 2.5, true},
		{"Special", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseVolumeLabel(c.label)
		assert.Equal(t, c.ok, ok, "label %q", c.label)
		if c.ok {
			assert.Equal(t, c.want, got, "label %q", c.label)
		}
	}
}

func TestMatchAllExact(t *testing.T) {
	report := Match(
		[]models.CoverCandidate{candidate(1), candidate(2), candidate(3)},
		[]models.LocalVolume{local("a", "1"), local("b", "2"), local("c", "3")},
	)

	require.Len(t, report.Matched, 3)
	for _, m := range report.Matched {
		assert.Equal(t, models.MatchExact, m.Kind)
		assert.Zero(t, m.Distance)
	}
	assert.Empty(t, report.UnmatchedCandidates)
	assert.Empty(t, report.UnmatchedLocals)
}

func TestMatchFuzzyWithinTolerance(t *testing.T) {
	report := Match(
		[]models.CoverCandidate{candidate(6)},
		[]models.LocalVolume{local("a", "5")},
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, models.MatchFuzzy, report.Matched[0].Kind)
	assert.Equal(t, 1.0, report.Matched[0].Distance)
}

func TestMatchBeyondToleranceIsUnmatched(t *testing.T) {
	report := Match(
		[]models.CoverCandidate{candidate(7)},
		[]models.LocalVolume{local("a", "5")},
	)

	assert.Empty(t, report.Matched)
	require.Len(t, report.UnmatchedCandidates, 1)
	require.Len(t, report.UnmatchedLocals, 1)
	assert.Equal(t, "a", report.UnmatchedLocals[0].ID)
}

func TestMatchFractionalVolumes(t *testing.T) {
	report := Match(
		[]models.CoverCandidate{candidate(1.5)},
		[]models.LocalVolume{local("a", "1.5"), local("b", "2")},
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, models.MatchExact, report.Matched[0].Kind)
	assert.Equal(t, "a", report.Matched[0].Local.ID)
	assert.Equal(t, []models.LocalVolume{local("b", "2")}, report.UnmatchedLocals)
}

func TestMatchPrefersSmallestDistance(t *testing.T) {
	report := Match(
		[]models.CoverCandidate{candidate(4.4)},
		[]models.LocalVolume{local("a", "4"), local("b", "5")},
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "a", report.Matched[0].Local.ID, "0.4 beats 0.6")
	assert.InDelta(t, 0.4, report.Matched[0].Distance, 1e-9)
}

func TestMatchLocalConsumedOnlyOnce(t *testing.T) {
	// both candidates are within tolerance of local "2"; the earlier
	// (ascending) candidate claims it, the later one must not re-claim
	report := Match(
		[]models.CoverCandidate{candidate(2.5), candidate(1.8)},
		[]models.LocalVolume{local("a", "2")},
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, 1.8, report.Matched[0].Candidate.VolumeNumber, "ascending order decides the claim")
	require.Len(t, report.UnmatchedCandidates, 1)
	assert.Equal(t, 2.5, report.UnmatchedCandidates[0].VolumeNumber)
}

func TestMatchUnparsableLabelExcluded(t *testing.T) {
	report := Match(
		[]models.CoverCandidate{candidate(1)},
		[]models.LocalVolume{local("a", "Special Edition"), local("b", "1")},
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "b", report.Matched[0].Local.ID)
	require.Len(t, report.UnmatchedLocals, 1)
	assert.Equal(t, "a", report.UnmatchedLocals[0].ID)
}

func TestMatchEmptyInputs(t *testing.T) {
	report := Match(nil, nil)
	assert.Empty(t, report.Matched)
	assert.Empty(t, report.UnmatchedCandidates)
	assert.Empty(t, report.UnmatchedLocals)
}
