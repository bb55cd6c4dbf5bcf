package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputePoints(t *testing.T) {
	criteria := []CriterionSnapshot{
		{ID: "present", Label: "Presença", Points: 5},
		{ID: "uniform", Label: "Uniforme", Points: 2},
		{ID: "behavior", Label: "Comportamento", Points: -2},
	}

	checks := map[string]bool{
		"present":  true,
		"uniform":  false,
		"behavior": true,
	}

	assert.Equal(t, 3, ComputePoints(checks, criteria))
}

func TestComputePoints_IgnoresUnknownChecks(t *testing.T) {
	criteria := []CriterionSnapshot{{ID: "present", Points: 5}}

	got := ComputePoints(map[string]bool{"present": true, "removed": true}, criteria)

	assert.Equal(t, 5, got)
}

func TestComputePoints_EmptyChecks(t *testing.T) {
	criteria := SnapshotCriteria(DefaultScoringCriteria())

	assert.Equal(t, 0, ComputePoints(nil, criteria))
}

func TestReportDeltas(t *testing.T) {
	report := ScoreReport{
		MemberScores: map[string]MemberScoreEntry{
			"1": {Points: 7},
			"2": {Points: -2},
		},
	}

	deltas := report.Deltas()

	assert.Equal(t, map[string]int{"1": 7, "2": -2}, deltas)
}

func TestNewTimeID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	assert.Equal(t, "1700000000000", NewTimeID(now))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "monte-sinai", Slugify("Monte Sinai"))
	assert.Equal(t, "monte-hope", Slugify("  Monte   Hope "))
	assert.Equal(t, "rubi", Slugify("Rubi"))
}
