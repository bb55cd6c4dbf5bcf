package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ladder() []RankTier {
	return []RankTier{
		{Score: 0, Name: "Recruta"},
		{Score: 10, Name: "Soldado"},
		{Score: 20, Name: "Cabo"},
	}
}

func TestResolveRank(t *testing.T) {
	tests := []struct {
		name  string
		score int
		tiers []RankTier
		want  string
	}{
		{"between thresholds", 15, ladder(), "Soldado"},
		{"exactly on threshold", 20, ladder(), "Cabo"},
		{"above every threshold", 999, ladder(), "Cabo"},
		{"zero score", 0, ladder(), "Recruta"},
		{
			"below every threshold falls back to lowest tier",
			3,
			[]RankTier{{Score: 10, Name: "Soldado"}, {Score: 20, Name: "Cabo"}},
			"Soldado",
		},
		{
			"unsorted input",
			15,
			[]RankTier{{Score: 20, Name: "Cabo"}, {Score: 0, Name: "Recruta"}, {Score: 10, Name: "Soldado"}},
			"Soldado",
		},
		{
			"duplicate threshold last in input wins",
			12,
			[]RankTier{{Score: 10, Name: "Soldado"}, {Score: 10, Name: "Soldado Raso"}},
			"Soldado Raso",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRank(tt.score, tt.tiers)

			assert.Equal(t, tt.want, got.Name)
			if tt.score >= got.Score {
				for _, tier := range tt.tiers {
					if tier.Score <= tt.score {
						assert.LessOrEqual(t, tier.Score, got.Score)
					}
				}
			}
		})
	}
}

func TestResolveRank_EmptyTiersUsesDefaults(t *testing.T) {
	got := ResolveRank(55, nil)

	assert.Equal(t, "1º Sargento", got.Name)
}

func TestResolveRank_Deterministic(t *testing.T) {
	tiers := []RankTier{{Score: 20, Name: "Cabo"}, {Score: 10, Name: "Soldado"}}

	first := ResolveRank(15, tiers)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveRank(15, tiers))
	}
}

func TestEarnedRanks(t *testing.T) {
	earned := EarnedRanks(15, ladder())

	require.Len(t, earned, 2)
	assert.Equal(t, "Recruta", earned[0].Name)
	assert.Equal(t, "Soldado", earned[1].Name)
}

func TestEarnedRanks_IsPrefixOfSortedLadder(t *testing.T) {
	tiers := []RankTier{{Score: 20, Name: "Cabo"}, {Score: 0, Name: "Recruta"}, {Score: 10, Name: "Soldado"}}

	for score := -5; score <= 30; score++ {
		earned := EarnedRanks(score, tiers)

		for i := 1; i < len(earned); i++ {
			assert.LessOrEqual(t, earned[i-1].Score, earned[i].Score)
		}
		for _, e := range earned {
			assert.LessOrEqual(t, e.Score, score)
		}

		current := ResolveRank(score, tiers)
		if len(earned) > 0 {
			assert.Equal(t, current.Name, earned[len(earned)-1].Name)
		}
	}
}

func TestMergeTiers(t *testing.T) {
	defaults := DefaultRankTiers()
	overrides := []RankTier{
		{Score: 15, Name: "Soldado", IconURL: "https://cdn.example.com/soldado.png"},
		{Score: 110, Name: "Major"},
	}

	merged := MergeTiers(defaults, overrides)

	require.Len(t, merged, len(defaults)+1)
	assert.Equal(t, "Major", merged[len(merged)-1].Name)

	for i := 1; i < len(merged); i++ {
		assert.LessOrEqual(t, merged[i-1].Score, merged[i].Score)
	}

	soldado := ResolveRank(15, merged)
	assert.Equal(t, "Soldado", soldado.Name)
	assert.Equal(t, 15, soldado.Score)
	assert.Equal(t, "https://cdn.example.com/soldado.png", soldado.IconURL)
}
