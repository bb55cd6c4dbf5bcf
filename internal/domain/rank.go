package domain

import "sort"

// RankTier is one step of the rank ladder. Score is the threshold a
// member's running total must reach to hold the tier.
type RankTier struct {
	Score   int    `json:"score"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// DefaultRankTiers returns the built-in ladder used when a unit defines no
// tiers of its own.
func DefaultRankTiers() []RankTier {
	return []RankTier{
		{Score: 0, Name: "Recruta"},
		{Score: 10, Name: "Soldado"},
		{Score: 20, Name: "Cabo"},
		{Score: 30, Name: "3º Sargento"},
		{Score: 40, Name: "2º Sargento"},
		{Score: 50, Name: "1º Sargento"},
		{Score: 60, Name: "Subtenente"},
		{Score: 70, Name: "Aspirante"},
		{Score: 80, Name: "2º Tenente"},
		{Score: 90, Name: "1º Tenente"},
		{Score: 100, Name: "Capitão"},
	}
}

// ResolveRank returns the tier with the greatest threshold not exceeding
// score. The input does not need to be sorted. When two tiers share a
// threshold, the later one in input order wins. When no tier qualifies,
// the lowest-threshold tier is returned rather than "no rank".
func ResolveRank(score int, tiers []RankTier) RankTier {
	if len(tiers) == 0 {
		tiers = DefaultRankTiers()
	}

	lowest := tiers[0]
	for _, t := range tiers[1:] {
		if t.Score < lowest.Score {
			lowest = t
		}
	}

	best := lowest
	found := false
	for _, t := range tiers {
		if t.Score > score {
			continue
		}
		if !found || t.Score >= best.Score {
			best = t
			found = true
		}
	}

	return best
}

// EarnedRanks returns every tier with threshold <= score, ascending by
// threshold. Used to display badges earned so far, as opposed to the
// current tier.
func EarnedRanks(score int, tiers []RankTier) []RankTier {
	if len(tiers) == 0 {
		tiers = DefaultRankTiers()
	}

	earned := make([]RankTier, 0, len(tiers))
	for _, t := range tiers {
		if t.Score <= score {
			earned = append(earned, t)
		}
	}

	sort.SliceStable(earned, func(i, j int) bool {
		return earned[i].Score < earned[j].Score
	})

	return earned
}

// MergeTiers overlays overrides onto defaults, keyed by tier name. An
// override with an unknown name becomes a new tier. The result is sorted
// ascending by threshold.
func MergeTiers(defaults, overrides []RankTier) []RankTier {
	merged := make([]RankTier, len(defaults))
	copy(merged, defaults)

	byName := make(map[string]int, len(merged))
	for i, t := range merged {
		byName[t.Name] = i
	}

	for _, o := range overrides {
		if i, ok := byName[o.Name]; ok {
			merged[i] = o
			continue
		}
		byName[o.Name] = len(merged)
		merged = append(merged, o)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score < merged[j].Score
	})

	return merged
}
