package domain

import (
	"strings"
	"time"
)

// Unit is the aggregate root: a club chapter owning its members, scoring
// criteria, rank tier overrides and report history.
type Unit struct {
	Slug          string             `json:"slug"`
	Name          string             `json:"name"`
	Icon          string             `json:"icon,omitempty"`
	CardImageURL  string             `json:"card_image_url,omitempty"`
	CardColor     string             `json:"card_color,omitempty"`
	HasPassword   bool               `json:"has_password"`
	PasswordHash  string             `json:"-"`
	Members       []Member           `json:"members"`
	Criteria      []ScoringCriterion `json:"criteria"`
	RankOverrides []RankTier         `json:"rank_overrides,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Slugify derives the unit identifier from its name: lowercased, with
// whitespace runs collapsed into single hyphens.
func Slugify(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "-")
}

// Tiers is the ladder in effect for this unit: the built-in defaults with
// the unit's overrides merged on top.
func (u *Unit) Tiers() []RankTier {
	return MergeTiers(DefaultRankTiers(), u.RankOverrides)
}

// FindMember returns the roster entry for id, if present.
func (u *Unit) FindMember(id string) (Member, bool) {
	for _, m := range u.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// RankedMember pairs a member with their resolved tier and badges earned
// so far.
type RankedMember struct {
	Member
	Rank   RankTier   `json:"rank"`
	Earned []RankTier `json:"earned"`
}

// TopMember is a cross-unit ranking row.
type TopMember struct {
	Member
	UnitSlug string   `json:"unit_slug"`
	UnitName string   `json:"unit_name"`
	Rank     RankTier `json:"rank"`
}
