package domain

// ScoringCriterion is one checkable scoring rule. Points may be negative.
type ScoringCriterion struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// DefaultScoringCriteria seeds a new unit with the standard checklist.
// "present" is special-cased by report forms: it starts checked.
func DefaultScoringCriteria() []ScoringCriterion {
	return []ScoringCriterion{
		{ID: "present", Label: "Presença", Points: 5},
		{ID: "uniform", Label: "Uniforme", Points: 2},
		{ID: "bible", Label: "Bíblia", Points: 2},
		{ID: "lesson", Label: "Lição", Points: 3},
		{ID: "lenco", Label: "Lenço", Points: 1},
		{ID: "behavior", Label: "Comportamento", Points: -2},
	}
}
