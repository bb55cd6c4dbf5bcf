package domain

import "time"

// CriterionSnapshot freezes a criterion's label and point value at report
// creation time, so history stays interpretable after the live criteria
// set is edited or a criterion is removed.
type CriterionSnapshot struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// MemberScoreEntry records which criteria were checked for one member in
// one report, with the derived point total and an optional free-text note.
type MemberScoreEntry struct {
	Checks      map[string]bool `json:"checks"`
	Points      int             `json:"points"`
	Observation string          `json:"observation,omitempty"`
}

// ScoreReport is a dated scoring event. MemberScores may reference member
// ids no longer on the roster; such entries are kept as history and never
// treated as an error.
type ScoreReport struct {
	ID           string                      `json:"id"`
	Date         time.Time                   `json:"date"`
	Criteria     []CriterionSnapshot         `json:"criteria"`
	MemberScores map[string]MemberScoreEntry `json:"member_scores"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// SnapshotCriteria copies the live criteria set into report-local form.
func SnapshotCriteria(criteria []ScoringCriterion) []CriterionSnapshot {
	snaps := make([]CriterionSnapshot, len(criteria))
	for i, c := range criteria {
		snaps[i] = CriterionSnapshot{ID: c.ID, Label: c.Label, Points: c.Points}
	}
	return snaps
}

// ComputePoints sums the point values of every checked criterion.
// Checked ids with no matching criterion contribute nothing.
func ComputePoints(checks map[string]bool, criteria []CriterionSnapshot) int {
	total := 0
	for _, c := range criteria {
		if checks[c.ID] {
			total += c.Points
		}
	}
	return total
}

// Deltas returns the per-member score adjustments this report applied.
// Negating them reverses the report.
func (r ScoreReport) Deltas() map[string]int {
	deltas := make(map[string]int, len(r.MemberScores))
	for memberID, entry := range r.MemberScores {
		deltas[memberID] = entry.Points
	}
	return deltas
}
