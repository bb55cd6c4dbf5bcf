package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/metrics"
	"github.com/clubescore/ranking-api/internal/repository"
)

// MemberSubmission is one member's row of the score form.
type MemberSubmission struct {
	Checks      map[string]bool
	Observation string
}

// ReportSubmission is the score form as submitted: the event date plus
// one row per member. Member ids not on the current roster are accepted;
// their entries are stored for audit but never touch the ledger.
type ReportSubmission struct {
	Date    time.Time
	Members map[string]MemberSubmission
}

type ScoringService struct {
	repo UnitRepository
}

func NewScoringService(repo UnitRepository) *ScoringService {
	return &ScoringService{
		repo: repo,
	}
}

// CreateReport computes per-member point totals against the criteria
// active right now, snapshots those criteria into the report, and applies
// the deltas to the ledger. Report and ledger are written together.
func (s *ScoringService) CreateReport(ctx context.Context, slug string, sub ReportSubmission) (domain.ScoreReport, error) {
	unit, err := s.getUnit(ctx, slug)
	if err != nil {
		return domain.ScoreReport{}, err
	}

	snaps := domain.SnapshotCriteria(unit.Criteria)
	report := domain.ScoreReport{
		ID:           domain.NewTimeID(time.Now()),
		Date:         sub.Date,
		Criteria:     snaps,
		MemberScores: buildEntries(sub, snaps),
	}

	applied, err := s.repo.ApplyReport(ctx, slug, report, report.Deltas())
	if err != nil {
		return domain.ScoreReport{}, fmt.Errorf("s.repo.ApplyReport -> %w", err)
	}

	metrics.ReportsApplied.Inc()

	return applied, nil
}

// EditReport reverses the original report's deltas, recomputes the new
// entries against the criteria active now, and applies everything as one
// batch under the same report id. Members absent from the new submission
// are only reversed.
func (s *ScoringService) EditReport(ctx context.Context, slug, id string, sub ReportSubmission) (domain.ScoreReport, error) {
	original, err := s.GetReport(ctx, slug, id)
	if err != nil {
		return domain.ScoreReport{}, err
	}

	unit, err := s.getUnit(ctx, slug)
	if err != nil {
		return domain.ScoreReport{}, err
	}

	snaps := domain.SnapshotCriteria(unit.Criteria)
	report := domain.ScoreReport{
		ID:           original.ID,
		Date:         sub.Date,
		Criteria:     snaps,
		MemberScores: buildEntries(sub, snaps),
	}

	deltas := make(map[string]int)
	for memberID, points := range original.Deltas() {
		deltas[memberID] -= points
	}
	for memberID, points := range report.Deltas() {
		deltas[memberID] += points
	}

	updated, err := s.repo.ReplaceReport(ctx, slug, report, deltas)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return domain.ScoreReport{}, ErrReportNotFound
		}

		return domain.ScoreReport{}, fmt.Errorf("s.repo.ReplaceReport -> %w", err)
	}

	metrics.ReportsEdited.Inc()

	return updated, nil
}

// DeleteReport subtracts the report's stored deltas from the ledger and
// removes it from history. Entries whose member left the roster are
// skipped silently; deleting history must not fail because of them.
func (s *ScoringService) DeleteReport(ctx context.Context, slug, id string) error {
	original, err := s.GetReport(ctx, slug, id)
	if err != nil {
		return err
	}

	deltas := make(map[string]int)
	for memberID, points := range original.Deltas() {
		deltas[memberID] = -points
	}

	if err = s.repo.RemoveReport(ctx, slug, id, deltas); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return ErrReportNotFound
		}

		return fmt.Errorf("s.repo.RemoveReport -> %w", err)
	}

	metrics.ReportsDeleted.Inc()

	return nil
}

func (s *ScoringService) GetReport(ctx context.Context, slug, id string) (domain.ScoreReport, error) {
	report, err := s.repo.FindReport(ctx, slug, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return domain.ScoreReport{}, ErrReportNotFound
		}

		return domain.ScoreReport{}, fmt.Errorf("s.repo.FindReport -> %w", err)
	}

	return report, nil
}

// ListReports returns the unit's history, most recent first.
func (s *ScoringService) ListReports(ctx context.Context, slug string) ([]domain.ScoreReport, error) {
	reports, err := s.repo.FindReports(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindReports -> %w", err)
	}

	return reports, nil
}

// Ranking returns the unit roster sorted by score descending, each member
// paired with the current tier and the badges earned so far.
func (s *ScoringService) Ranking(ctx context.Context, slug string) ([]domain.RankedMember, error) {
	unit, err := s.getUnit(ctx, slug)
	if err != nil {
		return nil, err
	}

	tiers := unit.Tiers()

	members := make([]domain.Member, len(unit.Members))
	copy(members, unit.Members)
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].Name < members[j].Name
	})

	ranked := make([]domain.RankedMember, len(members))
	for i, m := range members {
		ranked[i] = domain.RankedMember{
			Member: m,
			Rank:   domain.ResolveRank(m.Score, tiers),
			Earned: domain.EarnedRanks(m.Score, tiers),
		}
	}

	return ranked, nil
}

// TopMembers is the cross-unit leaderboard. Tiers are resolved against
// the default ladder since rows span units with different overrides.
func (s *ScoringService) TopMembers(ctx context.Context, limit int) ([]domain.TopMember, error) {
	top, err := s.repo.TopMembers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.TopMembers -> %w", err)
	}

	for i := range top {
		top[i].Rank = domain.ResolveRank(top[i].Score, nil)
	}

	return top, nil
}

// RebuildScores replays the full report history into the ledger,
// reconciling the stored running totals with the history they are meant
// to summarize.
func (s *ScoringService) RebuildScores(ctx context.Context, slug string) error {
	if _, err := s.getUnit(ctx, slug); err != nil {
		return err
	}

	reports, err := s.repo.FindReports(ctx, slug)
	if err != nil {
		return fmt.Errorf("s.repo.FindReports -> %w", err)
	}

	totals := make(map[string]int)
	for _, report := range reports {
		for memberID, entry := range report.MemberScores {
			totals[memberID] += entry.Points
		}
	}

	if err = s.repo.ResetMemberScores(ctx, slug, totals); err != nil {
		return fmt.Errorf("s.repo.ResetMemberScores -> %w", err)
	}

	return nil
}

func (s *ScoringService) getUnit(ctx context.Context, slug string) (domain.Unit, error) {
	unit, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			return domain.Unit{}, ErrUnitNotFound
		}

		return domain.Unit{}, fmt.Errorf("s.repo.FindBySlug -> %w", err)
	}

	return unit, nil
}

func buildEntries(sub ReportSubmission, snaps []domain.CriterionSnapshot) map[string]domain.MemberScoreEntry {
	entries := make(map[string]domain.MemberScoreEntry, len(sub.Members))
	for memberID, ms := range sub.Members {
		checks := ms.Checks
		if checks == nil {
			checks = map[string]bool{}
		}

		entries[memberID] = domain.MemberScoreEntry{
			Checks:      checks,
			Points:      domain.ComputePoints(checks, snaps),
			Observation: ms.Observation,
		}
	}

	return entries
}
