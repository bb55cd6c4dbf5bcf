package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/repository"
)

// memoryUnitRepository keeps a single unit and its reports in memory so the
// service's delta arithmetic can be exercised without a database.
type memoryUnitRepository struct {
	unit    domain.Unit
	reports map[string]domain.ScoreReport
}

func newMemoryUnitRepository(unit domain.Unit) *memoryUnitRepository {
	return &memoryUnitRepository{
		unit:    unit,
		reports: make(map[string]domain.ScoreReport),
	}
}

func (m *memoryUnitRepository) Create(_ context.Context, unit domain.Unit) (domain.Unit, error) {
	m.unit = unit
	return unit, nil
}

func (m *memoryUnitRepository) FindBySlug(_ context.Context, slug string) (domain.Unit, error) {
	if slug != m.unit.Slug {
		return domain.Unit{}, repository.ErrUnitNotFound
	}
	return m.unit, nil
}

func (m *memoryUnitRepository) FindAll(_ context.Context) ([]domain.Unit, error) {
	return []domain.Unit{m.unit}, nil
}

func (m *memoryUnitRepository) Update(_ context.Context, unit domain.Unit) (domain.Unit, error) {
	return unit, nil
}

func (m *memoryUnitRepository) UpdatePassword(_ context.Context, _, _ string) error {
	return nil
}

func (m *memoryUnitRepository) Delete(_ context.Context, _ string) error {
	return nil
}

func (m *memoryUnitRepository) AddMember(_ context.Context, _ string, member domain.Member) (domain.Member, error) {
	m.unit.Members = append(m.unit.Members, member)
	return member, nil
}

func (m *memoryUnitRepository) FindMember(_ context.Context, _, id string) (domain.Member, error) {
	member, ok := m.unit.FindMember(id)
	if !ok {
		return domain.Member{}, repository.ErrMemberNotFound
	}
	return member, nil
}

func (m *memoryUnitRepository) UpdateMember(_ context.Context, _ string, member domain.Member) (domain.Member, error) {
	for i := range m.unit.Members {
		if m.unit.Members[i].ID == member.ID {
			member.Score = m.unit.Members[i].Score
			m.unit.Members[i] = member
			return member, nil
		}
	}
	return domain.Member{}, repository.ErrMemberNotFound
}

func (m *memoryUnitRepository) DeleteMember(_ context.Context, _, id string) error {
	for i := range m.unit.Members {
		if m.unit.Members[i].ID == id {
			m.unit.Members = append(m.unit.Members[:i], m.unit.Members[i+1:]...)
			return nil
		}
	}
	return repository.ErrMemberNotFound
}

func (m *memoryUnitRepository) AddCriterion(_ context.Context, _ string, criterion domain.ScoringCriterion, _ int) (domain.ScoringCriterion, error) {
	m.unit.Criteria = append(m.unit.Criteria, criterion)
	return criterion, nil
}

func (m *memoryUnitRepository) UpdateCriterion(_ context.Context, _ string, criterion domain.ScoringCriterion) (domain.ScoringCriterion, error) {
	for i := range m.unit.Criteria {
		if m.unit.Criteria[i].ID == criterion.ID {
			m.unit.Criteria[i] = criterion
			return criterion, nil
		}
	}
	return domain.ScoringCriterion{}, repository.ErrCriterionNotFound
}

func (m *memoryUnitRepository) DeleteCriterion(_ context.Context, _, id string) error {
	for i := range m.unit.Criteria {
		if m.unit.Criteria[i].ID == id {
			m.unit.Criteria = append(m.unit.Criteria[:i], m.unit.Criteria[i+1:]...)
			return nil
		}
	}
	return repository.ErrCriterionNotFound
}

func (m *memoryUnitRepository) ReplaceRankOverrides(_ context.Context, _ string, tiers []domain.RankTier) error {
	m.unit.RankOverrides = tiers
	return nil
}

func (m *memoryUnitRepository) ApplyReport(_ context.Context, _ string, report domain.ScoreReport, deltas map[string]int) (domain.ScoreReport, error) {
	m.reports[report.ID] = report
	m.applyDeltas(deltas)
	return report, nil
}

func (m *memoryUnitRepository) ReplaceReport(_ context.Context, _ string, report domain.ScoreReport, deltas map[string]int) (domain.ScoreReport, error) {
	if _, ok := m.reports[report.ID]; !ok {
		return domain.ScoreReport{}, repository.ErrReportNotFound
	}
	m.reports[report.ID] = report
	m.applyDeltas(deltas)
	return report, nil
}

func (m *memoryUnitRepository) RemoveReport(_ context.Context, _, id string, deltas map[string]int) error {
	if _, ok := m.reports[id]; !ok {
		return repository.ErrReportNotFound
	}
	delete(m.reports, id)
	m.applyDeltas(deltas)
	return nil
}

func (m *memoryUnitRepository) FindReport(_ context.Context, _, id string) (domain.ScoreReport, error) {
	report, ok := m.reports[id]
	if !ok {
		return domain.ScoreReport{}, repository.ErrReportNotFound
	}
	return report, nil
}

func (m *memoryUnitRepository) FindReports(_ context.Context, _ string) ([]domain.ScoreReport, error) {
	reports := make([]domain.ScoreReport, 0, len(m.reports))
	for _, r := range m.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Date.After(reports[j].Date)
	})
	return reports, nil
}

func (m *memoryUnitRepository) TopMembers(_ context.Context, limit int) ([]domain.TopMember, error) {
	members := make([]domain.Member, len(m.unit.Members))
	copy(members, m.unit.Members)
	sort.Slice(members, func(i, j int) bool {
		return members[i].Score > members[j].Score
	})
	if limit < len(members) {
		members = members[:limit]
	}
	top := make([]domain.TopMember, len(members))
	for i, mem := range members {
		top[i] = domain.TopMember{Member: mem, UnitSlug: m.unit.Slug, UnitName: m.unit.Name}
	}
	return top, nil
}

func (m *memoryUnitRepository) ResetMemberScores(_ context.Context, _ string, scores map[string]int) error {
	for i := range m.unit.Members {
		m.unit.Members[i].Score = scores[m.unit.Members[i].ID]
	}
	return nil
}

// applyDeltas mirrors the ledger update: unknown member ids are skipped.
func (m *memoryUnitRepository) applyDeltas(deltas map[string]int) {
	for i := range m.unit.Members {
		m.unit.Members[i].Score += deltas[m.unit.Members[i].ID]
	}
}

func testUnit() domain.Unit {
	return domain.Unit{
		Slug: "falcons",
		Name: "Falcons",
		Members: []domain.Member{
			{ID: "m1", Name: "Ana"},
			{ID: "m2", Name: "Bruno"},
		},
		Criteria: []domain.ScoringCriterion{
			{ID: "present", Label: "Presença", Points: 5},
			{ID: "uniform", Label: "Uniforme", Points: 2},
			{ID: "behavior", Label: "Comportamento", Points: -2},
		},
	}
}

func (m *memoryUnitRepository) memberScore(t *testing.T, id string) int {
	t.Helper()
	member, ok := m.unit.FindMember(id)
	require.True(t, ok)
	return member.Score
}

func TestScoringService_CreateReport(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)

	report, err := svc.CreateReport(context.Background(), "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true, "uniform": true}},
			"m2": {Checks: map[string]bool{"present": true, "behavior": true}},
		},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Len(t, report.Criteria, 3)
	assert.Equal(t, 7, report.MemberScores["m1"].Points)
	assert.Equal(t, 3, report.MemberScores["m2"].Points)
	assert.Equal(t, 7, repo.memberScore(t, "m1"))
	assert.Equal(t, 3, repo.memberScore(t, "m2"))
}

func TestScoringService_CreateReport_UnitNotFound(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)

	_, err := svc.CreateReport(context.Background(), "eagles", ReportSubmission{})

	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestScoringService_EditReport(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true}},
			"m2": {Checks: map[string]bool{"present": true}},
		},
	})
	require.NoError(t, err)

	// m1 gains uniform, m2 drops off the form entirely.
	edited, err := svc.EditReport(ctx, "falcons", report.ID, ReportSubmission{
		Date: report.Date,
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true, "uniform": true}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, report.ID, edited.ID)
	assert.Equal(t, 7, repo.memberScore(t, "m1"))
	assert.Equal(t, 0, repo.memberScore(t, "m2"))
}

func TestScoringService_EditReport_IdenticalIsNoOp(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)
	ctx := context.Background()

	sub := ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true, "behavior": true}},
		},
	}

	report, err := svc.CreateReport(ctx, "falcons", sub)
	require.NoError(t, err)
	before := repo.memberScore(t, "m1")

	_, err = svc.EditReport(ctx, "falcons", report.ID, sub)

	require.NoError(t, err)
	assert.Equal(t, before, repo.memberScore(t, "m1"))
}

func TestScoringService_DeleteReport(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 5, repo.memberScore(t, "m1"))

	err = svc.DeleteReport(ctx, "falcons", report.ID)

	require.NoError(t, err)
	assert.Equal(t, 0, repo.memberScore(t, "m1"))

	_, err = svc.GetReport(ctx, "falcons", report.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestScoringService_DeleteReport_NegativeReportRaisesScore(t *testing.T) {
	unit := testUnit()
	unit.Members[0].Score = 50
	repo := newMemoryUnitRepository(unit)
	svc := NewScoringService(repo)
	ctx := context.Background()

	// A behavior-only report is worth -2. Stage it, bump the stored score
	// to simulate history, then delete: the score must go up.
	report, err := svc.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"behavior": true}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 48, repo.memberScore(t, "m1"))

	err = svc.DeleteReport(ctx, "falcons", report.ID)

	require.NoError(t, err)
	assert.Equal(t, 50, repo.memberScore(t, "m1"))
}

func TestScoringService_DeleteReport_DepartedMemberSkipped(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true}},
			"m2": {Checks: map[string]bool{"present": true}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteMember(ctx, "falcons", "m2"))

	err = svc.DeleteReport(ctx, "falcons", report.ID)

	require.NoError(t, err)
	assert.Equal(t, 0, repo.memberScore(t, "m1"))
}

func TestScoringService_CreateReport_SnapshotSurvivesCriterionEdit(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true}},
		},
	})
	require.NoError(t, err)

	// Raise the live value after the fact.
	_, err = repo.UpdateCriterion(ctx, "falcons", domain.ScoringCriterion{ID: "present", Label: "Presença", Points: 10})
	require.NoError(t, err)

	stored, err := svc.GetReport(ctx, "falcons", report.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.MemberScores["m1"].Points)

	// Deleting still reverses the historical 5, not the live 10.
	require.NoError(t, svc.DeleteReport(ctx, "falcons", report.ID))
	assert.Equal(t, 0, repo.memberScore(t, "m1"))
}

func TestScoringService_Ranking(t *testing.T) {
	unit := testUnit()
	unit.Members[0].Score = 25
	unit.Members[1].Score = 5
	repo := newMemoryUnitRepository(unit)
	svc := NewScoringService(repo)

	ranked, err := svc.Ranking(context.Background(), "falcons")

	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Ana", ranked[0].Name)
	assert.Equal(t, "Cabo", ranked[0].Rank.Name)
	assert.Len(t, ranked[0].Earned, 3)
	assert.Equal(t, "Bruno", ranked[1].Name)
	assert.Equal(t, "Recruta", ranked[1].Rank.Name)
}

func TestScoringService_Ranking_UsesOverrides(t *testing.T) {
	unit := testUnit()
	unit.Members[0].Score = 25
	unit.RankOverrides = []domain.RankTier{{Score: 20, Name: "Explorador"}}
	repo := newMemoryUnitRepository(unit)
	svc := NewScoringService(repo)

	ranked, err := svc.Ranking(context.Background(), "falcons")

	require.NoError(t, err)
	assert.Equal(t, "Explorador", ranked[0].Rank.Name)
}

func TestScoringService_RebuildScores(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	svc := NewScoringService(repo)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true}},
		},
	})
	require.NoError(t, err)

	// Report ids are epoch milliseconds; keep the two creates apart.
	time.Sleep(2 * time.Millisecond)

	_, err = svc.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true, "uniform": true}},
		},
	})
	require.NoError(t, err)

	// Corrupt the stored total, then replay history.
	repo.unit.Members[0].Score = 999

	err = svc.RebuildScores(ctx, "falcons")

	require.NoError(t, err)
	assert.Equal(t, 12, repo.memberScore(t, "m1"))
}

func TestScoringService_TopMembers(t *testing.T) {
	unit := testUnit()
	unit.Members[0].Score = 35
	unit.Members[1].Score = 12
	repo := newMemoryUnitRepository(unit)
	svc := NewScoringService(repo)

	top, err := svc.TopMembers(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Ana", top[0].Name)
	assert.Equal(t, "3º Sargento", top[0].Rank.Name)
}
