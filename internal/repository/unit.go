package repository

import (
	"context"
	"fmt"

	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/repository/dao"
)

var (
	ErrUnitExists        = dao.ErrUnitExists
	ErrUnitNotFound      = dao.ErrUnitNotFound
	ErrMemberNotFound    = dao.ErrMemberNotFound
	ErrCriterionNotFound = dao.ErrCriterionNotFound
	ErrReportNotFound    = dao.ErrReportNotFound
)

type UnitDAO interface {
	Insert(ctx context.Context, unit dao.Unit) (dao.Unit, error)
	FindBySlug(ctx context.Context, slug string) (dao.Unit, error)
	FindAll(ctx context.Context) ([]dao.Unit, error)
	Update(ctx context.Context, unit dao.Unit) (dao.Unit, error)
	UpdatePassword(ctx context.Context, slug, passwordHash string) error
	Delete(ctx context.Context, slug string) error
	InsertMember(ctx context.Context, member dao.Member) (dao.Member, error)
	FindMember(ctx context.Context, slug, id string) (dao.Member, error)
	UpdateMember(ctx context.Context, member dao.Member) (dao.Member, error)
	DeleteMember(ctx context.Context, slug, id string) error
	InsertCriterion(ctx context.Context, criterion dao.Criterion) (dao.Criterion, error)
	UpdateCriterion(ctx context.Context, criterion dao.Criterion) (dao.Criterion, error)
	DeleteCriterion(ctx context.Context, slug, id string) error
	ReplaceRankTiers(ctx context.Context, slug string, tiers []dao.RankTier) error
	InsertReport(ctx context.Context, report dao.ScoreReport, deltas map[string]int) (dao.ScoreReport, error)
	UpdateReport(ctx context.Context, report dao.ScoreReport, deltas map[string]int) (dao.ScoreReport, error)
	DeleteReport(ctx context.Context, slug, id string, deltas map[string]int) error
	FindReport(ctx context.Context, slug, id string) (dao.ScoreReport, error)
	FindReports(ctx context.Context, slug string) ([]dao.ScoreReport, error)
	TopMembers(ctx context.Context, limit int) ([]dao.TopMemberRow, error)
	ResetMemberScores(ctx context.Context, slug string, scores map[string]int) error
}

type UnitRepository struct {
	dao UnitDAO
}

func NewUnitRepository(dao UnitDAO) *UnitRepository {
	return &UnitRepository{
		dao: dao,
	}
}

func (r *UnitRepository) Create(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	created, err := r.dao.Insert(ctx, r.unitDomainToDao(unit))
	if err != nil {
		if err == dao.ErrUnitExists {
			return domain.Unit{}, ErrUnitExists
		}

		return domain.Unit{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.unitDaoToDomain(created), nil
}

func (r *UnitRepository) FindBySlug(ctx context.Context, slug string) (domain.Unit, error) {
	found, err := r.dao.FindBySlug(ctx, slug)
	if err != nil {
		if err == dao.ErrUnitNotFound {
			return domain.Unit{}, ErrUnitNotFound
		}

		return domain.Unit{}, fmt.Errorf("r.dao.FindBySlug -> %w", err)
	}

	return r.unitDaoToDomain(found), nil
}

func (r *UnitRepository) FindAll(ctx context.Context) ([]domain.Unit, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	units := make([]domain.Unit, len(found))
	for i, u := range found {
		units[i] = r.unitDaoToDomain(u)
	}

	return units, nil
}

func (r *UnitRepository) Update(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	updated, err := r.dao.Update(ctx, r.unitDomainToDao(unit))
	if err != nil {
		if err == dao.ErrUnitNotFound {
			return domain.Unit{}, ErrUnitNotFound
		}

		return domain.Unit{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.unitDaoToDomain(updated), nil
}

func (r *UnitRepository) UpdatePassword(ctx context.Context, slug, passwordHash string) error {
	if err := r.dao.UpdatePassword(ctx, slug, passwordHash); err != nil {
		if err == dao.ErrUnitNotFound {
			return ErrUnitNotFound
		}

		return fmt.Errorf("r.dao.UpdatePassword -> %w", err)
	}

	return nil
}

func (r *UnitRepository) Delete(ctx context.Context, slug string) error {
	if err := r.dao.Delete(ctx, slug); err != nil {
		if err == dao.ErrUnitNotFound {
			return ErrUnitNotFound
		}

		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *UnitRepository) AddMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error) {
	created, err := r.dao.InsertMember(ctx, r.memberDomainToDao(slug, member))
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.InsertMember -> %w", err)
	}

	return r.memberDaoToDomain(created), nil
}

func (r *UnitRepository) FindMember(ctx context.Context, slug, id string) (domain.Member, error) {
	found, err := r.dao.FindMember(ctx, slug, id)
	if err != nil {
		if err == dao.ErrMemberNotFound {
			return domain.Member{}, ErrMemberNotFound
		}

		return domain.Member{}, fmt.Errorf("r.dao.FindMember -> %w", err)
	}

	return r.memberDaoToDomain(found), nil
}

func (r *UnitRepository) UpdateMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error) {
	updated, err := r.dao.UpdateMember(ctx, r.memberDomainToDao(slug, member))
	if err != nil {
		if err == dao.ErrMemberNotFound {
			return domain.Member{}, ErrMemberNotFound
		}

		return domain.Member{}, fmt.Errorf("r.dao.UpdateMember -> %w", err)
	}

	return r.memberDaoToDomain(updated), nil
}

func (r *UnitRepository) DeleteMember(ctx context.Context, slug, id string) error {
	if err := r.dao.DeleteMember(ctx, slug, id); err != nil {
		if err == dao.ErrMemberNotFound {
			return ErrMemberNotFound
		}

		return fmt.Errorf("r.dao.DeleteMember -> %w", err)
	}

	return nil
}

func (r *UnitRepository) AddCriterion(ctx context.Context, slug string, criterion domain.ScoringCriterion, position int) (domain.ScoringCriterion, error) {
	created, err := r.dao.InsertCriterion(ctx, dao.Criterion{
		UnitSlug: slug,
		ID:       criterion.ID,
		Label:    criterion.Label,
		Points:   criterion.Points,
		Position: position,
	})
	if err != nil {
		return domain.ScoringCriterion{}, fmt.Errorf("r.dao.InsertCriterion -> %w", err)
	}

	return r.criterionDaoToDomain(created), nil
}

func (r *UnitRepository) UpdateCriterion(ctx context.Context, slug string, criterion domain.ScoringCriterion) (domain.ScoringCriterion, error) {
	updated, err := r.dao.UpdateCriterion(ctx, dao.Criterion{
		UnitSlug: slug,
		ID:       criterion.ID,
		Label:    criterion.Label,
		Points:   criterion.Points,
	})
	if err != nil {
		if err == dao.ErrCriterionNotFound {
			return domain.ScoringCriterion{}, ErrCriterionNotFound
		}

		return domain.ScoringCriterion{}, fmt.Errorf("r.dao.UpdateCriterion -> %w", err)
	}

	return r.criterionDaoToDomain(updated), nil
}

func (r *UnitRepository) DeleteCriterion(ctx context.Context, slug, id string) error {
	if err := r.dao.DeleteCriterion(ctx, slug, id); err != nil {
		if err == dao.ErrCriterionNotFound {
			return ErrCriterionNotFound
		}

		return fmt.Errorf("r.dao.DeleteCriterion -> %w", err)
	}

	return nil
}

func (r *UnitRepository) ReplaceRankOverrides(ctx context.Context, slug string, tiers []domain.RankTier) error {
	daoTiers := make([]dao.RankTier, len(tiers))
	for i, t := range tiers {
		daoTiers[i] = dao.RankTier{
			UnitSlug: slug,
			Name:     t.Name,
			Score:    t.Score,
			IconURL:  t.IconURL,
		}
	}

	if err := r.dao.ReplaceRankTiers(ctx, slug, daoTiers); err != nil {
		return fmt.Errorf("r.dao.ReplaceRankTiers -> %w", err)
	}

	return nil
}

func (r *UnitRepository) ApplyReport(ctx context.Context, slug string, report domain.ScoreReport, deltas map[string]int) (domain.ScoreReport, error) {
	created, err := r.dao.InsertReport(ctx, r.reportDomainToDao(slug, report), deltas)
	if err != nil {
		return domain.ScoreReport{}, fmt.Errorf("r.dao.InsertReport -> %w", err)
	}

	return r.reportDaoToDomain(created), nil
}

func (r *UnitRepository) ReplaceReport(ctx context.Context, slug string, report domain.ScoreReport, deltas map[string]int) (domain.ScoreReport, error) {
	updated, err := r.dao.UpdateReport(ctx, r.reportDomainToDao(slug, report), deltas)
	if err != nil {
		if err == dao.ErrReportNotFound {
			return domain.ScoreReport{}, ErrReportNotFound
		}

		return domain.ScoreReport{}, fmt.Errorf("r.dao.UpdateReport -> %w", err)
	}

	return r.reportDaoToDomain(updated), nil
}

func (r *UnitRepository) RemoveReport(ctx context.Context, slug, id string, deltas map[string]int) error {
	if err := r.dao.DeleteReport(ctx, slug, id, deltas); err != nil {
		if err == dao.ErrReportNotFound {
			return ErrReportNotFound
		}

		return fmt.Errorf("r.dao.DeleteReport -> %w", err)
	}

	return nil
}

func (r *UnitRepository) FindReport(ctx context.Context, slug, id string) (domain.ScoreReport, error) {
	found, err := r.dao.FindReport(ctx, slug, id)
	if err != nil {
		if err == dao.ErrReportNotFound {
			return domain.ScoreReport{}, ErrReportNotFound
		}

		return domain.ScoreReport{}, fmt.Errorf("r.dao.FindReport -> %w", err)
	}

	return r.reportDaoToDomain(found), nil
}

func (r *UnitRepository) FindReports(ctx context.Context, slug string) ([]domain.ScoreReport, error) {
	found, err := r.dao.FindReports(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindReports -> %w", err)
	}

	reports := make([]domain.ScoreReport, len(found))
	for i, rep := range found {
		reports[i] = r.reportDaoToDomain(rep)
	}

	return reports, nil
}

func (r *UnitRepository) TopMembers(ctx context.Context, limit int) ([]domain.TopMember, error) {
	rows, err := r.dao.TopMembers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.TopMembers -> %w", err)
	}

	top := make([]domain.TopMember, len(rows))
	for i, row := range rows {
		top[i] = domain.TopMember{
			Member:   r.memberDaoToDomain(row.Member),
			UnitSlug: row.UnitSlug,
			UnitName: row.UnitName,
		}
	}

	return top, nil
}

func (r *UnitRepository) ResetMemberScores(ctx context.Context, slug string, scores map[string]int) error {
	if err := r.dao.ResetMemberScores(ctx, slug, scores); err != nil {
		return fmt.Errorf("r.dao.ResetMemberScores -> %w", err)
	}

	return nil
}

func (r *UnitRepository) unitDomainToDao(u domain.Unit) dao.Unit {
	return dao.Unit{
		Slug:         u.Slug,
		Name:         u.Name,
		Icon:         u.Icon,
		CardImageURL: u.CardImageURL,
		CardColor:    u.CardColor,
		PasswordHash: u.PasswordHash,
		Members:      r.membersDomainToDao(u.Slug, u.Members),
		Criteria:     r.criteriaDomainToDao(u.Slug, u.Criteria),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UnitRepository) unitDaoToDomain(u dao.Unit) domain.Unit {
	members := make([]domain.Member, len(u.Members))
	for i, m := range u.Members {
		members[i] = r.memberDaoToDomain(m)
	}

	criteria := make([]domain.ScoringCriterion, len(u.Criteria))
	for i, c := range u.Criteria {
		criteria[i] = r.criterionDaoToDomain(c)
	}

	overrides := make([]domain.RankTier, len(u.RankTiers))
	for i, t := range u.RankTiers {
		overrides[i] = domain.RankTier{
			Score:   t.Score,
			Name:    t.Name,
			IconURL: t.IconURL,
		}
	}

	return domain.Unit{
		Slug:          u.Slug,
		Name:          u.Name,
		Icon:          u.Icon,
		CardImageURL:  u.CardImageURL,
		CardColor:     u.CardColor,
		HasPassword:   u.PasswordHash != "",
		PasswordHash:  u.PasswordHash,
		Members:       members,
		Criteria:      criteria,
		RankOverrides: overrides,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (r *UnitRepository) membersDomainToDao(slug string, members []domain.Member) []dao.Member {
	daoMembers := make([]dao.Member, len(members))
	for i, m := range members {
		daoMembers[i] = r.memberDomainToDao(slug, m)
	}
	return daoMembers
}

func (r *UnitRepository) memberDomainToDao(slug string, m domain.Member) dao.Member {
	return dao.Member{
		UnitSlug:  slug,
		ID:        m.ID,
		Name:      m.Name,
		Age:       m.Age,
		Role:      m.Role,
		ClassName: m.ClassName,
		AvatarURL: m.AvatarURL,
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *UnitRepository) memberDaoToDomain(m dao.Member) domain.Member {
	return domain.Member{
		ID:        m.ID,
		Name:      m.Name,
		Age:       m.Age,
		Role:      m.Role,
		ClassName: m.ClassName,
		AvatarURL: m.AvatarURL,
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *UnitRepository) criteriaDomainToDao(slug string, criteria []domain.ScoringCriterion) []dao.Criterion {
	daoCriteria := make([]dao.Criterion, len(criteria))
	for i, c := range criteria {
		daoCriteria[i] = dao.Criterion{
			UnitSlug: slug,
			ID:       c.ID,
			Label:    c.Label,
			Points:   c.Points,
			Position: i,
		}
	}
	return daoCriteria
}

func (r *UnitRepository) criterionDaoToDomain(c dao.Criterion) domain.ScoringCriterion {
	return domain.ScoringCriterion{
		ID:     c.ID,
		Label:  c.Label,
		Points: c.Points,
	}
}

func (r *UnitRepository) reportDomainToDao(slug string, rep domain.ScoreReport) dao.ScoreReport {
	snaps := make([]dao.CriterionSnapshot, len(rep.Criteria))
	for i, c := range rep.Criteria {
		snaps[i] = dao.CriterionSnapshot{ID: c.ID, Label: c.Label, Points: c.Points}
	}

	entries := make([]dao.ScoreEntry, 0, len(rep.MemberScores))
	for memberID, entry := range rep.MemberScores {
		entries = append(entries, dao.ScoreEntry{
			ReportID:    rep.ID,
			MemberID:    memberID,
			Points:      entry.Points,
			Observation: entry.Observation,
			Checks:      entry.Checks,
		})
	}

	return dao.ScoreReport{
		ID:       rep.ID,
		UnitSlug: slug,
		Date:     rep.Date,
		Criteria: snaps,
		Entries:  entries,
	}
}

func (r *UnitRepository) reportDaoToDomain(rep dao.ScoreReport) domain.ScoreReport {
	snaps := make([]domain.CriterionSnapshot, len(rep.Criteria))
	for i, c := range rep.Criteria {
		snaps[i] = domain.CriterionSnapshot{ID: c.ID, Label: c.Label, Points: c.Points}
	}

	scores := make(map[string]domain.MemberScoreEntry, len(rep.Entries))
	for _, e := range rep.Entries {
		scores[e.MemberID] = domain.MemberScoreEntry{
			Checks:      e.Checks,
			Points:      e.Points,
			Observation: e.Observation,
		}
	}

	return domain.ScoreReport{
		ID:           rep.ID,
		Date:         rep.Date,
		Criteria:     snaps,
		MemberScores: scores,
		CreatedAt:    rep.CreatedAt,
		UpdatedAt:    rep.UpdatedAt,
	}
}
