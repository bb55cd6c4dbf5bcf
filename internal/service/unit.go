package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/repository"
)

var (
	ErrUnitExists        = repository.ErrUnitExists
	ErrUnitNotFound      = repository.ErrUnitNotFound
	ErrMemberNotFound    = repository.ErrMemberNotFound
	ErrCriterionNotFound = repository.ErrCriterionNotFound
	ErrReportNotFound    = repository.ErrReportNotFound
	ErrWrongUnitPassword = errors.New("wrong unit access password")
)

type UnitRepository interface {
	Create(ctx context.Context, unit domain.Unit) (domain.Unit, error)
	FindBySlug(ctx context.Context, slug string) (domain.Unit, error)
	FindAll(ctx context.Context) ([]domain.Unit, error)
	Update(ctx context.Context, unit domain.Unit) (domain.Unit, error)
	UpdatePassword(ctx context.Context, slug, passwordHash string) error
	Delete(ctx context.Context, slug string) error
	AddMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error)
	FindMember(ctx context.Context, slug, id string) (domain.Member, error)
	UpdateMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error)
	DeleteMember(ctx context.Context, slug, id string) error
	AddCriterion(ctx context.Context, slug string, criterion domain.ScoringCriterion, position int) (domain.ScoringCriterion, error)
	UpdateCriterion(ctx context.Context, slug string, criterion domain.ScoringCriterion) (domain.ScoringCriterion, error)
	DeleteCriterion(ctx context.Context, slug, id string) error
	ReplaceRankOverrides(ctx context.Context, slug string, tiers []domain.RankTier) error
	ApplyReport(ctx context.Context, slug string, report domain.ScoreReport, deltas map[string]int) (domain.ScoreReport, error)
	ReplaceReport(ctx context.Context, slug string, report domain.ScoreReport, deltas map[string]int) (domain.ScoreReport, error)
	RemoveReport(ctx context.Context, slug, id string, deltas map[string]int) error
	FindReport(ctx context.Context, slug, id string) (domain.ScoreReport, error)
	FindReports(ctx context.Context, slug string) ([]domain.ScoreReport, error)
	TopMembers(ctx context.Context, limit int) ([]domain.TopMember, error)
	ResetMemberScores(ctx context.Context, slug string, scores map[string]int) error
}

type UnitService struct {
	repo UnitRepository
}

func NewUnitService(repo UnitRepository) *UnitService {
	return &UnitService{
		repo: repo,
	}
}

func (s *UnitService) CreateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	unit.Slug = domain.Slugify(unit.Name)
	if len(unit.Criteria) == 0 {
		unit.Criteria = domain.DefaultScoringCriteria()
	}

	created, err := s.repo.Create(ctx, unit)
	if err != nil {
		if errors.Is(err, repository.ErrUnitExists) {
			return domain.Unit{}, ErrUnitExists
		}

		return domain.Unit{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *UnitService) GetUnit(ctx context.Context, slug string) (domain.Unit, error) {
	unit, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			return domain.Unit{}, ErrUnitNotFound
		}

		return domain.Unit{}, fmt.Errorf("s.repo.FindBySlug -> %w", err)
	}

	return unit, nil
}

func (s *UnitService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	units, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return units, nil
}

func (s *UnitService) UpdateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	updated, err := s.repo.Update(ctx, unit)
	if err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			return domain.Unit{}, ErrUnitNotFound
		}

		return domain.Unit{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *UnitService) DeleteUnit(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			return ErrUnitNotFound
		}

		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// SetAccessPassword stores a bcrypt hash of the optional unit access
// password. An empty password clears the gate.
func (s *UnitService) SetAccessPassword(ctx context.Context, slug, password string) error {
	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
		}
		hash = string(h)
	}

	if err := s.repo.UpdatePassword(ctx, slug, hash); err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			return ErrUnitNotFound
		}

		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	return nil
}

// VerifyAccessPassword checks the unit gate. Units without a password are
// always open. The comparison is bcrypt's constant-time check, never a
// plaintext equality.
func (s *UnitService) VerifyAccessPassword(ctx context.Context, slug, password string) error {
	unit, err := s.GetUnit(ctx, slug)
	if err != nil {
		return err
	}

	if !unit.HasPassword {
		return nil
	}

	if err = bcrypt.CompareHashAndPassword([]byte(unit.PasswordHash), []byte(password)); err != nil {
		return ErrWrongUnitPassword
	}

	return nil
}

func (s *UnitService) AddMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error) {
	if _, err := s.GetUnit(ctx, slug); err != nil {
		return domain.Member{}, err
	}

	member.ID = domain.NewTimeID(time.Now())
	member.Score = 0

	created, err := s.repo.AddMember(ctx, slug, member)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.repo.AddMember -> %w", err)
	}

	return created, nil
}

func (s *UnitService) UpdateMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error) {
	updated, err := s.repo.UpdateMember(ctx, slug, member)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return domain.Member{}, ErrMemberNotFound
		}

		return domain.Member{}, fmt.Errorf("s.repo.UpdateMember -> %w", err)
	}

	return updated, nil
}

// RemoveMember drops the member from the roster. Report entries that
// reference the member are kept; history outlives the roster.
func (s *UnitService) RemoveMember(ctx context.Context, slug, id string) error {
	if err := s.repo.DeleteMember(ctx, slug, id); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}

		return fmt.Errorf("s.repo.DeleteMember -> %w", err)
	}

	return nil
}

func (s *UnitService) AddCriterion(ctx context.Context, slug, label, rawPoints string) (domain.ScoringCriterion, error) {
	unit, err := s.GetUnit(ctx, slug)
	if err != nil {
		return domain.ScoringCriterion{}, err
	}

	criterion := domain.ScoringCriterion{
		ID:     newCriterionID(label),
		Label:  label,
		Points: coercePoints(rawPoints),
	}

	created, err := s.repo.AddCriterion(ctx, slug, criterion, len(unit.Criteria))
	if err != nil {
		return domain.ScoringCriterion{}, fmt.Errorf("s.repo.AddCriterion -> %w", err)
	}

	return created, nil
}

func (s *UnitService) UpdateCriterion(ctx context.Context, slug, id, label, rawPoints string) (domain.ScoringCriterion, error) {
	updated, err := s.repo.UpdateCriterion(ctx, slug, domain.ScoringCriterion{
		ID:     id,
		Label:  label,
		Points: coercePoints(rawPoints),
	})
	if err != nil {
		if errors.Is(err, repository.ErrCriterionNotFound) {
			return domain.ScoringCriterion{}, ErrCriterionNotFound
		}

		return domain.ScoringCriterion{}, fmt.Errorf("s.repo.UpdateCriterion -> %w", err)
	}

	return updated, nil
}

// RemoveCriterion deletes a criterion from the live set. Stored reports
// carry their own criteria snapshot, so history is untouched.
func (s *UnitService) RemoveCriterion(ctx context.Context, slug, id string) error {
	if err := s.repo.DeleteCriterion(ctx, slug, id); err != nil {
		if errors.Is(err, repository.ErrCriterionNotFound) {
			return ErrCriterionNotFound
		}

		return fmt.Errorf("s.repo.DeleteCriterion -> %w", err)
	}

	return nil
}

func (s *UnitService) SetRankOverrides(ctx context.Context, slug string, tiers []domain.RankTier) error {
	if _, err := s.GetUnit(ctx, slug); err != nil {
		return err
	}

	if err := s.repo.ReplaceRankOverrides(ctx, slug, tiers); err != nil {
		return fmt.Errorf("s.repo.ReplaceRankOverrides -> %w", err)
	}

	return nil
}

// coercePoints parses the point value typed into the settings form.
// Unparseable input becomes 0; settings edits never reject.
func coercePoints(raw string) int {
	points, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return points
}

func newCriterionID(label string) string {
	slug := domain.Slugify(label)
	if slug == "" {
		slug = "criterion"
	}
	return slug + "-" + domain.NewTimeID(time.Now())
}
