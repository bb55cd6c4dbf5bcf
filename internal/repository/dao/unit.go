package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUnitExists        = errors.New("unit already exists")
	ErrUnitNotFound      = errors.New("unit not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrCriterionNotFound = errors.New("criterion not found")
	ErrReportNotFound    = errors.New("report not found")
)

type Unit struct {
	Slug string `gorm:"primaryKey"`
	Name string `gorm:"not null"`

	Icon         string
	CardImageURL string
	CardColor    string
	PasswordHash string

	Members   []Member      `gorm:"foreignKey:UnitSlug;constraint:OnDelete:CASCADE"`
	Criteria  []Criterion   `gorm:"foreignKey:UnitSlug;constraint:OnDelete:CASCADE"`
	RankTiers []RankTier    `gorm:"foreignKey:UnitSlug;constraint:OnDelete:CASCADE"`
	Reports   []ScoreReport `gorm:"foreignKey:UnitSlug;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Member struct {
	UnitSlug string `gorm:"primaryKey"`
	ID       string `gorm:"primaryKey"`

	Name      string `gorm:"not null"`
	Age       int
	Role      string
	ClassName string
	AvatarURL string
	Score     int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Criterion struct {
	UnitSlug string `gorm:"primaryKey"`
	ID       string `gorm:"primaryKey"`

	Label    string `gorm:"not null"`
	Points   int    `gorm:"not null"`
	Position int    `gorm:"not null;default:0"` // display order only
}

type RankTier struct {
	UnitSlug string `gorm:"primaryKey"`
	Name     string `gorm:"primaryKey"`

	Score   int `gorm:"not null"`
	IconURL string
}

// CriterionSnapshot is stored inside the report row as JSON. It freezes
// labels and point values so old reports stay readable after the live
// criteria change.
type CriterionSnapshot struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

type ScoreReport struct {
	ID       string `gorm:"primaryKey"`
	UnitSlug string `gorm:"index;not null"`

	Date     time.Time           `gorm:"not null"`
	Criteria []CriterionSnapshot `gorm:"serializer:json;type:jsonb"`

	Entries []ScoreEntry `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ScoreEntry struct {
	ID       uint   `gorm:"primaryKey"`
	ReportID string `gorm:"index;not null"`

	MemberID    string          `gorm:"index;not null"`
	Points      int             `gorm:"not null"`
	Observation string
	Checks      map[string]bool `gorm:"serializer:json;type:jsonb"`
}

// TopMemberRow is the scan target for the cross-unit ranking query.
type TopMemberRow struct {
	Member   `gorm:"embedded"`
	UnitName string
}

type UnitDAO struct {
	db *gorm.DB
}

func NewUnitDAO(db *gorm.DB) *UnitDAO {
	return &UnitDAO{
		db: db,
	}
}

func (d *UnitDAO) Insert(ctx context.Context, unit Unit) (Unit, error) {
	result := d.db.WithContext(ctx).Create(&unit)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Unit{}, ErrUnitExists
		}

		return Unit{}, result.Error
	}

	return unit, nil
}

func (d *UnitDAO) FindBySlug(ctx context.Context, slug string) (Unit, error) {
	var unit Unit

	result := d.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("members.created_at, members.id")
		}).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB {
			return db.Order("criteria.position")
		}).
		Preload("RankTiers").
		First(&unit, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Unit{}, ErrUnitNotFound
		}

		return Unit{}, result.Error
	}

	return unit, nil
}

func (d *UnitDAO) FindAll(ctx context.Context) ([]Unit, error) {
	var units []Unit

	result := d.db.WithContext(ctx).
		Preload("Members").
		Order("name").
		Find(&units)
	if result.Error != nil {
		return nil, result.Error
	}

	return units, nil
}

func (d *UnitDAO) Update(ctx context.Context, unit Unit) (Unit, error) {
	result := d.db.WithContext(ctx).
		Model(&Unit{Slug: unit.Slug}).
		Select("Name", "Icon", "CardImageURL", "CardColor").
		Updates(unit)
	if result.Error != nil {
		return Unit{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Unit{}, ErrUnitNotFound
	}

	return d.FindBySlug(ctx, unit.Slug)
}

func (d *UnitDAO) UpdatePassword(ctx context.Context, slug, passwordHash string) error {
	result := d.db.WithContext(ctx).
		Model(&Unit{Slug: slug}).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnitNotFound
	}

	return nil
}

func (d *UnitDAO) Delete(ctx context.Context, slug string) error {
	result := d.db.WithContext(ctx).Delete(&Unit{Slug: slug})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnitNotFound
	}

	return nil
}

func (d *UnitDAO) InsertMember(ctx context.Context, member Member) (Member, error) {
	result := d.db.WithContext(ctx).Create(&member)
	if result.Error != nil {
		return Member{}, result.Error
	}

	return member, nil
}

func (d *UnitDAO) FindMember(ctx context.Context, slug, id string) (Member, error) {
	var member Member

	result := d.db.WithContext(ctx).
		First(&member, "unit_slug = ? AND id = ?", slug, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Member{}, ErrMemberNotFound
		}

		return Member{}, result.Error
	}

	return member, nil
}

func (d *UnitDAO) UpdateMember(ctx context.Context, member Member) (Member, error) {
	result := d.db.WithContext(ctx).
		Model(&Member{UnitSlug: member.UnitSlug, ID: member.ID}).
		Select("Name", "Age", "Role", "ClassName", "AvatarURL").
		Updates(member)
	if result.Error != nil {
		return Member{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Member{}, ErrMemberNotFound
	}

	return d.FindMember(ctx, member.UnitSlug, member.ID)
}

func (d *UnitDAO) DeleteMember(ctx context.Context, slug, id string) error {
	result := d.db.WithContext(ctx).Delete(&Member{UnitSlug: slug, ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}

func (d *UnitDAO) InsertCriterion(ctx context.Context, criterion Criterion) (Criterion, error) {
	result := d.db.WithContext(ctx).Create(&criterion)
	if result.Error != nil {
		return Criterion{}, result.Error
	}

	return criterion, nil
}

func (d *UnitDAO) UpdateCriterion(ctx context.Context, criterion Criterion) (Criterion, error) {
	result := d.db.WithContext(ctx).
		Model(&Criterion{UnitSlug: criterion.UnitSlug, ID: criterion.ID}).
		Select("Label", "Points").
		Updates(criterion)
	if result.Error != nil {
		return Criterion{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Criterion{}, ErrCriterionNotFound
	}

	return criterion, nil
}

func (d *UnitDAO) DeleteCriterion(ctx context.Context, slug, id string) error {
	result := d.db.WithContext(ctx).Delete(&Criterion{UnitSlug: slug, ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCriterionNotFound
	}

	return nil
}

func (d *UnitDAO) ReplaceRankTiers(ctx context.Context, slug string, tiers []RankTier) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_slug = ?", slug).Delete(&RankTier{}).Error; err != nil {
			return err
		}
		if len(tiers) == 0 {
			return nil
		}

		return tx.Create(&tiers).Error
	})
}

// InsertReport persists the report and applies the member score deltas in
// one transaction, so the ledger and the history never diverge.
func (d *UnitDAO) InsertReport(ctx context.Context, report ScoreReport, deltas map[string]int) (ScoreReport, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		return applyDeltas(tx, report.UnitSlug, deltas)
	})
	if err != nil {
		return ScoreReport{}, err
	}

	return report, nil
}

// UpdateReport swaps the report content and applies the net score deltas
// (reversal of the old entries plus application of the new ones, already
// combined by the caller) in one transaction.
func (d *UnitDAO) UpdateReport(ctx context.Context, report ScoreReport, deltas map[string]int) (ScoreReport, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ScoreReport{ID: report.ID}).
			Select("Date", "Criteria").
			Updates(report)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrReportNotFound
		}

		if err := tx.Where("report_id = ?", report.ID).Delete(&ScoreEntry{}).Error; err != nil {
			return err
		}
		if len(report.Entries) > 0 {
			if err := tx.Create(&report.Entries).Error; err != nil {
				return err
			}
		}

		return applyDeltas(tx, report.UnitSlug, deltas)
	})
	if err != nil {
		return ScoreReport{}, err
	}

	return d.FindReport(ctx, report.UnitSlug, report.ID)
}

// DeleteReport removes the report and reverses its ledger effect (the
// caller passes the already-negated deltas) in one transaction.
func (d *UnitDAO) DeleteReport(ctx context.Context, slug, id string, deltas map[string]int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("unit_slug = ?", slug).Delete(&ScoreReport{ID: id})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrReportNotFound
		}

		if err := tx.Where("report_id = ?", id).Delete(&ScoreEntry{}).Error; err != nil {
			return err
		}

		return applyDeltas(tx, slug, deltas)
	})
}

func (d *UnitDAO) FindReport(ctx context.Context, slug, id string) (ScoreReport, error) {
	var report ScoreReport

	result := d.db.WithContext(ctx).
		Preload("Entries").
		First(&report, "unit_slug = ? AND id = ?", slug, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ScoreReport{}, ErrReportNotFound
		}

		return ScoreReport{}, result.Error
	}

	return report, nil
}

func (d *UnitDAO) FindReports(ctx context.Context, slug string) ([]ScoreReport, error) {
	var reports []ScoreReport

	result := d.db.WithContext(ctx).
		Preload("Entries").
		Where("unit_slug = ?", slug).
		Order("date DESC, created_at DESC").
		Find(&reports)
	if result.Error != nil {
		return nil, result.Error
	}

	return reports, nil
}

func (d *UnitDAO) TopMembers(ctx context.Context, limit int) ([]TopMemberRow, error) {
	var rows []TopMemberRow

	result := d.db.WithContext(ctx).
		Table("members").
		Select("members.*, units.name AS unit_name").
		Joins("JOIN units ON units.slug = members.unit_slug").
		Order("members.score DESC, members.name").
		Limit(limit).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ResetMemberScores overwrites every ledger entry of the unit with the
// given absolute values; members absent from the map go back to zero.
// Used by history replay.
func (d *UnitDAO) ResetMemberScores(ctx context.Context, slug string, scores map[string]int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Member{}).
			Where("unit_slug = ?", slug).
			Update("score", 0).Error; err != nil {
			return err
		}

		for id, score := range scores {
			if score == 0 {
				continue
			}
			if err := tx.Model(&Member{}).
				Where("unit_slug = ? AND id = ?", slug, id).
				Update("score", score).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// applyDeltas adds the signed deltas to each referenced member's running
// score. A delta for a member id not on the roster matches zero rows and
// is skipped silently; reports may legitimately reference members removed
// after the fact.
func applyDeltas(tx *gorm.DB, slug string, deltas map[string]int) error {
	for id, delta := range deltas {
		if delta == 0 {
			continue
		}

		result := tx.Model(&Member{}).
			Where("unit_slug = ? AND id = ?", slug, id).
			Update("score", gorm.Expr("score + ?", delta))
		if result.Error != nil {
			return result.Error
		}
	}

	return nil
}
