package dao

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testDB *gorm.DB

// TestMain boots a throwaway Postgres in docker. Without docker the DAO
// tests skip instead of failing.
func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, skipping DAO tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=ranking_test",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Printf("could not start postgres container, skipping DAO tests: %v", err)
		os.Exit(m.Run())
	}

	dsn := fmt.Sprintf("host=localhost port=%v user=postgres password=secret dbname=ranking_test sslmode=disable",
		resource.GetPort("5432/tcp"))

	resource.Expire(120)
	pool.MaxWait = 60 * time.Second
	if err = pool.Retry(func() error {
		db, openErr := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if openErr != nil {
			return openErr
		}
		testDB = db

		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return dbErr
		}
		return sqlDB.Ping()
	}); err != nil {
		log.Printf("could not connect to postgres, skipping DAO tests: %v", err)
		testDB = nil
		os.Exit(m.Run())
	}

	if err = InitTables(testDB); err != nil {
		log.Fatalf("could not migrate tables: %v", err)
	}

	code := m.Run()

	_ = pool.Purge(resource)
	os.Exit(code)
}

func requireDB(t *testing.T) *UnitDAO {
	t.Helper()
	if testDB == nil {
		t.Skip("docker not available")
	}
	return NewUnitDAO(testDB)
}

func seedUnit(t *testing.T, d *UnitDAO, slug string) {
	t.Helper()
	_, err := d.Insert(context.Background(), Unit{
		Slug: slug,
		Name: slug,
		Members: []Member{
			{UnitSlug: slug, ID: "m1", Name: "Ana"},
			{UnitSlug: slug, ID: "m2", Name: "Bruno"},
		},
		Criteria: []Criterion{
			{UnitSlug: slug, ID: "present", Label: "Presença", Points: 5, Position: 0},
			{UnitSlug: slug, ID: "uniform", Label: "Uniforme", Points: 2, Position: 1},
		},
	})
	require.NoError(t, err)
}

func TestUnitDAO_InsertAndFind(t *testing.T) {
	d := requireDB(t)
	ctx := context.Background()

	seedUnit(t, d, "insert-find")

	unit, err := d.FindBySlug(ctx, "insert-find")
	require.NoError(t, err)
	assert.Equal(t, "insert-find", unit.Slug)
	assert.Len(t, unit.Members, 2)
	require.Len(t, unit.Criteria, 2)
	assert.Equal(t, "present", unit.Criteria[0].ID)

	_, err = d.Insert(ctx, Unit{Slug: "insert-find", Name: "dup"})
	assert.ErrorIs(t, err, ErrUnitExists)

	_, err = d.FindBySlug(ctx, "no-such-unit")
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestUnitDAO_UpdateAndDelete(t *testing.T) {
	d := requireDB(t)
	ctx := context.Background()

	seedUnit(t, d, "update-delete")

	updated, err := d.Update(ctx, Unit{Slug: "update-delete", Name: "Renamed", CardColor: "#ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, d.UpdatePassword(ctx, "update-delete", "hash"))
	unit, err := d.FindBySlug(ctx, "update-delete")
	require.NoError(t, err)
	assert.Equal(t, "hash", unit.PasswordHash)

	require.NoError(t, d.Delete(ctx, "update-delete"))
	_, err = d.FindBySlug(ctx, "update-delete")
	assert.ErrorIs(t, err, ErrUnitNotFound)

	assert.ErrorIs(t, d.Delete(ctx, "update-delete"), ErrUnitNotFound)
}

func TestUnitDAO_ReportLifecycle(t *testing.T) {
	d := requireDB(t)
	ctx := context.Background()

	seedUnit(t, d, "reports")

	report := ScoreReport{
		ID:       "r1",
		UnitSlug: "reports",
		Date:     time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Criteria: []CriterionSnapshot{
			{ID: "present", Label: "Presença", Points: 5},
		},
		Entries: []ScoreEntry{
			{ReportID: "r1", MemberID: "m1", Points: 5, Checks: map[string]bool{"present": true}},
			{ReportID: "r1", MemberID: "m2", Points: 5, Checks: map[string]bool{"present": true}},
		},
	}

	_, err := d.InsertReport(ctx, report, map[string]int{"m1": 5, "m2": 5})
	require.NoError(t, err)

	member, err := d.FindMember(ctx, "reports", "m1")
	require.NoError(t, err)
	assert.Equal(t, 5, member.Score)

	// Edit: m1 goes from 5 to 7, m2 is reversed entirely.
	report.Entries = []ScoreEntry{
		{ReportID: "r1", MemberID: "m1", Points: 7, Checks: map[string]bool{"present": true, "uniform": true}},
	}
	_, err = d.UpdateReport(ctx, report, map[string]int{"m1": 2, "m2": -5})
	require.NoError(t, err)

	found, err := d.FindReport(ctx, "reports", "r1")
	require.NoError(t, err)
	require.Len(t, found.Entries, 1)
	assert.Equal(t, 7, found.Entries[0].Points)

	member, err = d.FindMember(ctx, "reports", "m1")
	require.NoError(t, err)
	assert.Equal(t, 7, member.Score)
	member, err = d.FindMember(ctx, "reports", "m2")
	require.NoError(t, err)
	assert.Equal(t, 0, member.Score)

	require.NoError(t, d.DeleteReport(ctx, "reports", "r1", map[string]int{"m1": -7}))

	member, err = d.FindMember(ctx, "reports", "m1")
	require.NoError(t, err)
	assert.Equal(t, 0, member.Score)

	_, err = d.FindReport(ctx, "reports", "r1")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestUnitDAO_DeltasSkipDepartedMembers(t *testing.T) {
	d := requireDB(t)
	ctx := context.Background()

	seedUnit(t, d, "departed")

	report := ScoreReport{
		ID:       "r-departed",
		UnitSlug: "departed",
		Date:     time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Entries: []ScoreEntry{
			{ReportID: "r-departed", MemberID: "m1", Points: 5},
			{ReportID: "r-departed", MemberID: "ghost", Points: 5},
		},
	}

	// "ghost" never existed on the roster; the delta must be a no-op.
	_, err := d.InsertReport(ctx, report, map[string]int{"m1": 5, "ghost": 5})
	require.NoError(t, err)

	member, err := d.FindMember(ctx, "departed", "m1")
	require.NoError(t, err)
	assert.Equal(t, 5, member.Score)
}

func TestUnitDAO_FindReportsOrder(t *testing.T) {
	d := requireDB(t)
	ctx := context.Background()

	seedUnit(t, d, "history")

	older := ScoreReport{ID: "h1", UnitSlug: "history", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	newer := ScoreReport{ID: "h2", UnitSlug: "history", Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)}

	_, err := d.InsertReport(ctx, older, nil)
	require.NoError(t, err)
	_, err = d.InsertReport(ctx, newer, nil)
	require.NoError(t, err)

	reports, err := d.FindReports(ctx, "history")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "h2", reports[0].ID)
	assert.Equal(t, "h1", reports[1].ID)
}

func TestUnitDAO_TopMembersAndReset(t *testing.T) {
	d := requireDB(t)
	ctx := context.Background()

	seedUnit(t, d, "top-a")
	seedUnit(t, d, "top-b")

	require.NoError(t, d.ResetMemberScores(ctx, "top-a", map[string]int{"m1": 40, "m2": 10}))
	require.NoError(t, d.ResetMemberScores(ctx, "top-b", map[string]int{"m1": 25}))

	rows, err := d.TopMembers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 40, rows[0].Score)
	assert.Equal(t, "top-a", rows[0].UnitSlug)
	assert.Equal(t, 25, rows[1].Score)
	assert.Equal(t, "top-b", rows[1].UnitSlug)

	// m2 of top-b was absent from the reset map and must be zeroed.
	member, err := d.FindMember(ctx, "top-b", "m2")
	require.NoError(t, err)
	assert.Equal(t, 0, member.Score)
}

func TestUnitDAO_RankTiers(t *testing.T) {
	d := requireDB(t)
	ctx := context.Background()

	seedUnit(t, d, "tiers")

	tiers := []RankTier{
		{UnitSlug: "tiers", Name: "Explorador", Score: 20},
		{UnitSlug: "tiers", Name: "Veterano", Score: 50},
	}
	require.NoError(t, d.ReplaceRankTiers(ctx, "tiers", tiers))

	unit, err := d.FindBySlug(ctx, "tiers")
	require.NoError(t, err)
	assert.Len(t, unit.RankTiers, 2)

	require.NoError(t, d.ReplaceRankTiers(ctx, "tiers", nil))
	unit, err = d.FindBySlug(ctx, "tiers")
	require.NoError(t, err)
	assert.Empty(t, unit.RankTiers)
}
