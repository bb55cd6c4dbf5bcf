package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_RankingRows(t *testing.T) {
	unit := testUnit()
	unit.Members[0].Score = 25
	unit.Members[0].Age = 11
	unit.Members[1].Score = 5
	repo := newMemoryUnitRepository(unit)
	svc := NewExportService(NewUnitService(repo), NewScoringService(repo))

	rows, err := svc.RankingRows(context.Background(), "falcons")

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Age", "Role", "Class", "Score", "Rank"}, rows[0])
	assert.Equal(t, []string{"Ana", "11", "", "", "25", "Cabo"}, rows[1])
	assert.Equal(t, []string{"Bruno", "0", "", "", "5", "Recruta"}, rows[2])
}

func TestExportService_HistoryRows(t *testing.T) {
	repo := newMemoryUnitRepository(testUnit())
	scoring := NewScoringService(repo)
	svc := NewExportService(NewUnitService(repo), scoring)
	ctx := context.Background()

	_, err := scoring.CreateReport(ctx, "falcons", ReportSubmission{
		Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Members: map[string]MemberSubmission{
			"m1": {Checks: map[string]bool{"present": true, "behavior": true}, Observation: "talked back"},
			"m2": {Checks: map[string]bool{"present": true}},
		},
	})
	require.NoError(t, err)

	rows, err := svc.HistoryRows(ctx, "falcons")

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Member", "Points", "Presença", "Uniforme", "Comportamento", "Observation"}, rows[0])
	assert.Equal(t, []string{"2025-03-08", "Ana", "3", "x", "", "x", "talked back"}, rows[1])
	assert.Equal(t, []string{"2025-03-08", "Bruno", "5", "x", "", "", ""}, rows[2])
}
