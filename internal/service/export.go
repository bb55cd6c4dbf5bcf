package service

import (
	"context"
	"fmt"
	"strconv"
)

type ExportService struct {
	units   *UnitService
	scoring *ScoringService
}

func NewExportService(units *UnitService, scoring *ScoringService) *ExportService {
	return &ExportService{
		units:   units,
		scoring: scoring,
	}
}

// RankingRows builds the ranking export: a header row followed by one row
// per member, best score first.
func (s *ExportService) RankingRows(ctx context.Context, slug string) ([][]string, error) {
	ranked, err := s.scoring.Ranking(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("s.scoring.Ranking -> %w", err)
	}

	rows := make([][]string, 0, len(ranked)+1)
	rows = append(rows, []string{"Name", "Age", "Role", "Class", "Score", "Rank"})
	for _, rm := range ranked {
		rows = append(rows, []string{
			rm.Name,
			strconv.Itoa(rm.Age),
			rm.Role,
			rm.ClassName,
			strconv.Itoa(rm.Score),
			rm.Rank.Name,
		})
	}

	return rows, nil
}

// HistoryRows builds the history export: one row per member per report.
// Criterion columns are the union of every report's snapshot, in order of
// first appearance, so old reports keep their retired criteria visible.
func (s *ExportService) HistoryRows(ctx context.Context, slug string) ([][]string, error) {
	unit, err := s.units.GetUnit(ctx, slug)
	if err != nil {
		return nil, err
	}

	reports, err := s.scoring.ListReports(ctx, slug)
	if err != nil {
		return nil, err
	}

	var criterionIDs []string
	labels := make(map[string]string)
	for _, report := range reports {
		for _, snap := range report.Criteria {
			if _, ok := labels[snap.ID]; !ok {
				criterionIDs = append(criterionIDs, snap.ID)
				labels[snap.ID] = snap.Label
			}
		}
	}

	header := []string{"Date", "Member", "Points"}
	for _, id := range criterionIDs {
		header = append(header, labels[id])
	}
	header = append(header, "Observation")

	rows := [][]string{header}
	for _, report := range reports {
		date := report.Date.Format("2006-01-02")
		for _, m := range unit.Members {
			entry, ok := report.MemberScores[m.ID]
			if !ok {
				continue
			}

			row := []string{date, m.Name, strconv.Itoa(entry.Points)}
			for _, id := range criterionIDs {
				row = append(row, checkMark(entry.Checks[id]))
			}
			row = append(row, entry.Observation)

			rows = append(rows, row)
		}
	}

	return rows, nil
}

func checkMark(checked bool) string {
	if checked {
		return "x"
	}
	return ""
}
