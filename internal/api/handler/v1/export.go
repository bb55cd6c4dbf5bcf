package v1

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubescore/ranking-api/internal/api/handler/v1/response"
	"github.com/clubescore/ranking-api/internal/service"
)

type ExportService interface {
	RankingRows(ctx context.Context, slug string) ([][]string, error)
	HistoryRows(ctx context.Context, slug string) ([][]string, error)
}

type ExportHandler struct {
	svc ExportService
}

func NewExportHandler(svc ExportService) *ExportHandler {
	return &ExportHandler{
		svc: svc,
	}
}

// HandleExportRanking godoc
// @Summary      Download the unit ranking as CSV
// @Tags         export
// @Produce      text/csv
// @Param        slug   path      string true "unit slug"
// @Success      200 {string} string "CSV file"
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/export/ranking.csv [get]
// @Security     BearerAuth
func (h *ExportHandler) HandleExportRanking(ctx *gin.Context) {
	slug := ctx.Param("slug")

	rows, err := h.svc.RankingRows(ctx.Request.Context(), slug)
	if err != nil {
		renderExportErr(ctx, "v1.HandleExportRanking", err)

		return
	}

	writeCSV(ctx, slug+"-ranking.csv", rows)
}

// HandleExportHistory godoc
// @Summary      Download the unit report history as CSV
// @Tags         export
// @Produce      text/csv
// @Param        slug   path      string true "unit slug"
// @Success      200 {string} string "CSV file"
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/export/history.csv [get]
// @Security     BearerAuth
func (h *ExportHandler) HandleExportHistory(ctx *gin.Context) {
	slug := ctx.Param("slug")

	rows, err := h.svc.HistoryRows(ctx.Request.Context(), slug)
	if err != nil {
		renderExportErr(ctx, "v1.HandleExportHistory", err)

		return
	}

	writeCSV(ctx, slug+"-history.csv", rows)
}

func renderExportErr(ctx *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrUnitNotFound) {
		response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

		return
	}

	response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
}

func writeCSV(ctx *gin.Context, filename string, rows [][]string) {
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Status(http.StatusOK)

	w := csv.NewWriter(ctx.Writer)
	w.WriteAll(rows)
}
