package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubescore/ranking-api/internal/api/handler/v1/request"
	"github.com/clubescore/ranking-api/internal/api/handler/v1/response"
	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/service"
)

type ScoringService interface {
	CreateReport(ctx context.Context, slug string, sub service.ReportSubmission) (domain.ScoreReport, error)
	EditReport(ctx context.Context, slug, id string, sub service.ReportSubmission) (domain.ScoreReport, error)
	DeleteReport(ctx context.Context, slug, id string) error
	GetReport(ctx context.Context, slug, id string) (domain.ScoreReport, error)
	ListReports(ctx context.Context, slug string) ([]domain.ScoreReport, error)
	Ranking(ctx context.Context, slug string) ([]domain.RankedMember, error)
	TopMembers(ctx context.Context, limit int) ([]domain.TopMember, error)
	RebuildScores(ctx context.Context, slug string) error
}

// RankingNotifier is told after every mutation that changes a unit's
// scores, so live subscribers see the refreshed ranking.
type RankingNotifier interface {
	NotifyRankingChanged(slug string)
}

type ScoringHandler struct {
	svc      ScoringService
	notifier RankingNotifier
}

func NewScoringHandler(svc ScoringService, notifier RankingNotifier) *ScoringHandler {
	return &ScoringHandler{
		svc:      svc,
		notifier: notifier,
	}
}

// HandleCreateReport godoc
// @Summary      Submit a score report and apply it to the ledger
// @Tags         reports
// @Produce      json
// @Param        slug     path      string true "unit slug"
// @Param        request  body      request.CreateReportRequest true "request body"
// @Success      201 {object} domain.ScoreReport
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/reports [post]
// @Security     BearerAuth
func (h *ScoringHandler) HandleCreateReport(ctx *gin.Context) {
	var req request.CreateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	slug := ctx.Param("slug")
	report, err := h.svc.CreateReport(ctx.Request.Context(), slug, toSubmission(req.Date, req.Members))
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleCreateReport -> h.svc.CreateReport -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	h.notifier.NotifyRankingChanged(slug)

	ctx.JSON(http.StatusCreated, report)
}

// HandleListReports godoc
// @Summary      List a unit's report history, most recent first
// @Tags         reports
// @Produce      json
// @Param        slug   path      string true "unit slug"
// @Success      200 {array}  domain.ScoreReport
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/reports [get]
// @Security     BearerAuth
func (h *ScoringHandler) HandleListReports(ctx *gin.Context) {
	reports, err := h.svc.ListReports(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		err = fmt.Errorf("v1.HandleListReports -> h.svc.ListReports -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, reports)
}

// HandleGetReport godoc
// @Summary      Get one score report
// @Tags         reports
// @Produce      json
// @Param        slug      path      string true "unit slug"
// @Param        reportID  path      string true "report ID"
// @Success      200 {object} domain.ScoreReport
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/reports/{reportID} [get]
// @Security     BearerAuth
func (h *ScoringHandler) HandleGetReport(ctx *gin.Context) {
	report, err := h.svc.GetReport(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("reportID"))
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrReportNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetReport -> h.svc.GetReport -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, report)
}

// HandleUpdateReport godoc
// @Summary      Edit a report, reversing its previous effect on the ledger
// @Tags         reports
// @Produce      json
// @Param        slug      path      string true "unit slug"
// @Param        reportID  path      string true "report ID"
// @Param        request   body      request.UpdateReportRequest true "request body"
// @Success      200 {object} domain.ScoreReport
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/reports/{reportID} [put]
// @Security     BearerAuth
func (h *ScoringHandler) HandleUpdateReport(ctx *gin.Context) {
	var req request.UpdateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	slug := ctx.Param("slug")
	report, err := h.svc.EditReport(ctx.Request.Context(), slug, ctx.Param("reportID"), toSubmission(req.Date, req.Members))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnitNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))
		case errors.Is(err, service.ErrReportNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrReportNotFound))
		default:
			err = fmt.Errorf("v1.HandleUpdateReport -> h.svc.EditReport -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	h.notifier.NotifyRankingChanged(slug)

	ctx.JSON(http.StatusOK, report)
}

// HandleDeleteReport godoc
// @Summary      Delete a report, reversing its effect on the ledger
// @Tags         reports
// @Produce      json
// @Param        slug      path      string true "unit slug"
// @Param        reportID  path      string true "report ID"
// @Success      204
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/reports/{reportID} [delete]
// @Security     BearerAuth
func (h *ScoringHandler) HandleDeleteReport(ctx *gin.Context) {
	slug := ctx.Param("slug")
	if err := h.svc.DeleteReport(ctx.Request.Context(), slug, ctx.Param("reportID")); err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrReportNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteReport -> h.svc.DeleteReport -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	h.notifier.NotifyRankingChanged(slug)

	ctx.Status(http.StatusNoContent)
}

// HandleGetRanking godoc
// @Summary      Get a unit's ranking, best score first
// @Tags         ranking
// @Produce      json
// @Param        slug   path      string true "unit slug"
// @Success      200 {array}  domain.RankedMember
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/ranking [get]
// @Security     BearerAuth
func (h *ScoringHandler) HandleGetRanking(ctx *gin.Context) {
	ranked, err := h.svc.Ranking(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetRanking -> h.svc.Ranking -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, ranked)
}

// HandleGetTopMembers godoc
// @Summary      Get the cross-unit top members
// @Tags         ranking
// @Produce      json
// @Param        limit  query     int false "number of rows (default 10)"
// @Success      200 {array}  domain.TopMember
// @Failure      500 {object} response.Err
// @Router       /ranking/top [get]
// @Security     BearerAuth
func (h *ScoringHandler) HandleGetTopMembers(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	top, err := h.svc.TopMembers(ctx.Request.Context(), limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTopMembers -> h.svc.TopMembers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, top)
}

// HandleRebuildScores godoc
// @Summary      Replay the report history into the ledger
// @Tags         maintenance
// @Produce      json
// @Param        slug   path      string true "unit slug"
// @Success      204
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/scores/rebuild [post]
// @Security     BearerAuth
func (h *ScoringHandler) HandleRebuildScores(ctx *gin.Context) {
	slug := ctx.Param("slug")
	if err := h.svc.RebuildScores(ctx.Request.Context(), slug); err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleRebuildScores -> h.svc.RebuildScores -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	h.notifier.NotifyRankingChanged(slug)

	ctx.Status(http.StatusNoContent)
}

func toSubmission(date string, members map[string]request.MemberScoreRequest) service.ReportSubmission {
	// Validation already checked the format.
	parsed, _ := time.Parse("2006-01-02", date)

	sub := service.ReportSubmission{
		Date:    parsed,
		Members: make(map[string]service.MemberSubmission, len(members)),
	}
	for id, m := range members {
		sub.Members[id] = service.MemberSubmission{
			Checks:      m.Checks,
			Observation: m.Observation,
		}
	}

	return sub
}
