package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubescore/ranking-api/internal/api/handler/v1/request"
	"github.com/clubescore/ranking-api/internal/api/handler/v1/response"
	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/service"
)

type UnitService interface {
	CreateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error)
	GetUnit(ctx context.Context, slug string) (domain.Unit, error)
	ListUnits(ctx context.Context) ([]domain.Unit, error)
	UpdateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error)
	DeleteUnit(ctx context.Context, slug string) error
	SetAccessPassword(ctx context.Context, slug, password string) error
	VerifyAccessPassword(ctx context.Context, slug, password string) error
	AddMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error)
	UpdateMember(ctx context.Context, slug string, member domain.Member) (domain.Member, error)
	RemoveMember(ctx context.Context, slug, id string) error
	AddCriterion(ctx context.Context, slug, label, rawPoints string) (domain.ScoringCriterion, error)
	UpdateCriterion(ctx context.Context, slug, id, label, rawPoints string) (domain.ScoringCriterion, error)
	RemoveCriterion(ctx context.Context, slug, id string) error
	SetRankOverrides(ctx context.Context, slug string, tiers []domain.RankTier) error
}

type UnitHandler struct {
	svc UnitService
}

func NewUnitHandler(svc UnitService) *UnitHandler {
	return &UnitHandler{
		svc: svc,
	}
}

// HandleListUnits godoc
// @Summary      List all units
// @Tags         units
// @Produce      json
// @Success      200 {array}  domain.Unit
// @Failure      500 {object} response.Err
// @Router       /units [get]
// @Security     BearerAuth
func (h *UnitHandler) HandleListUnits(ctx *gin.Context) {
	units, err := h.svc.ListUnits(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListUnits -> h.svc.ListUnits -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, units)
}

// HandleCreateUnit godoc
// @Summary      Create a unit
// @Tags         units
// @Produce      json
// @Param        request   body      request.CreateUnitRequest true "request body"
// @Success      201 {object} domain.Unit
// @Failure      400 {object} response.Err
// @Failure      409 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units [post]
// @Security     BearerAuth
func (h *UnitHandler) HandleCreateUnit(ctx *gin.Context) {
	var req request.CreateUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	unit, err := h.svc.CreateUnit(ctx.Request.Context(), domain.Unit{
		Name:         req.Name,
		Icon:         req.Icon,
		CardImageURL: req.CardImageURL,
		CardColor:    req.CardColor,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnitExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrUnitExists))

			return
		}

		err = fmt.Errorf("v1.HandleCreateUnit -> h.svc.CreateUnit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, unit)
}

// HandleGetUnit godoc
// @Summary      Get a unit by slug
// @Tags         units
// @Produce      json
// @Param        slug   path      string true "unit slug"
// @Success      200 {object} domain.Unit
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug} [get]
// @Security     BearerAuth
func (h *UnitHandler) HandleGetUnit(ctx *gin.Context) {
	unit, err := h.svc.GetUnit(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetUnit -> h.svc.GetUnit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, unit)
}

// HandleUpdateUnit godoc
// @Summary      Update a unit's presentation fields
// @Tags         units
// @Produce      json
// @Param        slug     path      string true "unit slug"
// @Param        request  body      request.UpdateUnitRequest true "request body"
// @Success      200 {object} domain.Unit
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug} [put]
// @Security     BearerAuth
func (h *UnitHandler) HandleUpdateUnit(ctx *gin.Context) {
	var req request.UpdateUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	unit, err := h.svc.UpdateUnit(ctx.Request.Context(), domain.Unit{
		Slug:         ctx.Param("slug"),
		Name:         req.Name,
		Icon:         req.Icon,
		CardImageURL: req.CardImageURL,
		CardColor:    req.CardColor,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateUnit -> h.svc.UpdateUnit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, unit)
}

// HandleDeleteUnit godoc
// @Summary      Delete a unit and all its data
// @Tags         units
// @Produce      json
// @Param        slug   path      string true "unit slug"
// @Success      204
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug} [delete]
// @Security     BearerAuth
func (h *UnitHandler) HandleDeleteUnit(ctx *gin.Context) {
	if err := h.svc.DeleteUnit(ctx.Request.Context(), ctx.Param("slug")); err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteUnit -> h.svc.DeleteUnit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleSetUnitPassword godoc
// @Summary      Set or clear the unit access password
// @Tags         units
// @Produce      json
// @Param        slug     path      string true "unit slug"
// @Param        request  body      request.SetUnitPasswordRequest true "request body"
// @Success      204
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/password [put]
// @Security     BearerAuth
func (h *UnitHandler) HandleSetUnitPassword(ctx *gin.Context) {
	var req request.SetUnitPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.SetAccessPassword(ctx.Request.Context(), ctx.Param("slug"), req.Password); err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleSetUnitPassword -> h.svc.SetAccessPassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleVerifyUnitPassword godoc
// @Summary      Verify the unit access password
// @Tags         units
// @Produce      json
// @Param        slug     path      string true "unit slug"
// @Param        request  body      request.VerifyUnitPasswordRequest true "request body"
// @Success      204
// @Failure      403 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/access [post]
// @Security     BearerAuth
func (h *UnitHandler) HandleVerifyUnitPassword(ctx *gin.Context) {
	var req request.VerifyUnitPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.VerifyAccessPassword(ctx.Request.Context(), ctx.Param("slug"), req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrUnitNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))
		case errors.Is(err, service.ErrWrongUnitPassword):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrWrongUnitPassword))
		default:
			err = fmt.Errorf("v1.HandleVerifyUnitPassword -> h.svc.VerifyAccessPassword -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleAddMember godoc
// @Summary      Add a member to a unit
// @Tags         members
// @Produce      json
// @Param        slug     path      string true "unit slug"
// @Param        request  body      request.AddMemberRequest true "request body"
// @Success      201 {object} domain.Member
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/members [post]
// @Security     BearerAuth
func (h *UnitHandler) HandleAddMember(ctx *gin.Context) {
	var req request.AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	member, err := h.svc.AddMember(ctx.Request.Context(), ctx.Param("slug"), domain.Member{
		Name:      req.Name,
		Age:       req.Age,
		Role:      req.Role,
		ClassName: req.ClassName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleAddMember -> h.svc.AddMember -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, member)
}

// HandleUpdateMember godoc
// @Summary      Update a member's fields
// @Tags         members
// @Produce      json
// @Param        slug      path      string true "unit slug"
// @Param        memberID  path      string true "member ID"
// @Param        request   body      request.UpdateMemberRequest true "request body"
// @Success      200 {object} domain.Member
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/members/{memberID} [put]
// @Security     BearerAuth
func (h *UnitHandler) HandleUpdateMember(ctx *gin.Context) {
	var req request.UpdateMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	member, err := h.svc.UpdateMember(ctx.Request.Context(), ctx.Param("slug"), domain.Member{
		ID:        ctx.Param("memberID"),
		Name:      req.Name,
		Age:       req.Age,
		Role:      req.Role,
		ClassName: req.ClassName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMemberNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateMember -> h.svc.UpdateMember -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, member)
}

// HandleDeleteMember godoc
// @Summary      Remove a member from the roster
// @Tags         members
// @Produce      json
// @Param        slug      path      string true "unit slug"
// @Param        memberID  path      string true "member ID"
// @Success      204
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/members/{memberID} [delete]
// @Security     BearerAuth
func (h *UnitHandler) HandleDeleteMember(ctx *gin.Context) {
	if err := h.svc.RemoveMember(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("memberID")); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMemberNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteMember -> h.svc.RemoveMember -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleAddCriterion godoc
// @Summary      Add a scoring criterion
// @Tags         criteria
// @Produce      json
// @Param        slug     path      string true "unit slug"
// @Param        request  body      request.AddCriterionRequest true "request body"
// @Success      201 {object} domain.ScoringCriterion
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/criteria [post]
// @Security     BearerAuth
func (h *UnitHandler) HandleAddCriterion(ctx *gin.Context) {
	var req request.AddCriterionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	criterion, err := h.svc.AddCriterion(ctx.Request.Context(), ctx.Param("slug"), req.Label, req.Points)
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleAddCriterion -> h.svc.AddCriterion -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, criterion)
}

// HandleUpdateCriterion godoc
// @Summary      Update a scoring criterion
// @Tags         criteria
// @Produce      json
// @Param        slug         path      string true "unit slug"
// @Param        criterionID  path      string true "criterion ID"
// @Param        request      body      request.UpdateCriterionRequest true "request body"
// @Success      200 {object} domain.ScoringCriterion
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/criteria/{criterionID} [put]
// @Security     BearerAuth
func (h *UnitHandler) HandleUpdateCriterion(ctx *gin.Context) {
	var req request.UpdateCriterionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	criterion, err := h.svc.UpdateCriterion(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("criterionID"), req.Label, req.Points)
	if err != nil {
		if errors.Is(err, service.ErrCriterionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrCriterionNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateCriterion -> h.svc.UpdateCriterion -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, criterion)
}

// HandleDeleteCriterion godoc
// @Summary      Remove a scoring criterion
// @Tags         criteria
// @Produce      json
// @Param        slug         path      string true "unit slug"
// @Param        criterionID  path      string true "criterion ID"
// @Success      204
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/criteria/{criterionID} [delete]
// @Security     BearerAuth
func (h *UnitHandler) HandleDeleteCriterion(ctx *gin.Context) {
	if err := h.svc.RemoveCriterion(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("criterionID")); err != nil {
		if errors.Is(err, service.ErrCriterionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrCriterionNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteCriterion -> h.svc.RemoveCriterion -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleSetRankOverrides godoc
// @Summary      Replace the unit's rank ladder overrides
// @Tags         ranks
// @Produce      json
// @Param        slug     path      string true "unit slug"
// @Param        request  body      request.SetRankOverridesRequest true "request body"
// @Success      204
// @Failure      400 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/ranks [put]
// @Security     BearerAuth
func (h *UnitHandler) HandleSetRankOverrides(ctx *gin.Context) {
	var req request.SetRankOverridesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	tiers := make([]domain.RankTier, len(req.Tiers))
	for i, t := range req.Tiers {
		tiers[i] = domain.RankTier{
			Score:   t.Score,
			Name:    t.Name,
			IconURL: t.IconURL,
		}
	}

	if err := h.svc.SetRankOverrides(ctx.Request.Context(), ctx.Param("slug"), tiers); err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUnitNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleSetRankOverrides -> h.svc.SetRankOverrides -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}
