package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubescore/ranking-api/internal/api/handler/v1/response"
	"github.com/clubescore/ranking-api/internal/api/middleware"
	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/service"
)

var errMissingAdminID = errors.New("admin id missing from request context")

type AdminService interface {
	GetAdmin(ctx context.Context, id uint) (domain.Admin, error)
}

type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{
		svc: svc,
	}
}

// HandleGetMe godoc
// @Summary      Get the authenticated admin
// @Tags         auth
// @Produce      json
// @Success      200 {object} domain.Admin
// @Failure      401 {object} response.Err
// @Failure      404 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /me [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleGetMe(ctx *gin.Context) {
	adminID, ok := ctx.Get(middleware.ContextKeyAdminID)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errMissingAdminID))

		return
	}

	id, ok := adminID.(uint)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errMissingAdminID))

		return
	}

	admin, err := h.svc.GetAdmin(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrAdminNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetMe -> h.svc.GetAdmin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, admin)
}
