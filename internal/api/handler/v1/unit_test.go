package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubescore/ranking-api/internal/domain"
	"github.com/clubescore/ranking-api/internal/service"
)

type stubUnitService struct {
	UnitService

	createUnit func(ctx context.Context, unit domain.Unit) (domain.Unit, error)
	getUnit    func(ctx context.Context, slug string) (domain.Unit, error)
	verify     func(ctx context.Context, slug, password string) error
}

func (s *stubUnitService) CreateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	return s.createUnit(ctx, unit)
}

func (s *stubUnitService) GetUnit(ctx context.Context, slug string) (domain.Unit, error) {
	return s.getUnit(ctx, slug)
}

func (s *stubUnitService) VerifyAccessPassword(ctx context.Context, slug, password string) error {
	return s.verify(ctx, slug, password)
}

func newUnitRouter(svc UnitService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewUnitHandler(svc)
	router.POST("/units", h.HandleCreateUnit)
	router.GET("/units/:slug", h.HandleGetUnit)
	router.POST("/units/:slug/access", h.HandleVerifyUnitPassword)

	return router
}

func TestUnitHandler_HandleCreateUnit(t *testing.T) {
	svc := &stubUnitService{
		createUnit: func(_ context.Context, unit domain.Unit) (domain.Unit, error) {
			unit.Slug = domain.Slugify(unit.Name)
			return unit, nil
		},
	}
	router := newUnitRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/units", strings.NewReader(`{"name":"Falcões do Vale"}`))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var got domain.Unit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "falcões-do-vale", got.Slug)
	assert.Equal(t, "Falcões do Vale", got.Name)
}

func TestUnitHandler_HandleCreateUnit_Invalid(t *testing.T) {
	router := newUnitRouter(&stubUnitService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/units", strings.NewReader(`{"name":""}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnitHandler_HandleCreateUnit_Conflict(t *testing.T) {
	svc := &stubUnitService{
		createUnit: func(_ context.Context, _ domain.Unit) (domain.Unit, error) {
			return domain.Unit{}, service.ErrUnitExists
		},
	}
	router := newUnitRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/units", strings.NewReader(`{"name":"Falcões"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnitHandler_HandleGetUnit_NotFound(t *testing.T) {
	svc := &stubUnitService{
		getUnit: func(_ context.Context, _ string) (domain.Unit, error) {
			return domain.Unit{}, service.ErrUnitNotFound
		},
	}
	router := newUnitRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/units/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnitHandler_HandleVerifyUnitPassword(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"open unit", nil, http.StatusNoContent},
		{"wrong password", service.ErrWrongUnitPassword, http.StatusForbidden},
		{"unknown unit", service.ErrUnitNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubUnitService{
				verify: func(_ context.Context, _, _ string) error {
					return tt.err
				},
			}
			router := newUnitRouter(svc)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/units/falcons/access", strings.NewReader(`{"password":"hunter42"}`))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
