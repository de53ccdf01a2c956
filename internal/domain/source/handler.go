package source

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sasqart/radqa/internal/platform/auth"
	"github.com/sasqart/radqa/internal/platform/tenancy"
	"github.com/sasqart/radqa/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/sources", h.ListSources)
	api.GET("/sources/radionuclides", h.ListRadionuclides)
	api.GET("/sources/:id", h.GetSource)

	write := auth.RequireRole(auth.RoleAdmin, auth.RolePhysicist)
	api.POST("/sources", h.CreateSource, write)
	api.PUT("/sources/:id", h.UpdateSource, write)
	api.DELETE("/sources/:id", h.DeleteSource, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) CreateSource(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	var src Source
	if err := c.Bind(&src); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	src.OrgID = scope.OrgID
	if err := h.svc.CreateSource(c.Request().Context(), &src); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"source": src})
}

func (h *Handler) GetSource(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	src, history, err := h.svc.GetSource(c.Request().Context(), scope.OrgID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "source not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load source")
	}
	if history == nil {
		history = []*StatusChange{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"source": src, "status_history": history})
}

func (h *Handler) ListSources(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSources(c.Request().Context(), scope.OrgID,
		c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list sources")
	}
	if items == nil {
		items = []*Source{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sources": items, "total": total})
}

func (h *Handler) UpdateSource(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var src Source
	if err := c.Bind(&src); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	src.ID = id
	src.OrgID = scope.OrgID
	updated, err := h.svc.UpdateSource(c.Request().Context(), &src, scope.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "source not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"source": updated})
}

func (h *Handler) DeleteSource(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSource(c.Request().Context(), scope.OrgID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "source not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete source")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRadionuclides(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"radionuclides": Radionuclides})
}
