package instrument

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
	api.GET("/instruments", h.ListInstruments)
	api.GET("/instruments/:id", h.GetInstrument)

	write := auth.RequireRole(auth.RoleAdmin, auth.RolePhysicist)
	api.POST("/instruments", h.CreateInstrument, write)
	api.PUT("/instruments/:id", h.UpdateInstrument, write)
	api.DELETE("/instruments/:id", h.DeleteInstrument, write)
}

func (h *Handler) CreateInstrument(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	var i Instrument
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i.OrgID = scope.OrgID
	if err := h.svc.CreateInstrument(c.Request().Context(), &i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"instrument": i})
}

func (h *Handler) GetInstrument(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	i, err := h.svc.GetInstrument(c.Request().Context(), scope.OrgID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "instrument not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"instrument": i})
}

func (h *Handler) ListInstruments(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListInstruments(c.Request().Context(), scope.OrgID,
		c.QueryParam("active") == "true", pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list instruments")
	}
	if items == nil {
		items = []*Instrument{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"instruments": items, "total": total})
}

func (h *Handler) UpdateInstrument(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Instrument
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Instrument.ID = id
	req.Instrument.OrgID = scope.OrgID
	updated, err := h.svc.UpdateInstrument(c.Request().Context(), &req.Instrument, req.Active)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "instrument not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"instrument": updated})
}

func (h *Handler) DeleteInstrument(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteInstrument(c.Request().Context(), scope.OrgID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "instrument not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete instrument")
	}
	return c.NoContent(http.StatusNoContent)
}
