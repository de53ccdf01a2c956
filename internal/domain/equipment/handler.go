package equipment

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
	api.GET("/equipment", h.ListEquipment)
	api.GET("/equipment/:id", h.GetEquipment)

	write := auth.RequireRole(auth.RoleAdmin, auth.RolePhysicist)
	api.POST("/equipment", h.CreateEquipment, write)
	api.PUT("/equipment/:id", h.UpdateEquipment, write)

	api.GET("/equipment/:id/baselines", h.GetBaselines)
	api.PUT("/equipment/:id/baselines", h.PutBaseline, write)
	api.DELETE("/equipment/:id/baselines", h.DeleteBaseline, write)
}

func (h *Handler) CreateEquipment(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	var e Equipment
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.OrgID = scope.OrgID
	if err := h.svc.CreateEquipment(c.Request().Context(), &e); err != nil {
		if errors.Is(err, ErrEquipmentLimit) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"equipment": e})
}

func (h *Handler) GetEquipment(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetEquipment(c.Request().Context(), scope.OrgID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "equipment not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"equipment": e})
}

func (h *Handler) ListEquipment(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	filter := ListFilter{
		IncludeInactive: c.QueryParam("include_inactive") == "true",
		EquipmentType:   c.QueryParam("equipment_type"),
	}
	items, total, err := h.svc.ListEquipment(c.Request().Context(), scope.OrgID, filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list equipment")
	}
	if items == nil {
		items = []*Equipment{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"equipment": items, "total": total})
}

func (h *Handler) UpdateEquipment(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	// active is bound apart from the model: absent means keep, like every
	// other field of a partial update.
	var req struct {
		Equipment
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Equipment.ID = id
	req.Equipment.OrgID = scope.OrgID
	updated, err := h.svc.UpdateEquipment(c.Request().Context(), &req.Equipment, req.Active)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "equipment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"equipment": updated})
}

// -- baselines --

type putBaselineRequest struct {
	TestID       string             `json:"test_id"`
	Values       map[string]float64 `json:"values"`
	SourceSerial *string            `json:"source_serial,omitempty"`
}

func (h *Handler) GetBaselines(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	baselines, err := h.svc.GetBaselines(c.Request().Context(), scope.OrgID, id,
		c.QueryParam("test_id"), c.QueryParam("history") == "true")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "equipment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load baselines")
	}
	if baselines == nil {
		baselines = []*Baseline{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"baselines": baselines})
}

func (h *Handler) PutBaseline(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req putBaselineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, outcome, err := h.svc.PutBaseline(c.Request().Context(), scope.OrgID, id,
		req.TestID, req.Values, req.SourceSerial, scope.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "equipment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status := http.StatusOK
	if outcome == PutCreated {
		status = http.StatusCreated
	}
	return c.JSON(status, map[string]interface{}{"baseline": b, "outcome": outcome})
}

func (h *Handler) DeleteBaseline(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	testID := c.QueryParam("test_id")
	if err := h.svc.DeleteBaseline(c.Request().Context(), scope.OrgID, id, testID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "equipment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
