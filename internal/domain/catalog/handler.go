package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sasqart/radqa/internal/platform/auth"
	"github.com/sasqart/radqa/internal/platform/tenancy"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/tests", h.ListTests)

	write := auth.RequireRole(auth.RoleAdmin, auth.RolePhysicist)
	api.POST("/tests", h.CreateTests, write)
	api.PUT("/tests/:id", h.UpdateTest, write)
	api.DELETE("/tests/:id", h.DeleteTest, write)
	api.POST("/tests/import", h.ImportDefaults, write)
}

func (h *Handler) ListTests(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	filter := ListFilter{
		EquipmentType: c.QueryParam("equipment_type"),
		Frequency:     c.QueryParam("frequency"),
		ActiveOnly:    c.QueryParam("active") == "true",
	}
	defs, err := h.svc.ListTests(c.Request().Context(), scope.OrgID, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tests")
	}
	if defs == nil {
		defs = []*TestDefinition{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tests": defs})
}

// CreateTests accepts either a single definition object or an array of them.
func (h *Handler) CreateTests(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	var defs []*TestDefinition
	if err := json.Unmarshal(body, &defs); err != nil {
		var single TestDefinition
		if err := json.Unmarshal(body, &single); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
		}
		defs = []*TestDefinition{&single}
	}

	created, err := h.svc.CreateTests(c.Request().Context(), scope.OrgID, defs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"tests": created})
}

func (h *Handler) UpdateTest(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		TestDefinition
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.TestDefinition.ID = id
	updated, err := h.svc.UpdateTest(c.Request().Context(), scope.OrgID, &req.TestDefinition, req.Active)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "test not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"test": updated})
}

func (h *Handler) DeleteTest(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteTest(c.Request().Context(), scope.OrgID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "test not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete test")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ImportDefaults(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	created, err := h.svc.ImportDefaults(c.Request().Context(), scope.OrgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "catalog import failed")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"imported": created})
}
