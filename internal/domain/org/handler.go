package org

import (
	"net/http"

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
	api.GET("/organization", h.GetOrganization)
	api.PUT("/organization", h.UpdateOrganization, auth.RequireRole(auth.RoleAdmin))
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/audit", h.ListAudit, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) GetOrganization(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	o, err := h.svc.Settings(c.Request().Context(), scope.OrgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "organization not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"organization": o})
}

type updateOrgRequest struct {
	Name         string `json:"name"`
	MaxEquipment int    `json:"max_equipment"`
}

func (h *Handler) UpdateOrganization(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	var req updateOrgRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.UpdateSettings(c.Request().Context(), scope.OrgID, req.Name, req.MaxEquipment)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"organization": o})
}

func (h *Handler) GetDashboard(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	d, err := h.svc.Dashboard(c.Request().Context(), scope.OrgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load dashboard")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"dashboard": d})
}

func (h *Handler) ListAudit(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	recs, total, err := h.svc.ListAudit(c.Request().Context(), scope.OrgID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audit entries")
	}
	if recs == nil {
		recs = []*AuditRecord{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"audit": recs, "total": total})
}
