package export

import (
	"fmt"
	"net/http"

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
	api.GET("/export", h.Export, auth.RequireRole(auth.RoleAdmin))
}

// Export streams the organization's snapshot as a downloadable JSON file.
func (h *Handler) Export(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	snap, err := h.svc.Build(c.Request().Context(), scope.OrgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build export")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=radqa_export_%s.json", snap.ExportedAt.Format("2006-01-02")))
	return c.JSON(http.StatusOK, snap)
}
