package trend

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sasqart/radqa/internal/platform/tenancy"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/trends", h.Series)
}

func (h *Handler) Series(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	equipmentID, err := uuid.Parse(c.QueryParam("equipment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "equipment_id is required")
	}

	series, err := h.svc.Series(c.Request().Context(), scope.OrgID, equipmentID,
		c.QueryParam("test_id"), parseDate(c.QueryParam("start")), parseDate(c.QueryParam("end")))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if series == nil {
		series = []*Series{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trends": series})
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
