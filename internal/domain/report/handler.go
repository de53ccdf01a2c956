package report

import (
	"errors"
	"net/http"
	"time"

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
	api.POST("/qa/reports", h.CreateReport)
	api.GET("/qa/reports/:id", h.GetReport)
	api.GET("/qa/history", h.History)
	api.GET("/reports/summary", h.Summary)

	review := auth.RequireRole(auth.RoleAdmin, auth.RolePhysicist)
	api.PUT("/qa/reports/:id/status", h.UpdateStatus, review)
	api.DELETE("/qa/reports/:id", h.DeleteReport, review)
}

func (h *Handler) CreateReport(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	var rep Report
	if err := c.Bind(&rep); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep.OrgID = scope.OrgID
	rep.SubmittedBy = scope.Subject
	if err := h.svc.CreateReport(c.Request().Context(), &rep); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"report": rep})
}

func (h *Handler) GetReport(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rep, err := h.svc.GetReport(c.Request().Context(), scope.OrgID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load report")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"report": rep})
}

func (h *Handler) DeleteReport(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteReport(c.Request().Context(), scope.OrgID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete report")
	}
	return c.NoContent(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.UpdateStatus(c.Request().Context(), scope.OrgID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"report": rep})
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (h *Handler) History(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	filter := ListFilter{
		Frequency: c.QueryParam("frequency"),
		From:      parseDate(c.QueryParam("start")),
		To:        parseDate(c.QueryParam("end")),
	}
	if v := c.QueryParam("equipment_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid equipment_id")
		}
		filter.EquipmentID = id
	}

	items, total, err := h.svc.History(c.Request().Context(), scope.OrgID, filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reports")
	}
	if items == nil {
		items = []*Report{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"reports": items, "total": total})
}

func (h *Handler) Summary(c echo.Context) error {
	scope, _ := tenancy.FromContext(c.Request().Context())
	rows, err := h.svc.Summary(c.Request().Context(), scope.OrgID,
		parseDate(c.QueryParam("start")), parseDate(c.QueryParam("end")))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to summarize reports")
	}
	if rows == nil {
		rows = []SummaryRow{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"summary": rows})
}
