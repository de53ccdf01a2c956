package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sasqart/radqa/internal/platform/auth"
	"github.com/sasqart/radqa/internal/platform/tenancy"
)

// AuditEntry captures who did what, when, from where, and with what outcome.
type AuditEntry struct {
	OrgID      uuid.UUID
	Subject    string
	UserRoles  []string
	Resource   string
	Action     string // read, create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries. The sink is external to this
// service; tests and deployments plug in their own implementation.
type AuditRecorder interface {
	RecordAccess(ctx context.Context, entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(ctx context.Context, entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(ctx context.Context, entry AuditEntry) error {
	return f(ctx, entry)
}

// Audit returns middleware that records every /api request: authenticated
// subject, resource, action, outcome. Recorder failure is logged and never
// fails the request. A structured log line is always emitted.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/") {
				return next(c)
			}

			// Execute the handler first so we capture the response status.
			err := next(c)

			ctx := req.Context()
			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
				OrgID:      tenancy.OrgFromContext(ctx),
				Subject:    auth.SubjectFromContext(ctx),
				UserRoles:  auth.RolesFromContext(ctx),
				Action:     httpMethodToAction(req.Method),
				Resource:   extractResource(path),
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(ctx, entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("subject", entry.Subject).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("api_access")

			return err
		}
	}
}

// httpMethodToAction maps HTTP methods to audit action names.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource parses the resource collection name from an /api path,
// e.g. /api/equipment/123/baselines -> equipment.
func extractResource(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}
