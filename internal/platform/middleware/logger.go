package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sasqart/radqa/internal/platform/tenancy"
)

// Logger emits one structured line per request. Requests inside /api carry
// the resolved organization id so log queries can be tenant-scoped the same
// way the data is; the health probe logs at debug to keep it out of the way.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			var evt *zerolog.Event
			switch {
			case err != nil:
				evt = logger.Error().Err(err)
			case req.URL.Path == "/health":
				evt = logger.Debug()
			default:
				evt = logger.Info()
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			// Tenancy swaps the request when it resolves the scope, so read
			// the context back off the echo context, not the inbound request.
			if orgID := tenancy.OrgFromContext(c.Request().Context()); orgID != uuid.Nil {
				evt = evt.Str("organization_id", orgID.String())
			}
			evt.Msg("request")

			return err
		}
	}
}
