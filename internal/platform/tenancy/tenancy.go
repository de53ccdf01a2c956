// Package tenancy resolves the caller's organization once per request and
// makes the scope available to every downstream handler, service and
// repository. Handlers never re-derive organization ownership themselves.
package tenancy

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sasqart/radqa/internal/platform/auth"
)

type contextKey string

const scopeKey contextKey = "org_scope"

// Scope is the tenant context attached to every authenticated request.
type Scope struct {
	OrgID   uuid.UUID
	Subject string
	Name    string
	Roles   []string
}

// Provisioner resolves (and on first touch creates) the organization and
// profile for an authenticated subject. Implementations must be idempotent.
type Provisioner interface {
	Ensure(ctx context.Context, subject, name, orgHint string) (uuid.UUID, error)
}

// Middleware resolves the caller's organization through the provisioner and
// stores the resulting Scope on the request context.
func Middleware(p Provisioner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			subject := auth.SubjectFromContext(ctx)
			if subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated subject")
			}

			orgHint, _ := c.Get("jwt_org_id").(string)
			name := auth.UserNameFromContext(ctx)

			orgID, err := p.Ensure(ctx, subject, name, orgHint)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "organization resolution failed")
			}

			scope := Scope{
				OrgID:   orgID,
				Subject: subject,
				Name:    name,
				Roles:   auth.RolesFromContext(ctx),
			}
			c.SetRequest(c.Request().WithContext(WithScope(ctx, scope)))
			return next(c)
		}
	}
}

// WithScope returns a context carrying the given scope.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey, s)
}

// FromContext retrieves the tenant scope from context.
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey).(Scope)
	return s, ok
}

// OrgFromContext retrieves just the organization id, uuid.Nil when absent.
func OrgFromContext(ctx context.Context) uuid.UUID {
	s, _ := FromContext(ctx)
	return s.OrgID
}
