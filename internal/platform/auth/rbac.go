package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Roles recognised by the service. Admins implicitly satisfy every role
// requirement.
const (
	RoleAdmin     = "admin"
	RolePhysicist = "physicist"
	RoleTherapist = "therapist"
)

// RequireRole returns middleware that rejects requests from callers holding
// none of the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == RoleAdmin {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// HasRole reports whether the role set includes the given role, treating
// admin as a superset of every role.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}
