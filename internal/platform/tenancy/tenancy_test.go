package tenancy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sasqart/radqa/internal/platform/auth"
)

type fakeProvisioner struct {
	orgID uuid.UUID
	calls int
	fail  bool
}

func (p *fakeProvisioner) Ensure(_ context.Context, subject, name, orgHint string) (uuid.UUID, error) {
	p.calls++
	if p.fail {
		return uuid.Nil, fmt.Errorf("provisioning failed")
	}
	return p.orgID, nil
}

func request(t *testing.T, p Provisioner, subject string) (Scope, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
	if subject != "" {
		ctx := context.WithValue(req.Context(), auth.SubjectKey, subject)
		ctx = context.WithValue(ctx, auth.UserRolesKey, []string{auth.RolePhysicist})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Scope
	handler := Middleware(p)(func(c echo.Context) error {
		got, _ = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return got, err
}

func TestMiddleware_SetsScope(t *testing.T) {
	orgID := uuid.New()
	p := &fakeProvisioner{orgID: orgID}
	scope, err := request(t, p, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.OrgID != orgID {
		t.Errorf("OrgID = %v, want %v", scope.OrgID, orgID)
	}
	if scope.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", scope.Subject)
	}
	if p.calls != 1 {
		t.Errorf("provisioner called %d times, want 1", p.calls)
	}
}

func TestMiddleware_Unauthenticated(t *testing.T) {
	p := &fakeProvisioner{orgID: uuid.New()}
	_, err := request(t, p, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if p.calls != 0 {
		t.Error("provisioner must not run for unauthenticated requests")
	}
}

func TestMiddleware_ProvisioningFailure(t *testing.T) {
	p := &fakeProvisioner{fail: true}
	_, err := request(t, p, "user-1")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}

func TestOrgFromContext_Absent(t *testing.T) {
	if got := OrgFromContext(context.Background()); got != uuid.Nil {
		t.Errorf("expected uuid.Nil, got %v", got)
	}
}
