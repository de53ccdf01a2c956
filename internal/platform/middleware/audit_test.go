package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sasqart/radqa/internal/platform/auth"
)

func auditRequest(t *testing.T, method, path string, recorder AuditRecorder) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	ctx := context.WithValue(req.Context(), auth.SubjectKey, "user-1")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{auth.RolePhysicist})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestAudit_RecordsAPIRequests(t *testing.T) {
	var got *AuditEntry
	recorder := AuditRecorderFunc(func(_ context.Context, e AuditEntry) error {
		got = &e
		return nil
	})

	if err := auditRequest(t, http.MethodPost, "/api/equipment", recorder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected an audit entry")
	}
	if got.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", got.Subject)
	}
	if got.Resource != "equipment" {
		t.Errorf("resource = %q, want equipment", got.Resource)
	}
	if got.Action != "create" {
		t.Errorf("action = %q, want create", got.Action)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	called := false
	recorder := AuditRecorderFunc(func(_ context.Context, e AuditEntry) error {
		called = true
		return nil
	})
	if err := auditRequest(t, http.MethodGet, "/health", recorder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("expected no audit entry for non-API path")
	}
}

func TestAudit_RecorderFailureDoesNotFailRequest(t *testing.T) {
	recorder := AuditRecorderFunc(func(_ context.Context, e AuditEntry) error {
		return fmt.Errorf("sink unavailable")
	})
	if err := auditRequest(t, http.MethodGet, "/api/equipment", recorder); err != nil {
		t.Fatalf("audit failure must not fail the request: %v", err)
	}
}

func TestExtractResource(t *testing.T) {
	cases := map[string]string{
		"/api/equipment":              "equipment",
		"/api/equipment/1/baselines":  "equipment",
		"/api/qa/reports":             "qa",
		"/api/sources/radionuclides":  "sources",
		"/api/":                       "unknown",
	}
	for path, want := range cases {
		if got := extractResource(path); got != want {
			t.Errorf("extractResource(%q) = %q, want %q", path, got, want)
		}
	}
}
