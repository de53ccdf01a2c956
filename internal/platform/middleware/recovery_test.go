package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-7")

	handler := Recovery(logger)(func(c echo.Context) error {
		panic("nil line item")
	})
	err := handler(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 HTTPError, got %v", err)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if line["panic"] != "nil line item" {
		t.Errorf("panic = %v", line["panic"])
	}
	if line["request_id"] != "req-7" || line["path"] != "/api/reports" {
		t.Errorf("request fields = %v %v", line["request_id"], line["path"])
	}
	if line["stack"] == nil {
		t.Error("stack trace not logged")
	}
}

func TestRecovery_PassthroughWithoutPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Recovery(zerolog.Nop())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
