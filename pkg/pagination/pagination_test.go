package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(q string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+q, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(ctxWithQuery(""))
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("got limit=%d offset=%d, want defaults", p.Limit, p.Offset)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := FromContext(ctxWithQuery("limit=50&offset=10"))
	if p.Limit != 50 || p.Offset != 10 {
		t.Errorf("got limit=%d offset=%d, want 50/10", p.Limit, p.Offset)
	}
}

func TestFromContext_Clamped(t *testing.T) {
	p := FromContext(ctxWithQuery("limit=10000&offset=-3"))
	if p.Limit != MaxLimit {
		t.Errorf("limit = %d, want %d", p.Limit, MaxLimit)
	}
	if p.Offset != 0 {
		t.Errorf("offset = %d, want 0", p.Offset)
	}
}

func TestHasNext(t *testing.T) {
	p := Params{Limit: 20, Offset: 0}
	if !p.HasNext(25) {
		t.Error("expected next page when total exceeds page")
	}
	if p.HasNext(20) {
		t.Error("expected no next page when page covers total")
	}
}
