package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"empdir/internal/domain/employee"
	"empdir/internal/platform/config"
	"empdir/internal/platform/metrics"
	employeeshandler "empdir/internal/transport/http/handlers/employees"
)

// stubBackend answers GetByName with ErrNotFound and panics on anything
// else the router does not expect.
type stubBackend struct {
	employeeshandler.Directory
	pingErr error
}

func (s stubBackend) Ping(context.Context) error { return s.pingErr }

func (s stubBackend) GetByName(context.Context, string) (*employee.Aggregate, error) {
	return nil, employee.ErrNotFound
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.MaxBodyBytes = 1024
	return cfg
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}
}

func TestReadyz(t *testing.T) {
	ready := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)
	if rec := serve(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil)); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}

	down := NewRouter(testConfig(), zerolog.Nop(), stubBackend{pingErr: errors.New("dial tcp: refused")}, nil)
	if rec := serve(down, httptest.NewRequest(http.MethodGet, "/readyz", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing ping = %d", rec.Code)
	}
}

func TestEmployeeRoutesMounted(t *testing.T) {
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/employees/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Employee not found") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestPanicBecomes500(t *testing.T) {
	// The embedded Directory is nil, so List panics.
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/employees", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)

	body := `{"name":"` + strings.Repeat("x", 2048) + `"}`
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(body)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/employees", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(router, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatal("expected Access-Control-Allow-Origin on preflight")
	}
}

func TestMetricsEndpointRecordsRoutePattern(t *testing.T) {
	collector := metrics.New()
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, collector)

	serve(router, httptest.NewRequest(http.MethodGet, "/employees/ghost", nil))

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	want := `empdir_http_requests_total{method="GET",route="/employees/{name}",status="404"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("metrics output missing %q", want)
	}
}

func TestMetricsDisabled(t *testing.T) {
	router := NewRouter(testConfig(), zerolog.Nop(), stubBackend{}, nil)

	if rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
