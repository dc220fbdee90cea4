package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.0.0", "abc123", "2026-01-15T10:00:00Z")

	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, "2026-01-15T10:00:00Z", bi.BuildTime)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func newHealthEngine(t *testing.T, checks ...ports.HealthChecker) (*gin.Engine, *prometheus.Registry) {
	t.Helper()

	registry := ports.NewHealthRegistry()
	for _, c := range checks {
		require.NoError(t, registry.Register(c))
	}

	reg := prometheus.NewRegistry()
	handler := NewHealthHandler(registry, NewBuildInfo("1.2.3", "deadbeef", "now"), reg)

	engine := gin.New()
	handler.RegisterHealthRoutesOnEngine(engine)

	return engine, reg
}

func TestHealthHandler_Liveness(t *testing.T) {
	engine, _ := newHealthEngine(t, ports.HealthCheckFunc{
		CheckName: "broken",
		Fn:        func(context.Context) error { return errors.New("down") },
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))

	// Liveness ignores dependency health.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp livenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthHandler_Readiness(t *testing.T) {
	healthy := ports.HealthCheckFunc{CheckName: "quote-store", Fn: func(context.Context) error { return nil }}
	broken := ports.HealthCheckFunc{CheckName: "storage", Fn: func(context.Context) error { return errors.New("disk gone") }}

	tests := []struct {
		name           string
		checks         []ports.HealthChecker
		expectedStatus int
		expectedHealth string
	}{
		{name: "no checks", expectedStatus: http.StatusOK, expectedHealth: "healthy"},
		{name: "all healthy", checks: []ports.HealthChecker{healthy}, expectedStatus: http.StatusOK, expectedHealth: "healthy"},
		{
			name:           "one failing",
			checks:         []ports.HealthChecker{healthy, broken},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newHealthEngine(t, tt.checks...)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/ready", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedHealth, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestHealthHandler_Build(t *testing.T) {
	engine, _ := newHealthEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/build", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var bi BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bi))
	assert.Equal(t, "1.2.3", bi.Version)
	assert.Equal(t, "deadbeef", bi.Commit)
}

func TestHealthHandler_Metrics(t *testing.T) {
	engine, reg := newHealthEngine(t)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "quote_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quote_test_total 1")
}
