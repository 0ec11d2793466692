package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/Demigodrick/community-bot/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Environment:     "test",
		HTTPPort:        "0",
		EnforceInterval: 5 * time.Minute,
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthOKWithFreshTick(t *testing.T) {
	s := New(testConfig(), prometheus.NewRegistry(), func() time.Time { return time.Now() })

	w := get(t, s, "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthStaleWithOldTick(t *testing.T) {
	s := New(testConfig(), prometheus.NewRegistry(), func() time.Time {
		return time.Now().Add(-time.Hour)
	})

	w := get(t, s, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"stale"`)
}

func TestHealthStaleBeforeFirstTick(t *testing.T) {
	s := New(testConfig(), prometheus.NewRegistry(), func() time.Time { return time.Time{} })

	w := get(t, s, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	s := New(testConfig(), registry, func() time.Time { return time.Now() })

	w := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_total 1")
}
