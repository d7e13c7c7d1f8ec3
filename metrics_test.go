package main

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.Observe(RouteRoot, "cli")
	m.Observe(RouteRoot, "cli")
	m.Observe(RouteAll, "api")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(RouteRoot, "cli")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(RouteAll, "api")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requests.WithLabelValues(RouteAllJSON, "api")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.Observe(RouteAllJSON, "api")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `ifconfig_requests_total{client="api",route="/all.json"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_Isolated(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.Observe(RouteRoot, "browser")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.requests.WithLabelValues(RouteRoot, "browser")))
}
