package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorchat/metricsbox/metrics"
)

func newTestServer(t *testing.T) (*Server, *metrics.Aggregator) {
	t.Helper()
	agg := metrics.New(metrics.Config{})
	t.Cleanup(agg.Close)
	return New(8080, agg), agg
}

func TestSnapshotEndpoint(t *testing.T) {
	s, agg := newTestServer(t)
	agg.IncrementCounter("api.requests", metrics.Tags{"endpoint": "/api/chat"}, 5)

	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/snapshot", nil))

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Counters["api.requests"], 1)
	assert.Equal(t, 5.0, snap.Counters["api.requests"][0].Value)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, 200, rec.Code)

	var health metrics.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Zero(t, health.ErrorRate)
}

func TestRequestsAreTracked(t *testing.T) {
	s, agg := newTestServer(t)

	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, 200, rec.Code)

	tags := metrics.Tags{"endpoint": "/health", "method": "GET"}
	assert.Equal(t, 1.0, agg.GetCounter(metrics.MetricAPIRequests, tags))

	respTags := metrics.Tags{
		"endpoint": "/health",
		"method":   "GET",
		"status":   "200",
		"success":  "true",
	}
	assert.Equal(t, 1.0, agg.GetCounter(metrics.MetricAPIResponses, respTags))
	assert.Zero(t, agg.GetCounter(metrics.MetricAPIErrors, tags))

	stats := agg.HistogramStats(metrics.MetricAPIRequestDuration, tags)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Count)
}

func TestUnknownRouteNotTracked(t *testing.T) {
	s, agg := newTestServer(t)

	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, 404, rec.Code)

	assert.Zero(t, agg.HealthMetrics().Series.Counters)
}
