package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	metrics := NewMetricsService()

	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/modules", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/modules", http.StatusOK, 40*time.Millisecond)
	metrics.ObserveStoreCall("get_rows", nil, 10*time.Millisecond)
	metrics.ObserveStoreCall("set_cell", errors.New("boom"), 30*time.Millisecond)
	metrics.RecordSessionUpdates(3, 1)
	metrics.RecordDateResolutionFailure("PERIOD_NOT_FOUND")

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30, snapshot.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snapshot.StoreCallCount)
	assert.InDelta(t, 20, snapshot.AverageStoreCallDurationMs, 0.001)
	assert.Equal(t, uint64(3), snapshot.SessionsUpdated)
	assert.Equal(t, uint64(1), snapshot.SessionsSkipped)
	assert.Equal(t, uint64(1), snapshot.DateResolutionFailures)
	assert.Positive(t, snapshot.Goroutines)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordSessionUpdates(1, 0)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `session_updates_total{outcome="updated"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	metrics.RecordSessionUpdates(1, 1)
	assert.Equal(t, uint64(0), metrics.Snapshot().RequestsTotal)
}
