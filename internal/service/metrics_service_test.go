package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-routine-api/internal/models"
)

func scrapeMetrics(t *testing.T, metrics *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsServiceRecordsRoutineRuns(t *testing.T) {
	metrics := NewMetricsService()

	metrics.RecordRoutineRun(models.RoutineSessionCompleted, 2*time.Second, 40, 2, map[models.ConflictType]int{
		models.ConflictTeacher:    5,
		models.ConflictDailyLimit: 1,
	})
	metrics.RecordRoutineRun(models.RoutineSessionFailed, time.Second, 0, 0, nil)

	body := scrapeMetrics(t, metrics)
	assert.Contains(t, body, `routine_runs_total{status="COMPLETED"} 1`)
	assert.Contains(t, body, `routine_runs_total{status="FAILED"} 1`)
	assert.Contains(t, body, "routine_placements_total 40")
	assert.Contains(t, body, "routine_skipped_total 2")
	assert.Contains(t, body, `routine_conflicts_total{type="teacher"} 5`)
	assert.Contains(t, body, "routine_run_duration_seconds_count 2")
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)

	body := scrapeMetrics(t, metrics)
	assert.Contains(t, body, "cache_hits_total 3")
	assert.Contains(t, body, "cache_misses_total 1")
	assert.Contains(t, body, "cache_hit_ratio 0.75")

	var nilMetrics *MetricsService
	assert.NotPanics(t, func() {
		nilMetrics.RecordRoutineRun(models.RoutineSessionCompleted, time.Second, 1, 0, nil)
		nilMetrics.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
	})
}
