package handler_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Collabos-llc/mlb-data-service/internal/history"
)

func TestPerformanceMetricsEmpty(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/performance/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	require.Equal(t, float64(0), body["operations_count"])
	require.Equal(t, float64(0), body["total_records_processed"])
	require.NotContains(t, body, "last_operation_at")
}

func TestPerformanceMetrics(t *testing.T) {
	f := newFixture()
	f.tracker.RecordOperation("fangraphs_batting", 2*time.Second, 100)
	f.tracker.RecordOperation("statcast", 4*time.Second, 50)

	rec := f.do(t, http.MethodGet, "/api/v1/performance/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	require.Equal(t, float64(2), body["operations_count"])
	require.Equal(t, float64(150), body["total_records_processed"])
	require.Equal(t, float64(3), body["average_operation_seconds"])
	require.Equal(t, "statcast", body["last_operation"])
	require.Equal(t, float64(4), body["last_operation_seconds"])
	require.NotEmpty(t, body["last_operation_at"])
}

func TestFreshnessAllMissing(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/freshness", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	require.Equal(t, "missing", body["overall"])

	sources := body["sources"].(map[string]interface{})
	require.Len(t, sources, 3)
	statcast := sources["statcast"].(map[string]interface{})
	require.Equal(t, "missing", statcast["status"])
	require.Nil(t, statcast["last_success"])
	require.Equal(t, float64(7200), statcast["threshold_seconds"])
	require.NotContains(t, statcast, "staleness_seconds")
}

func TestFreshnessOverallIsWorst(t *testing.T) {
	f := newFixture()
	f.tracker.MarkFresh("fangraphs_batting")
	f.tracker.MarkFresh("fangraphs_pitching")
	// Statcast threshold is 2h; three hours ago is stale but not critical.
	f.tracker.MarkFreshAt("statcast", time.Now().Add(-3*time.Hour))

	rec := f.do(t, http.MethodGet, "/api/v1/freshness", nil)

	body := decodeMap(t, rec)
	require.Equal(t, "stale", body["overall"])

	sources := body["sources"].(map[string]interface{})
	statcast := sources["statcast"].(map[string]interface{})
	require.Equal(t, "stale", statcast["status"])
	require.NotEmpty(t, statcast["last_success"])
	require.Greater(t, statcast["staleness_seconds"].(float64), float64(10000))

	batting := sources["fangraphs_batting"].(map[string]interface{})
	require.Equal(t, "fresh", batting["status"])
}

func TestFreshnessAllFresh(t *testing.T) {
	f := newFixture()
	f.tracker.MarkFresh("fangraphs_batting")
	f.tracker.MarkFresh("fangraphs_pitching")
	f.tracker.MarkFresh("statcast")

	rec := f.do(t, http.MethodGet, "/api/v1/freshness", nil)

	require.Equal(t, "fresh", decodeMap(t, rec)["overall"])
}

func TestCollectionHistory(t *testing.T) {
	f := newFixture()
	started := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f.runs.runs = []history.Run{
		{ID: 2, Source: "statcast", Window: "2025-06-15", StartTime: started,
			Status: "completed", Records: 900, DurationSecs: 3.5},
		{ID: 1, Source: "fangraphs_batting", Window: "2025", StartTime: started.Add(-time.Hour),
			Status: "failed", ErrorMessage: "fangraphs returned 503", DurationSecs: 1.1},
	}

	rec := f.do(t, http.MethodGet, "/api/v1/collections/history", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 20, f.runs.gotLimit)

	body := decodeMap(t, rec)
	require.Equal(t, float64(2), body["count"])
	runs := body["runs"].([]interface{})
	require.Len(t, runs, 2)

	newest := runs[0].(map[string]interface{})
	require.Equal(t, float64(2), newest["id"])
	require.Equal(t, "statcast", newest["source"])
	require.Equal(t, "2025-06-15", newest["window"])
	require.Equal(t, "2025-06-15T12:00:00Z", newest["started_at"])
	require.Equal(t, 3.5, newest["duration_seconds"])
	require.NotContains(t, newest, "error")

	failed := runs[1].(map[string]interface{})
	require.Equal(t, "failed", failed["status"])
	require.Equal(t, "fangraphs returned 503", failed["error"])
}

func TestCollectionHistoryLimit(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/collections/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, f.runs.gotLimit)

	rec = f.do(t, http.MethodGet, "/api/v1/collections/history?limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 100, f.runs.gotLimit, "history limit should cap at 100")
}

func TestCollectionHistoryError(t *testing.T) {
	f := newFixture()
	f.runs.err = errors.New("database is locked")

	rec := f.do(t, http.MethodGet, "/api/v1/collections/history", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "HISTORY_ERROR", decodeErr(t, rec).Error.Code)
}
