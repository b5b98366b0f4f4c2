package handler

import (
	"net/http"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/api/respond"
	"github.com/Collabos-llc/mlb-data-service/internal/track"
)

// GetPerformanceMetrics returns tracker operation metrics.
// @Summary Performance metrics
// @Description Returns operation counts, total records processed, and running average durations.
// @Tags operations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/performance/metrics [get]
func (h *Handler) GetPerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, metricsPayload(h.tracker.Metrics()))
}

// GetFreshness returns per-source staleness.
// @Summary Data freshness report
// @Description Returns fresh/stale/critical/missing per collected source with staleness and thresholds.
// @Tags operations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/freshness [get]
func (h *Handler) GetFreshness(w http.ResponseWriter, r *http.Request) {
	report := h.tracker.Report()

	sources := make(map[string]interface{}, len(report))
	worst := track.StatusFresh
	for id, f := range report {
		sources[id] = freshnessPayload(f)
		if statusRank(f.Status) > statusRank(worst) {
			worst = f.Status
		}
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"overall":   worst,
		"sources":   sources,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetCollectionHistory returns recent collection runs.
// @Summary Collection run history
// @Description Returns the most recent collection runs, newest first.
// @Tags operations
// @Produce json
// @Param limit query int false "Max runs (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/collections/history [get]
func (h *Handler) GetCollectionHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r, 20, 100)
	if !ok {
		return
	}

	runs, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("History query failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "HISTORY_ERROR", "Failed to read run history")
		return
	}

	items := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		item := map[string]interface{}{
			"id":               run.ID,
			"source":           run.Source,
			"window":           run.Window,
			"status":           run.Status,
			"records":          run.Records,
			"started_at":       run.StartTime.UTC().Format(time.RFC3339),
			"duration_seconds": run.DurationSecs,
		}
		if run.ErrorMessage != "" {
			item["error"] = run.ErrorMessage
		}
		items = append(items, item)
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"runs":  items,
	})
}

func metricsPayload(m track.Metrics) map[string]interface{} {
	out := map[string]interface{}{
		"operations_count":          m.OperationsCount,
		"total_records_processed":   m.TotalRecordsProcessed,
		"average_operation_seconds": m.AverageOperationTime.Seconds(),
		"last_operation":            m.LastOperation,
		"last_operation_seconds":    m.LastOperationTime.Seconds(),
	}
	if !m.LastOperationAt.IsZero() {
		out["last_operation_at"] = m.LastOperationAt.UTC().Format(time.RFC3339)
	}
	return out
}

func freshnessPayload(f track.Freshness) map[string]interface{} {
	out := map[string]interface{}{
		"status":            f.Status,
		"threshold_seconds": f.Threshold.Seconds(),
	}
	if f.LastSuccess.IsZero() {
		out["last_success"] = nil
	} else {
		out["last_success"] = f.LastSuccess.UTC().Format(time.RFC3339)
		out["staleness_seconds"] = f.Staleness.Seconds()
	}
	return out
}

func statusRank(s track.Status) int {
	switch s {
	case track.StatusFresh:
		return 0
	case track.StatusStale:
		return 1
	case track.StatusCritical:
		return 2
	default: // missing
		return 3
	}
}
