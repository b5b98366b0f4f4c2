package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/api/respond"
	"github.com/Collabos-llc/mlb-data-service/internal/collect"
)

// CollectBatting triggers a season batting collection.
// @Summary Collect season batting stats
// @Description Fetches FanGraphs batting leaderboards for one season and replaces that season in storage. Empty body collects the current season.
// @Tags collect
// @Accept json
// @Produce json
// @Param params body collect.BattingParams false "Season and minimum plate appearances"
// @Success 200 {object} collect.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/collect/fangraphs/batting [post]
func (h *Handler) CollectBatting(w http.ResponseWriter, r *http.Request) {
	var p collect.BattingParams
	if !decodeBody(w, r, &p) {
		return
	}
	h.writeResult(w, h.collector.CollectBatting(r.Context(), p))
}

// CollectPitching triggers a season pitching collection.
// @Summary Collect season pitching stats
// @Description Fetches FanGraphs pitching leaderboards for one season and replaces that season in storage. Empty body collects the current season.
// @Tags collect
// @Accept json
// @Produce json
// @Param params body collect.PitchingParams false "Season and minimum innings pitched"
// @Success 200 {object} collect.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/collect/fangraphs/pitching [post]
func (h *Handler) CollectPitching(w http.ResponseWriter, r *http.Request) {
	var p collect.PitchingParams
	if !decodeBody(w, r, &p) {
		return
	}
	h.writeResult(w, h.collector.CollectPitching(r.Context(), p))
}

type eventRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CollectStatcast triggers a pitch-event collection.
// @Summary Collect pitch-level events
// @Description Fetches Statcast pitch events for an inclusive date range and upserts them. Empty body collects today.
// @Tags collect
// @Accept json
// @Produce json
// @Param params body eventRequest false "Inclusive date range, YYYY-MM-DD"
// @Success 200 {object} collect.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /api/v1/collect/statcast [post]
func (h *Handler) CollectStatcast(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var p collect.EventParams
	var err error
	if p.Start, err = parseDate(req.StartDate); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE",
			"start_date must be formatted YYYY-MM-DD")
		return
	}
	if p.End, err = parseDate(req.EndDate); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE",
			"end_date must be formatted YYYY-MM-DD")
		return
	}

	h.writeResult(w, h.collector.CollectPitchEvents(r.Context(), p))
}

// writeResult maps a collection Result onto the wire: 200 for completed
// runs (including zero-row ones), error envelopes keyed by failure kind
// otherwise.
func (h *Handler) writeResult(w http.ResponseWriter, res collect.Result) {
	if !res.Failed() {
		// New data landed; cached summaries are no longer authoritative.
		h.cache.Invalidate()
		respond.WriteJSONObject(w, http.StatusOK, res)
		return
	}

	status, code := http.StatusInternalServerError, "STORAGE_ERROR"
	switch res.ErrKind {
	case collect.ErrKindProvider:
		status, code = http.StatusBadGateway, "PROVIDER_ERROR"
	case collect.ErrKindConfig:
		status, code = http.StatusBadRequest, "INVALID_PARAMS"
	}
	respond.WriteErrorDetail(w, status, code, res.Err, res.Summary())
}

// decodeBody decodes an optional JSON body. An absent or empty body leaves
// the target zero-valued so collection defaults apply.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	return false
}

// parseDate parses YYYY-MM-DD; empty means unset.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
