package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/api/respond"
	"github.com/Collabos-llc/mlb-data-service/internal/cache"
	"github.com/Collabos-llc/mlb-data-service/internal/store"
)

// minSeason is the first season of professional league play.
const minSeason = 1871

// GetBattingSummary returns the top batting lines for a season.
// @Summary Season batting leaderboard
// @Description Returns the top batting lines by wRC+ for a season, qualifier-filtered.
// @Tags fangraphs
// @Produce json
// @Param season query int false "Season year (defaults to current)"
// @Param limit query int false "Max rows (default 25, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/fangraphs/batting [get]
func (h *Handler) GetBattingSummary(w http.ResponseWriter, r *http.Request) {
	season, ok := querySeason(w, r)
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r, 25, 100)
	if !ok {
		return
	}

	key := fmt.Sprintf("batting:%d:%d", season, limit)
	h.respondCached(w, r, key, cache.TTLSummary, func() (interface{}, error) {
		rows, err := h.reads.BattingSummary(r.Context(), season, limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"season":  season,
			"count":   len(rows),
			"players": rows,
		}, nil
	})
}

// GetPitchingSummary returns the top pitching lines for a season.
// @Summary Season pitching leaderboard
// @Description Returns the top pitching lines by WAR for a season, qualifier-filtered.
// @Tags fangraphs
// @Produce json
// @Param season query int false "Season year (defaults to current)"
// @Param limit query int false "Max rows (default 25, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/fangraphs/pitching [get]
func (h *Handler) GetPitchingSummary(w http.ResponseWriter, r *http.Request) {
	season, ok := querySeason(w, r)
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r, 25, 100)
	if !ok {
		return
	}

	key := fmt.Sprintf("pitching:%d:%d", season, limit)
	h.respondCached(w, r, key, cache.TTLSummary, func() (interface{}, error) {
		rows, err := h.reads.PitchingSummary(r.Context(), season, limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"season":  season,
			"count":   len(rows),
			"players": rows,
		}, nil
	})
}

// GetPitchEvents returns recent hard-hit pitch events.
// @Summary Recent pitch events
// @Description Returns the most recent batted balls with measured exit velocity, hardest first.
// @Tags statcast
// @Produce json
// @Param limit query int false "Max rows (default 25, max 200)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/statcast [get]
func (h *Handler) GetPitchEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r, 25, 200)
	if !ok {
		return
	}

	key := fmt.Sprintf("statcast:%d", limit)
	h.respondCached(w, r, key, cache.TTLSummary, func() (interface{}, error) {
		rows, err := h.reads.PitchEventSummary(r.Context(), limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"count":  len(rows),
			"events": rows,
		}, nil
	})
}

// GetAnalyticsSummary returns a cross-table snapshot.
// @Summary Analytics summary
// @Description Returns table coverage, the current top batters, and the most recent hard-hit events in one response.
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/analytics/summary [get]
func (h *Handler) GetAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	season := time.Now().Year()

	h.respondCached(w, r, "analytics", cache.TTLSummary, func() (interface{}, error) {
		stats, err := h.reads.Stats(r.Context())
		if err != nil {
			return nil, err
		}
		batters, err := h.reads.BattingSummary(r.Context(), season, 5)
		if err != nil {
			return nil, err
		}
		events, err := h.reads.PitchEventSummary(r.Context(), 5)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"database":      stats,
			"top_batters":   batters,
			"recent_events": events,
			"season":        season,
			"generated_at":  time.Now().UTC().Format(time.RFC3339),
		}, nil
	})
}

// SearchPlayers finds players by partial name.
// @Summary Player search
// @Description Case-insensitive partial name search across batting and pitching seasons.
// @Tags player
// @Produce json
// @Param q query string true "Name fragment"
// @Param limit query int false "Max rows (default 25, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/player/search [get]
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_QUERY", "q query parameter is required")
		return
	}
	limit, ok := queryLimit(w, r, 25, 100)
	if !ok {
		return
	}

	key := fmt.Sprintf("search:%s:%d", strings.ToLower(q), limit)
	h.respondCached(w, r, key, cache.TTLSearch, func() (interface{}, error) {
		rows, err := h.reads.SearchPlayers(r.Context(), q, limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"query":   q,
			"count":   len(rows),
			"results": rows,
		}, nil
	})
}

// GetPlayerProfile returns one player's season lines and recent events.
// @Summary Player profile
// @Description Returns a player's batting and pitching season lines plus recent pitch outcomes, by FanGraphs player ID.
// @Tags player
// @Produce json
// @Param player_id query int true "FanGraphs player ID"
// @Param season query int false "Restrict season lines to one season"
// @Success 200 {object} store.PlayerProfile
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/player/profile [get]
func (h *Handler) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("player_id")
	if idStr == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_ID", "player_id query parameter is required")
		return
	}
	playerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "player_id must be an integer")
		return
	}

	season := 0
	if s := r.URL.Query().Get("season"); s != "" {
		season, err = strconv.Atoi(s)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON", "season must be an integer")
			return
		}
	}

	key := fmt.Sprintf("profile:%d:%d", playerID, season)
	if data, etag, found := h.cache.Get(key); found {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLProfile, true)
		return
	}

	profile, err := h.reads.PlayerProfile(r.Context(), playerID, season)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("No seasons found for player %d", playerID))
			return
		}
		h.logger.Error("Profile query failed", "player_id", playerID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to load player profile")
		return
	}

	data, err := json.Marshal(profile)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode profile")
		return
	}
	etag := h.cache.Set(key, data, cache.TTLProfile)
	respond.WriteJSON(w, data, etag, cache.TTLProfile, false)
}

// respondCached serves a payload through the cache with ETag handling.
// build runs only on a miss; its error means a failed read and maps to 500.
func (h *Handler) respondCached(w http.ResponseWriter, r *http.Request, key string,
	ttl time.Duration, build func() (interface{}, error)) {

	if data, etag, found := h.cache.Get(key); found {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	payload, err := build()
	if err != nil {
		h.logger.Error("Read query failed", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Query failed")
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

// querySeason parses an optional season parameter, defaulting to the
// current year.
func querySeason(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("season")
	if s == "" {
		return time.Now().Year(), true
	}
	season, err := strconv.Atoi(s)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON", "season must be an integer")
		return 0, false
	}
	maxSeason := time.Now().Year() + 1
	if season < minSeason || season > maxSeason {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON",
			fmt.Sprintf("Season must be between %d and %d", minSeason, maxSeason))
		return 0, false
	}
	return season, true
}

// queryLimit parses an optional limit parameter with a default and a cap.
func queryLimit(w http.ResponseWriter, r *http.Request, def, max int) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return def, true
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 1 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
		return 0, false
	}
	if limit > max {
		limit = max
	}
	return limit, true
}
