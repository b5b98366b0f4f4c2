// Package fangraphs provides the FanGraphs major-league leaderboard client.
//
// The leaderboard endpoint returns a full season table as JSON in a single
// page. Rate limiting is handled via a token bucket limiter.
package fangraphs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Collabos-llc/mlb-data-service/internal/provider"
	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

const leaderboardPath = "/api/leaders/major-league/data"

// Client is the HTTP client for FanGraphs leaderboards.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a FanGraphs client with rate limiting.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// leaderboardResponse is the leaderboard API response wrapper.
type leaderboardResponse struct {
	Data []map[string]any `json:"data"`
}

// BattingSeason fetches the season batting leaderboard with a minimum
// plate appearance qualifier. Returns an empty slice when the season has
// no qualifying rows.
func (c *Client) BattingSeason(ctx context.Context, season, minPA int) ([]schema.Row, error) {
	recs, err := c.fetchLeaderboard(ctx, "bat", season, minPA)
	if err != nil {
		return nil, err
	}
	rows := make([]schema.Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, battingRow(rec, season))
	}
	c.logger.Info("Fetched batting leaderboard", "season", season, "min_pa", minPA, "rows", len(rows))
	return rows, nil
}

// PitchingSeason fetches the season pitching leaderboard with a minimum
// innings pitched qualifier.
func (c *Client) PitchingSeason(ctx context.Context, season, minIP int) ([]schema.Row, error) {
	recs, err := c.fetchLeaderboard(ctx, "pit", season, minIP)
	if err != nil {
		return nil, err
	}
	rows := make([]schema.Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, pitchingRow(rec, season))
	}
	c.logger.Info("Fetched pitching leaderboard", "season", season, "min_ip", minIP, "rows", len(rows))
	return rows, nil
}

// fetchLeaderboard performs a rate-limited GET against the leaderboard API.
func (c *Client) fetchLeaderboard(ctx context.Context, stats string, season, qual int) ([]map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"age":        {""},
		"pos":        {"all"},
		"stats":      {stats},
		"lg":         {"all"},
		"qual":       {strconv.Itoa(qual)},
		"season":     {strconv.Itoa(season)},
		"season1":    {strconv.Itoa(season)},
		"startdate":  {""},
		"enddate":    {""},
		"month":      {"0"},
		"hand":       {""},
		"team":       {"0"},
		"pageitems":  {"2000"},
		"pagenum":    {"1"},
		"ind":        {"0"},
		"rost":       {"0"},
		"players":    {""},
		"type":       {"8"},
		"postseason": {""},
		"sortdir":    {"default"},
		"sortstat":   {"WAR"},
	}

	u := c.baseURL + leaderboardPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", leaderboardPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.APIError{
			Provider: "fangraphs",
			Status:   resp.StatusCode,
			Body:     provider.Truncate(body, 200),
		}
	}

	var result leaderboardResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode leaderboard response: %w", err)
	}
	return result.Data, nil
}

// battingRow maps one leaderboard record to the batting table columns.
func battingRow(rec map[string]any, season int) schema.Row {
	return schema.Row{
		"player_id":   provider.Int(rec["playerid"]),
		"player_name": provider.StringOr(rec["PlayerName"], "Unknown"),
		"team":        provider.StringOr(rec["TeamName"], "UNK"),
		"season":      int64(season),

		"games":             provider.Int(rec["G"]),
		"plate_appearances": provider.Int(rec["PA"]),
		"at_bats":           provider.Int(rec["AB"]),
		"hits":              provider.Int(rec["H"]),
		"singles":           provider.Int(rec["1B"]),
		"doubles":           provider.Int(rec["2B"]),
		"triples":           provider.Int(rec["3B"]),
		"home_runs":         provider.Int(rec["HR"]),
		"runs":              provider.Int(rec["R"]),
		"rbi":               provider.Int(rec["RBI"]),
		"walks":             provider.Int(rec["BB"]),
		"strikeouts":        provider.Int(rec["SO"]),
		"stolen_bases":      provider.Int(rec["SB"]),
		"caught_stealing":   provider.Int(rec["CS"]),

		"woba":     provider.Float(rec["wOBA"]),
		"wrc_plus": provider.Int(rec["wRC+"]),
		"babip":    provider.Float(rec["BABIP"]),
		"iso":      provider.Float(rec["ISO"]),
		"spd":      provider.Float(rec["Spd"]),
		"ubr":      provider.Float(rec["UBR"]),
		"wrc":      provider.Float(rec["wRC"]),
		"wrc_27":   provider.Float(rec["wRC/27"]),
		"off":      provider.Float(rec["Off"]),
		"def":      provider.Float(rec["Def"]),
		"war":      provider.Float(rec["WAR"]),

		"gb_percent":   provider.Float(rec["GB%"]),
		"fb_percent":   provider.Float(rec["FB%"]),
		"ld_percent":   provider.Float(rec["LD%"]),
		"iffb_percent": provider.Float(rec["IFFB%"]),
		"hr_fb":        provider.Float(rec["HR/FB"]),

		"o_swing_percent":   provider.Float(rec["O-Swing%"]),
		"z_swing_percent":   provider.Float(rec["Z-Swing%"]),
		"swing_percent":     provider.Float(rec["Swing%"]),
		"o_contact_percent": provider.Float(rec["O-Contact%"]),
		"z_contact_percent": provider.Float(rec["Z-Contact%"]),
		"contact_percent":   provider.Float(rec["Contact%"]),
		"zone_percent":      provider.Float(rec["Zone%"]),
		"f_strike_percent":  provider.Float(rec["F-Strike%"]),
		"swstr_percent":     provider.Float(rec["SwStr%"]),

		"clutch":  provider.Float(rec["Clutch"]),
		"wpa":     provider.Float(rec["WPA"]),
		"re24":    provider.Float(rec["RE24"]),
		"rew":     provider.Float(rec["REW"]),
		"pli":     provider.Float(rec["pLI"]),
		"inlev":   provider.Float(rec["inLI"]),
		"cents":   provider.Float(rec["Cents"]),
		"dollars": provider.Int(rec["Dollars"]),

		"data_source": "fangraphs",
	}
}

// pitchingRow maps one leaderboard record to the pitching table columns.
// Pitch mix columns come from the PitchInfo dataset ("(pi)" suffix).
func pitchingRow(rec map[string]any, season int) schema.Row {
	return schema.Row{
		"player_id":   provider.Int(rec["playerid"]),
		"player_name": provider.StringOr(rec["PlayerName"], "Unknown"),
		"team":        provider.StringOr(rec["TeamName"], "UNK"),
		"season":      int64(season),

		"wins":              provider.Int(rec["W"]),
		"losses":            provider.Int(rec["L"]),
		"saves":             provider.Int(rec["SV"]),
		"holds":             provider.Int(rec["HLD"]),
		"games":             provider.Int(rec["G"]),
		"games_started":     provider.Int(rec["GS"]),
		"innings_pitched":   provider.Float(rec["IP"]),
		"hits_allowed":      provider.Int(rec["H"]),
		"runs_allowed":      provider.Int(rec["R"]),
		"earned_runs":       provider.Int(rec["ER"]),
		"home_runs_allowed": provider.Int(rec["HR"]),
		"walks_allowed":     provider.Int(rec["BB"]),
		"strikeouts":        provider.Int(rec["SO"]),

		"era":   provider.Float(rec["ERA"]),
		"whip":  provider.Float(rec["WHIP"]),
		"fip":   provider.Float(rec["FIP"]),
		"xfip":  provider.Float(rec["xFIP"]),
		"siera": provider.Float(rec["SIERA"]),
		"k_9":   provider.Float(rec["K/9"]),
		"bb_9":  provider.Float(rec["BB/9"]),
		"hr_9":  provider.Float(rec["HR/9"]),
		"k_bb":  provider.Float(rec["K/BB"]),

		"gb_percent":   provider.Float(rec["GB%"]),
		"fb_percent":   provider.Float(rec["FB%"]),
		"ld_percent":   provider.Float(rec["LD%"]),
		"iffb_percent": provider.Float(rec["IFFB%"]),
		"hr_fb":        provider.Float(rec["HR/FB"]),
		"babip":        provider.Float(rec["BABIP"]),
		"lob_percent":  provider.Float(rec["LOB%"]),

		"fb_velocity":      provider.Float(rec["vFA (pi)"]),
		"fb_percent_usage": provider.Float(rec["FA% (pi)"]),
		"sl_percent":       provider.Float(rec["SL% (pi)"]),
		"ct_percent":       provider.Float(rec["CT% (pi)"]),
		"cb_percent":       provider.Float(rec["CB% (pi)"]),
		"ch_percent":       provider.Float(rec["CH% (pi)"]),
		"sf_percent":       provider.Float(rec["SF% (pi)"]),
		"kn_percent":       provider.Float(rec["KN% (pi)"]),

		"war":       provider.Float(rec["WAR"]),
		"wpa":       provider.Float(rec["WPA"]),
		"re24":      provider.Float(rec["RE24"]),
		"rew":       provider.Float(rec["REW"]),
		"pli":       provider.Float(rec["pLI"]),
		"inlev":     provider.Float(rec["inLI"]),
		"gmli":      provider.Float(rec["gmLI"]),
		"wpa_minus": provider.Float(rec["WPA-"]),
		"wpa_plus":  provider.Float(rec["WPA+"]),

		"data_source": "fangraphs",
	}
}
