// Package savant provides the Baseball Savant pitch-level search client.
//
// The search endpoint streams query results as CSV. A busy slate of games
// produces tens of thousands of rows, so records are decoded directly off
// the response body instead of buffering the payload.
package savant

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Collabos-llc/mlb-data-service/internal/provider"
	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

const searchPath = "/statcast_search/csv"

// Client is the HTTP client for Baseball Savant pitch-level search.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Savant client with rate limiting. The HTTP timeout is
// generous: multi-day windows stream large CSV bodies.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// PitchEvents fetches every regular-season pitch between start and end,
// inclusive. Returns an empty slice when no games fall in the window.
func (c *Client) PitchEvents(ctx context.Context, start, end time.Time) ([]schema.Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"all":          {"true"},
		"type":         {"details"},
		"player_type":  {"batter"},
		"hfGT":         {"R|"},
		"game_date_gt": {start.Format("2006-01-02")},
		"game_date_lt": {end.Format("2006-01-02")},
		"min_pitches":  {"0"},
		"min_results":  {"0"},
		"group_by":     {"name"},
		"sort_col":     {"pitches"},
		"sort_order":   {"desc"},
	}

	u := c.baseURL + searchPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", searchPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &provider.APIError{
			Provider: "savant",
			Status:   resp.StatusCode,
			Body:     provider.Truncate(body, 200),
		}
	}

	rows, err := decodeCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched pitch events",
		"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"), "rows", len(rows))
	return rows, nil
}

// decodeCSV converts the search CSV into rows keyed by column name.
// Savant emits ~90 columns; only the schema surface is kept, each cell
// parsed per its column type.
func decodeCSV(r io.Reader) ([]schema.Row, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return []schema.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []schema.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		rows = append(rows, eventRow(header, rec))
	}
	if rows == nil {
		rows = []schema.Row{}
	}
	return rows, nil
}

func eventRow(header, rec []string) schema.Row {
	row := make(schema.Row, len(schema.PitchEvents.Columns))
	for i, name := range header {
		if i >= len(rec) {
			break
		}
		col, ok := schema.PitchEvents.Column(name)
		if !ok {
			continue
		}
		switch col.Type {
		case schema.Int:
			row[name] = provider.Int(rec[i])
		case schema.Float:
			row[name] = provider.Float(rec[i])
		default:
			row[name] = provider.Text(rec[i])
		}
	}
	return row
}
