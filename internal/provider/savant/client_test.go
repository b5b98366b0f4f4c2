package savant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Collabos-llc/mlb-data-service/internal/provider"
)

const sampleCSV = `pitch_type,game_date,release_speed,batter,pitcher,events,description,zone,game_pk,at_bat_number,pitch_number,launch_speed,launch_angle,arbitrary_extra
FF,2025-06-01,98.2,660271,669373,home_run,hit_into_play,5,717465,12,4,112.4,28.0,ignored
SL,2025-06-01,87.1,660271,669373,,swinging_strike,,717465,12,5,,,ignored
`

func day(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestPitchEventsDecodesCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, searchPath, r.URL.Path)
		require.Equal(t, "2025-06-01", r.URL.Query().Get("game_date_gt"))
		require.Equal(t, "2025-06-02", r.URL.Query().Get("game_date_lt"))
		require.Equal(t, "details", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 6000, nil)
	rows, err := c.PitchEvents(context.Background(), day("2025-06-01"), day("2025-06-02"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	require.Equal(t, "FF", first["pitch_type"])
	require.Equal(t, "2025-06-01", first["game_date"])
	require.Equal(t, 98.2, first["release_speed"])
	require.Equal(t, int64(660271), first["batter"])
	require.Equal(t, int64(717465), first["game_pk"])
	require.Equal(t, int64(12), first["at_bat_number"])
	require.Equal(t, int64(4), first["pitch_number"])
	require.Equal(t, 112.4, first["launch_speed"])
	require.Equal(t, "home_run", first["events"])

	// Columns outside the schema surface are dropped.
	_, extra := first["arbitrary_extra"]
	require.False(t, extra)

	// Empty cells decode to nil, not zero values.
	second := rows[1]
	require.Nil(t, second["events"])
	require.Nil(t, second["launch_speed"])
	require.Nil(t, second["zone"])
	require.Equal(t, int64(5), second["pitch_number"])
}

func TestPitchEventsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No games in the window: Savant returns just nothing.
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 6000, nil)
	rows, err := c.PitchEvents(context.Background(), day("2025-12-25"), day("2025-12-25"))
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestPitchEventsHeaderOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pitch_type,game_date,game_pk\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 6000, nil)
	rows, err := c.PitchEvents(context.Background(), day("2025-12-25"), day("2025-12-25"))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestPitchEventsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "search overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 6000, nil)
	_, err := c.PitchEvents(context.Background(), day("2025-06-01"), day("2025-06-02"))

	var apiErr *provider.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "savant", apiErr.Provider)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
}
