package store_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Collabos-llc/mlb-data-service/internal/config"
	"github.com/Collabos-llc/mlb-data-service/internal/db"
	"github.com/Collabos-llc/mlb-data-service/internal/schema"
	"github.com/Collabos-llc/mlb-data-service/internal/store"
)

// Integration tests against a live Postgres. Point TEST_DATABASE_URL at a
// throwaway database to enable them; without it every test here skips.
var (
	pool   *db.Pool
	skippy bool
)

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		skippy = true
		os.Exit(m.Run())
	}

	cfg := &config.Config{
		DatabaseURL:    dsn,
		DBPoolMinConns: 1,
		DBPoolMaxConns: 4,
		DBPoolMaxLife:  time.Hour,
	}
	var err error
	pool, err = db.New(context.Background(), cfg, nil)
	if err != nil {
		fmt.Println("connect test database:", err)
		os.Exit(1)
	}

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

func skipIfNeeded(t *testing.T) {
	t.Helper()
	if skippy {
		t.Skip("TEST_DATABASE_URL not set")
	}
}

func truncateAll(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, table := range []string{"fangraphs_batting", "fangraphs_pitching", "statcast"} {
		_, err := pool.Exec(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
}

func battingRow(playerID int64, name, team string, season int64, wrcPlus any) schema.Row {
	return schema.Row{
		"player_id":   playerID,
		"player_name": name,
		"team":        team,
		"season":      season,
		"wrc_plus":    wrcPlus,
		"data_source": "fangraphs",
	}
}

func eventRow(gamePk, ab, pitch int64, date string, launchSpeed any) schema.Row {
	return schema.Row{
		"game_pk":       gamePk,
		"at_bat_number": ab,
		"pitch_number":  pitch,
		"game_date":     date,
		"launch_speed":  launchSpeed,
	}
}

func TestReplaceSeasonIdempotent(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)

	first := []schema.Row{
		battingRow(1, "First Player", "AAA", 1901, int64(120)),
		battingRow(2, "Second Player", "BBB", 1901, int64(95)),
	}
	n, err := w.ReplaceSeason(ctx, schema.Batting, 1901, first)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// Second run for the same season fully replaces the first.
	second := []schema.Row{
		battingRow(1, "First Player", "AAA", 1901, int64(140)),
		battingRow(2, "Second Player", "BBB", 1901, int64(95)),
		battingRow(3, "Third Player", "CCC", 1901, nil),
	}
	n, err = w.ReplaceSeason(ctx, schema.Batting, 1901, second)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM fangraphs_batting WHERE season = $1", 1901).Scan(&count))
	require.Equal(t, 3, count)

	var wrcPlus int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT wrc_plus FROM fangraphs_batting WHERE player_id = $1 AND season = $2", 1, 1901).Scan(&wrcPlus))
	require.Equal(t, 140, wrcPlus, "replace must reflect the latest run")
}

func TestReplaceSeasonLeavesOtherSeasonsAlone(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)

	_, err := w.ReplaceSeason(ctx, schema.Batting, 1901, []schema.Row{
		battingRow(1, "First Player", "AAA", 1901, int64(100)),
	})
	require.NoError(t, err)
	_, err = w.ReplaceSeason(ctx, schema.Batting, 1902, []schema.Row{
		battingRow(1, "First Player", "AAA", 1902, int64(110)),
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM fangraphs_batting").Scan(&count))
	require.Equal(t, 2, count)
}

func TestReplaceSeasonRollsBackOnBadBatch(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)

	_, err := w.ReplaceSeason(ctx, schema.Batting, 1901, []schema.Row{
		battingRow(1, "First Player", "AAA", 1901, int64(100)),
	})
	require.NoError(t, err)

	// A row missing a required column fails normalization; the previous
	// window data must survive untouched.
	bad := []schema.Row{{"player_id": int64(9), "season": int64(1901)}}
	_, err = w.ReplaceSeason(ctx, schema.Batting, 1901, bad)
	require.Error(t, err)

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM fangraphs_batting WHERE season = $1", 1901).Scan(&count))
	require.Equal(t, 1, count)
}

func TestReplaceSeasonConcurrent(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)

	batchA := []schema.Row{
		battingRow(1, "First Player", "AAA", 1901, int64(100)),
		battingRow(2, "Second Player", "BBB", 1901, int64(101)),
	}
	batchB := []schema.Row{
		battingRow(1, "First Player", "AAA", 1901, int64(200)),
		battingRow(2, "Second Player", "BBB", 1901, int64(201)),
		battingRow(3, "Third Player", "CCC", 1901, int64(202)),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, batch := range [][]schema.Row{batchA, batchB} {
		wg.Add(1)
		go func(rows []schema.Row) {
			defer wg.Done()
			_, err := w.ReplaceSeason(ctx, schema.Batting, 1901, rows)
			errs <- err
		}(batch)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// The advisory lock serializes the runs: the table holds exactly one
	// batch, never an interleaving.
	var count int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM fangraphs_batting WHERE season = $1", 1901).Scan(&count))
	require.Contains(t, []int{2, 3}, count)
}

func TestUpsertPitchEventsConverges(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)

	n, err := w.UpsertPitchEvents(ctx, []schema.Row{
		eventRow(1001, 1, 1, "1901-06-01", 98.5),
		eventRow(1001, 1, 2, "1901-06-01", nil),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// Same keys again with a corrected measurement: row count stays put,
	// the non-key column converges on the new value.
	n, err = w.UpsertPitchEvents(ctx, []schema.Row{
		eventRow(1001, 1, 1, "1901-06-01", 101.2),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM statcast").Scan(&count))
	require.Equal(t, 2, count)

	var speed float64
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT launch_speed FROM statcast WHERE game_pk = 1001 AND at_bat_number = 1 AND pitch_number = 1").Scan(&speed))
	require.Equal(t, 101.2, speed)
}

func TestDeletePitchEventsRange(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)

	_, err := w.UpsertPitchEvents(ctx, []schema.Row{
		eventRow(1001, 1, 1, "1901-06-01", 90.0),
		eventRow(1002, 1, 1, "1901-06-15", 91.0),
		eventRow(1003, 1, 1, "1901-07-01", 92.0),
	})
	require.NoError(t, err)

	deleted, err := w.DeletePitchEventsRange(ctx,
		time.Date(1901, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1901, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM statcast").Scan(&count))
	require.Equal(t, 1, count)
}

func TestBattingSummaryOrderAndQualifier(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)
	r := store.NewReader(pool)

	rows := []schema.Row{
		battingRow(1, "Big Bat", "AAA", 1901, int64(150)),
		battingRow(2, "Better Bat", "BBB", 1901, int64(180)),
		battingRow(3, "No Rating", "CCC", 1901, nil),
		battingRow(4, "Cup Of Coffee", "DDD", 1901, int64(400)),
	}
	rows[0]["plate_appearances"] = int64(600)
	rows[1]["plate_appearances"] = int64(650)
	rows[2]["plate_appearances"] = int64(500)
	rows[3]["plate_appearances"] = int64(4) // below the qualifier

	_, err := w.ReplaceSeason(ctx, schema.Batting, 1901, rows)
	require.NoError(t, err)

	got, err := r.BattingSummary(ctx, 1901, 10)
	require.NoError(t, err)
	require.Len(t, got, 3, "sub-qualifier rows are excluded")
	require.Equal(t, "Better Bat", got[0].PlayerName)
	require.Equal(t, "Big Bat", got[1].PlayerName)
	require.Equal(t, "No Rating", got[2].PlayerName, "NULL wRC+ sorts last")
	require.Nil(t, got[2].WRCPlus)
}

func TestStatsCoverage(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)
	r := store.NewReader(pool)

	_, err := w.ReplaceSeason(ctx, schema.Batting, 1901, []schema.Row{
		battingRow(1, "First Player", "AAA", 1901, int64(100)),
	})
	require.NoError(t, err)
	_, err = w.UpsertPitchEvents(ctx, []schema.Row{
		eventRow(1001, 1, 1, "1901-06-01", 90.0),
	})
	require.NoError(t, err)

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.BattingCount)
	require.Equal(t, int64(0), stats.PitchingCount)
	require.Equal(t, int64(1), stats.PitchEventCount)
	require.NotNil(t, stats.LatestSeason)
	require.Equal(t, 1901, *stats.LatestSeason)
	require.NotNil(t, stats.LatestGameDate)
}

func TestPlayerProfileNotFound(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)

	r := store.NewReader(pool)
	_, err := r.PlayerProfile(context.Background(), 424242, 0)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlayerProfileCombinesSides(t *testing.T) {
	skipIfNeeded(t)
	truncateAll(t)
	ctx := context.Background()
	w := store.NewWriter(pool, nil)
	r := store.NewReader(pool)

	_, err := w.ReplaceSeason(ctx, schema.Batting, 1901, []schema.Row{
		battingRow(17, "Two Way Star", "AAA", 1901, int64(160)),
	})
	require.NoError(t, err)

	pitching := schema.Row{
		"player_id": int64(17), "player_name": "Two Way Star", "team": "AAA",
		"season": int64(1901), "era": 2.50, "data_source": "fangraphs",
	}
	_, err = w.ReplaceSeason(ctx, schema.Pitching, 1901, []schema.Row{pitching})
	require.NoError(t, err)

	profile, err := r.PlayerProfile(ctx, 17, 0)
	require.NoError(t, err)
	require.Equal(t, "Two Way Star", profile.PlayerName)
	require.Len(t, profile.BattingSeasons, 1)
	require.Len(t, profile.PitchingSeasons, 1)
}
