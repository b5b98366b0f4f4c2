package store

import (
	"context"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/db"
)

// Summary thresholds: leaderboard reads ignore sub-qualifier rows so a
// September call-up with 4 great plate appearances does not top the board.
const (
	summaryMinPA = 10
	summaryMinIP = 10
)

// Reader serves the query side of the stat tables. All queries run against
// statements prepared at connection time.
type Reader struct {
	pool *db.Pool
}

// NewReader creates a Reader.
func NewReader(pool *db.Pool) *Reader {
	return &Reader{pool: pool}
}

// BattingSummaryRow is one leaderboard line. Pointer fields are NULL-able
// stats.
type BattingSummaryRow struct {
	PlayerID         int64    `json:"player_id"`
	PlayerName       string   `json:"player_name"`
	Team             string   `json:"team"`
	Games            *int64   `json:"games"`
	PlateAppearances *int64   `json:"plate_appearances"`
	HomeRuns         *int64   `json:"home_runs"`
	WOBA             *float64 `json:"woba"`
	WRCPlus          *int64   `json:"wrc_plus"`
	WAR              *float64 `json:"war"`
}

// BattingSummary returns the top season batting lines by wRC+.
func (r *Reader) BattingSummary(ctx context.Context, season, limit int) ([]BattingSummaryRow, error) {
	rows, err := r.pool.Query(ctx, "batting_summary", season, summaryMinPA, limit)
	if err != nil {
		return nil, wrap("batting_summary", err)
	}
	defer rows.Close()

	var out []BattingSummaryRow
	for rows.Next() {
		var b BattingSummaryRow
		if err := rows.Scan(&b.PlayerID, &b.PlayerName, &b.Team, &b.Games,
			&b.PlateAppearances, &b.HomeRuns, &b.WOBA, &b.WRCPlus, &b.WAR); err != nil {
			return nil, wrap("batting_summary", err)
		}
		out = append(out, b)
	}
	return out, wrap("batting_summary", rows.Err())
}

// PitchingSummaryRow is one pitching leaderboard line.
type PitchingSummaryRow struct {
	PlayerID       int64    `json:"player_id"`
	PlayerName     string   `json:"player_name"`
	Team           string   `json:"team"`
	Wins           *int64   `json:"wins"`
	Losses         *int64   `json:"losses"`
	Games          *int64   `json:"games"`
	InningsPitched *float64 `json:"innings_pitched"`
	ERA            *float64 `json:"era"`
	WHIP           *float64 `json:"whip"`
	FIP            *float64 `json:"fip"`
	Strikeouts     *int64   `json:"strikeouts"`
	WAR            *float64 `json:"war"`
}

// PitchingSummary returns the top season pitching lines by WAR.
func (r *Reader) PitchingSummary(ctx context.Context, season, limit int) ([]PitchingSummaryRow, error) {
	rows, err := r.pool.Query(ctx, "pitching_summary", season, summaryMinIP, limit)
	if err != nil {
		return nil, wrap("pitching_summary", err)
	}
	defer rows.Close()

	var out []PitchingSummaryRow
	for rows.Next() {
		var p PitchingSummaryRow
		if err := rows.Scan(&p.PlayerID, &p.PlayerName, &p.Team, &p.Wins, &p.Losses,
			&p.Games, &p.InningsPitched, &p.ERA, &p.WHIP, &p.FIP, &p.Strikeouts, &p.WAR); err != nil {
			return nil, wrap("pitching_summary", err)
		}
		out = append(out, p)
	}
	return out, wrap("pitching_summary", rows.Err())
}

// PitchEventRow is one recent batted-ball line.
type PitchEventRow struct {
	PlayerName      *string   `json:"player_name"`
	GameDate        time.Time `json:"game_date"`
	Events          *string   `json:"events"`
	LaunchSpeed     *float64  `json:"launch_speed"`
	LaunchAngle     *float64  `json:"launch_angle"`
	ReleaseSpinRate *float64  `json:"release_spin_rate"`
	EstimatedWOBA   *float64  `json:"estimated_woba_using_speedangle"`
	PfxX            *float64  `json:"pfx_x"`
	PfxZ            *float64  `json:"pfx_z"`
	PlateX          *float64  `json:"plate_x"`
	PlateZ          *float64  `json:"plate_z"`
}

// PitchEventSummary returns the hardest-hit recent batted balls.
func (r *Reader) PitchEventSummary(ctx context.Context, limit int) ([]PitchEventRow, error) {
	rows, err := r.pool.Query(ctx, "statcast_summary", limit)
	if err != nil {
		return nil, wrap("statcast_summary", err)
	}
	defer rows.Close()

	var out []PitchEventRow
	for rows.Next() {
		var e PitchEventRow
		if err := rows.Scan(&e.PlayerName, &e.GameDate, &e.Events, &e.LaunchSpeed,
			&e.LaunchAngle, &e.ReleaseSpinRate, &e.EstimatedWOBA,
			&e.PfxX, &e.PfxZ, &e.PlateX, &e.PlateZ); err != nil {
			return nil, wrap("statcast_summary", err)
		}
		out = append(out, e)
	}
	return out, wrap("statcast_summary", rows.Err())
}

// Stats reports table counts and data coverage.
type Stats struct {
	BattingCount    int64      `json:"fangraphs_batting_count"`
	PitchingCount   int64      `json:"fangraphs_pitching_count"`
	PitchEventCount int64      `json:"statcast_count"`
	LatestSeason    *int       `json:"latest_fangraphs_season"`
	LatestGameDate  *time.Time `json:"latest_statcast_date"`
}

// Stats returns row counts and latest coverage per table.
func (r *Reader) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, "table_stats").Scan(
		&s.BattingCount, &s.PitchingCount, &s.PitchEventCount,
		&s.LatestSeason, &s.LatestGameDate)
	if err != nil {
		return Stats{}, wrap("table_stats", err)
	}
	return s, nil
}

// LatestWrites returns the most recent collected_at per source. Sources
// that have never been written are absent. Used to seed freshness state
// on startup.
func (r *Reader) LatestWrites(ctx context.Context) (map[string]time.Time, error) {
	stmts := map[string]string{
		"fangraphs_batting":  "latest_batting_write",
		"fangraphs_pitching": "latest_pitching_write",
		"statcast":           "latest_statcast_write",
	}
	out := make(map[string]time.Time, len(stmts))
	for source, stmt := range stmts {
		var last *time.Time
		if err := r.pool.QueryRow(ctx, stmt).Scan(&last); err != nil {
			return nil, wrap(stmt, err)
		}
		if last != nil {
			out[source] = *last
		}
	}
	return out, nil
}

// PlayerSearchRow is one search hit.
type PlayerSearchRow struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Team       string `json:"team"`
	Season     int    `json:"season"`
	Role       string `json:"role"`
}

// SearchPlayers finds players by case-insensitive partial name across the
// batting and pitching tables.
func (r *Reader) SearchPlayers(ctx context.Context, query string, limit int) ([]PlayerSearchRow, error) {
	rows, err := r.pool.Query(ctx, "player_search", "%"+query+"%", limit)
	if err != nil {
		return nil, wrap("player_search", err)
	}
	defer rows.Close()

	var out []PlayerSearchRow
	for rows.Next() {
		var p PlayerSearchRow
		if err := rows.Scan(&p.PlayerID, &p.PlayerName, &p.Team, &p.Season, &p.Role); err != nil {
			return nil, wrap("player_search", err)
		}
		out = append(out, p)
	}
	return out, wrap("player_search", rows.Err())
}

// PlayerSeason is one season line inside a profile.
type PlayerSeason struct {
	Season           int      `json:"season"`
	Team             string   `json:"team"`
	Games            *int64   `json:"games,omitempty"`
	PlateAppearances *int64   `json:"plate_appearances,omitempty"`
	HomeRuns         *int64   `json:"home_runs,omitempty"`
	WOBA             *float64 `json:"woba,omitempty"`
	WRCPlus          *int64   `json:"wrc_plus,omitempty"`
	Wins             *int64   `json:"wins,omitempty"`
	Losses           *int64   `json:"losses,omitempty"`
	InningsPitched   *float64 `json:"innings_pitched,omitempty"`
	ERA              *float64 `json:"era,omitempty"`
	WHIP             *float64 `json:"whip,omitempty"`
	FIP              *float64 `json:"fip,omitempty"`
	WAR              *float64 `json:"war,omitempty"`
}

// RecentEvent is one recent pitch outcome inside a profile.
type RecentEvent struct {
	GameDate     time.Time `json:"game_date"`
	Events       *string   `json:"events"`
	Description  *string   `json:"description"`
	PitchType    *string   `json:"pitch_type"`
	ReleaseSpeed *float64  `json:"release_speed"`
	LaunchSpeed  *float64  `json:"launch_speed"`
	LaunchAngle  *float64  `json:"launch_angle"`
}

// PlayerProfile combines a player's season lines and recent pitch outcomes.
type PlayerProfile struct {
	PlayerID        int64          `json:"player_id"`
	PlayerName      string         `json:"player_name"`
	BattingSeasons  []PlayerSeason `json:"batting_seasons"`
	PitchingSeasons []PlayerSeason `json:"pitching_seasons"`
	RecentEvents    []RecentEvent  `json:"recent_events"`
}

// PlayerProfile loads one player by FanGraphs ID. A non-zero season narrows
// the season lines; recent events are matched by the player's listed name,
// since pitch events carry MLBAM identifiers instead. Returns ErrNotFound
// when the ID has no rows in either leaderboard table.
func (r *Reader) PlayerProfile(ctx context.Context, playerID int64, season int) (*PlayerProfile, error) {
	const op = "player_profile"

	profile := &PlayerProfile{PlayerID: playerID}

	batting, name, err := r.playerBattingSeasons(ctx, playerID)
	if err != nil {
		return nil, err
	}
	pitching, pname, err := r.playerPitchingSeasons(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = pname
	}
	if len(batting) == 0 && len(pitching) == 0 {
		return nil, wrap(op, ErrNotFound)
	}

	profile.PlayerName = name
	profile.BattingSeasons = filterSeason(batting, season)
	profile.PitchingSeasons = filterSeason(pitching, season)

	events, err := r.playerRecentEvents(ctx, name, 10)
	if err != nil {
		return nil, err
	}
	profile.RecentEvents = events
	return profile, nil
}

func (r *Reader) playerBattingSeasons(ctx context.Context, playerID int64) ([]PlayerSeason, string, error) {
	rows, err := r.pool.Query(ctx, "player_batting_seasons", playerID)
	if err != nil {
		return nil, "", wrap("player_batting_seasons", err)
	}
	defer rows.Close()

	var out []PlayerSeason
	var name string
	for rows.Next() {
		var s PlayerSeason
		if err := rows.Scan(&name, &s.Season, &s.Team, &s.Games, &s.PlateAppearances,
			&s.HomeRuns, &s.WOBA, &s.WRCPlus, &s.WAR); err != nil {
			return nil, "", wrap("player_batting_seasons", err)
		}
		out = append(out, s)
	}
	return out, name, wrap("player_batting_seasons", rows.Err())
}

func (r *Reader) playerPitchingSeasons(ctx context.Context, playerID int64) ([]PlayerSeason, string, error) {
	rows, err := r.pool.Query(ctx, "player_pitching_seasons", playerID)
	if err != nil {
		return nil, "", wrap("player_pitching_seasons", err)
	}
	defer rows.Close()

	var out []PlayerSeason
	var name string
	for rows.Next() {
		var s PlayerSeason
		if err := rows.Scan(&name, &s.Season, &s.Team, &s.Wins, &s.Losses,
			&s.InningsPitched, &s.ERA, &s.WHIP, &s.FIP, &s.WAR); err != nil {
			return nil, "", wrap("player_pitching_seasons", err)
		}
		out = append(out, s)
	}
	return out, name, wrap("player_pitching_seasons", rows.Err())
}

func (r *Reader) playerRecentEvents(ctx context.Context, name string, limit int) ([]RecentEvent, error) {
	if name == "" {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, "player_recent_events", name, limit)
	if err != nil {
		return nil, wrap("player_recent_events", err)
	}
	defer rows.Close()

	var out []RecentEvent
	for rows.Next() {
		var e RecentEvent
		if err := rows.Scan(&e.GameDate, &e.Events, &e.Description, &e.PitchType,
			&e.ReleaseSpeed, &e.LaunchSpeed, &e.LaunchAngle); err != nil {
			return nil, wrap("player_recent_events", err)
		}
		out = append(out, e)
	}
	return out, wrap("player_recent_events", rows.Err())
}

func filterSeason(seasons []PlayerSeason, season int) []PlayerSeason {
	if season == 0 {
		return seasons
	}
	var out []PlayerSeason
	for _, s := range seasons {
		if s.Season == season {
			out = append(out, s)
		}
	}
	return out
}
