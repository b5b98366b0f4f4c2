package store

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

func TestUpsertSQLShape(t *testing.T) {
	sql := upsertSQL(schema.PitchEvents)

	require.True(t, strings.HasPrefix(sql, "INSERT INTO statcast ("))
	require.Contains(t, sql, "ON CONFLICT (game_pk, at_bat_number, pitch_number) DO UPDATE SET")
	require.Contains(t, sql, "$1")
	require.Contains(t, sql, "$"+strconv.Itoa(len(schema.PitchEvents.Columns)))

	// Every non-key column takes the incoming value on conflict.
	for _, c := range schema.PitchEvents.NonKeyColumns() {
		require.Contains(t, sql, c+" = EXCLUDED."+c)
	}
	// Key columns never appear in the update list.
	require.NotContains(t, sql, "game_pk = EXCLUDED.game_pk")
	require.Contains(t, sql, "collected_at = now()")
}

func TestWindowLockKeyStable(t *testing.T) {
	a := windowLockKey(schema.KindBatting, "2025")
	b := windowLockKey(schema.KindBatting, "2025")
	require.Equal(t, a, b)

	require.NotEqual(t, a, windowLockKey(schema.KindBatting, "2024"))
	require.NotEqual(t, a, windowLockKey(schema.KindPitching, "2025"))
}

func TestDateWindow(t *testing.T) {
	rows := []schema.Row{
		{"game_date": "2025-06-03"},
		{"game_date": "2025-06-01"},
		{"game_date": time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
	require.Equal(t, "2025-06-01..2025-06-03", dateWindow(rows))

	require.Equal(t, "2025-06-01", dateWindow([]schema.Row{{"game_date": "2025-06-01"}}))
	require.Equal(t, "empty", dateWindow([]schema.Row{{"game_pk": int64(1)}}))
}

func TestNormalizeRowsRejectsUnknownColumn(t *testing.T) {
	rows := []schema.Row{
		{"game_pk": int64(1), "at_bat_number": int64(1), "pitch_number": int64(1), "game_date": "2025-06-01"},
		{"game_pk": int64(1), "at_bat_number": int64(1), "pitch_number": int64(2), "game_date": "2025-06-01", "bogus": 1},
	}
	_, err := normalizeRows(schema.PitchEvents, rows)

	var unexpected *schema.UnexpectedColumnError
	require.ErrorAs(t, err, &unexpected)
	require.Equal(t, "bogus", unexpected.Column)
	require.Contains(t, err.Error(), "row 1")
}

func TestNormalizeRowsOrdersValues(t *testing.T) {
	rows := []schema.Row{
		{"game_pk": int64(717465), "at_bat_number": int64(12), "pitch_number": int64(4), "game_date": "2025-06-01"},
	}
	values, err := normalizeRows(schema.PitchEvents, rows)
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Len(t, values[0], len(schema.PitchEvents.Columns))
	require.Equal(t, int64(717465), values[0][0])
}

func TestWrapExtractsPgCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UndefinedColumn, Message: "column does not exist"}
	err := wrap("replace_season", pgErr)

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, "replace_season", storeErr.Op)
	require.Equal(t, pgerrcode.UndefinedColumn, storeErr.Code)
	require.True(t, IsSchemaMismatch(err))
}

func TestWrapPlainError(t *testing.T) {
	err := wrap("upsert_pitch_events", errors.New("connection refused"))

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	require.Empty(t, storeErr.Code)
	require.False(t, IsSchemaMismatch(err))
	require.Contains(t, err.Error(), "upsert_pitch_events")
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, wrap("anything", nil))
}
