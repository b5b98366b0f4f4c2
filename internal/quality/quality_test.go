package quality

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

func battingRow(name, team string, season int64) schema.Row {
	return schema.Row{
		"player_id":   int64(1),
		"player_name": name,
		"team":        team,
		"season":      season,
		"data_source": "fangraphs",
	}
}

func TestCheckEmptyBatchFails(t *testing.T) {
	rep := New().Check(nil, schema.Batting)
	require.False(t, rep.Passed)
	require.Zero(t, rep.TotalRecords)
	require.Contains(t, rep.Issues, "empty result set")
}

func TestCheckCleanBatchPasses(t *testing.T) {
	rows := []schema.Row{
		battingRow("Aaron Judge", "NYY", 2025),
		battingRow("Juan Soto", "NYM", 2025),
	}
	rep := New().Check(rows, schema.Batting)
	require.True(t, rep.Passed)
	require.Equal(t, 2, rep.TotalRecords)
	require.Zero(t, rep.DuplicateCount)
}

func TestCheckNullDensityAdvisory(t *testing.T) {
	// woba absent in 2 of 3 rows: above the 0.5 threshold, but the batch
	// still passes.
	rows := []schema.Row{
		battingRow("Aaron Judge", "NYY", 2025),
		battingRow("Juan Soto", "NYM", 2025),
		battingRow("Mookie Betts", "LAD", 2025),
	}
	rows[0]["woba"] = 0.479

	rep := New().Check(rows, schema.Batting)
	require.True(t, rep.Passed)
	require.InDelta(t, 2.0/3.0, rep.NullPercentages["woba"], 1e-9)
	require.Contains(t, rep.Issues, "column woba is 67% null")
}

func TestCheckNullThresholdBoundary(t *testing.T) {
	// Exactly at the threshold is not an issue; only above it.
	rows := []schema.Row{
		battingRow("A", "AAA", 2025),
		battingRow("B", "BBB", 2025),
	}
	rows[0]["woba"] = 0.300

	rep := New().Check(rows, schema.Batting)
	require.InDelta(t, 0.5, rep.NullPercentages["woba"], 1e-9)
	for _, issue := range rep.Issues {
		require.NotContains(t, issue, "woba")
	}
}

func TestCheckDuplicatesByNaturalKey(t *testing.T) {
	// Batting natural key is player_name+team: three copies of one player
	// count as two duplicates.
	rows := []schema.Row{
		battingRow("Aaron Judge", "NYY", 2025),
		battingRow("Aaron Judge", "NYY", 2025),
		battingRow("Aaron Judge", "NYY", 2025),
		battingRow("Juan Soto", "NYM", 2025),
	}
	rep := New().Check(rows, schema.Batting)
	require.True(t, rep.Passed, "duplicates are advisory")
	require.Equal(t, 2, rep.DuplicateCount)
	require.Contains(t, rep.Issues, "2 duplicate rows by natural key (player_name+team)")
}

func TestCheckSamePlayerDifferentTeamIsNotDuplicate(t *testing.T) {
	rows := []schema.Row{
		battingRow("Juan Soto", "SD", 2024),
		battingRow("Juan Soto", "WSH", 2024),
	}
	rep := New().Check(rows, schema.Batting)
	require.Zero(t, rep.DuplicateCount)
}

func TestCheckDoesNotMutateRows(t *testing.T) {
	row := battingRow("Aaron Judge", "NYY", 2025)
	rows := []schema.Row{row}
	before := len(row)

	New().Check(rows, schema.Batting)
	require.Len(t, row, before)
	require.Equal(t, "Aaron Judge", row["player_name"])
}

func TestCheckCustomThreshold(t *testing.T) {
	v := &Validator{NullThreshold: 0.1}
	rows := []schema.Row{
		battingRow("A", "AAA", 2025),
		battingRow("B", "BBB", 2025),
		battingRow("C", "CCC", 2025),
	}
	rows[0]["woba"] = 0.300
	rows[1]["woba"] = 0.310

	rep := v.Check(rows, schema.Batting)
	require.Contains(t, rep.Issues, "column woba is 33% null")
}
