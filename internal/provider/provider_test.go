package provider

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	require.Equal(t, 0.322, Float(0.322))
	require.Equal(t, 0.0, Float(0), "zero is a legal value, not a missing marker")
	require.Equal(t, 7.0, Float(int64(7)))
	require.Equal(t, 45.3, Float("45.3%"))
	require.Equal(t, 0.479, Float(" 0.479 "))

	require.Nil(t, Float(nil))
	require.Nil(t, Float(math.NaN()))
	require.Nil(t, Float(math.Inf(-1)))
	require.Nil(t, Float(""))
	require.Nil(t, Float("-"))
	require.Nil(t, Float("null"))
	require.Nil(t, Float("NaN"))
	require.Nil(t, Float("$45.3"))
	require.Nil(t, Float(true))
}

func TestInt(t *testing.T) {
	require.Equal(t, int64(218), Int(218.0))
	require.Equal(t, int64(218), Int("218"))
	require.Equal(t, int64(0), Int(0))
	require.Equal(t, int64(5), Int("5.9"), "fractional input truncates")

	require.Nil(t, Int(nil))
	require.Nil(t, Int(""))
	require.Nil(t, Int("abc"))
	require.Nil(t, Int(math.NaN()))
}

func TestText(t *testing.T) {
	require.Equal(t, "home_run", Text("home_run"))
	require.Equal(t, "FF", Text(" FF "))

	require.Nil(t, Text(""))
	require.Nil(t, Text("   "))
	require.Nil(t, Text("-"))
	require.Nil(t, Text("null"))
	require.Nil(t, Text(nil))
}

func TestStringOr(t *testing.T) {
	require.Equal(t, "NYY", StringOr("NYY", "UNK"))
	require.Equal(t, "UNK", StringOr("", "UNK"))
	require.Equal(t, "UNK", StringOr(nil, "UNK"))
	require.Equal(t, "Unknown", StringOr("-", "Unknown"))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate([]byte("abc"), 5))
	require.Equal(t, "abcde...", Truncate([]byte("abcdefgh"), 5))
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Provider: "fangraphs", Status: 503, Body: "upstream down"}
	require.Equal(t, "fangraphs returned 503: upstream down", err.Error())
}
