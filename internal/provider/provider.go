// Package provider holds the pieces shared by the external stat clients:
// the API error type and raw value parsing.
//
// FanGraphs returns JSON numbers, Baseball Savant returns CSV strings, and
// both mark absent values with empty strings or dash placeholders. The
// helpers here normalize all of that to typed values or nil — never to zero,
// which is a legal stat value.
package provider

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// APIError reports a non-200 response from an external provider.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Body)
}

// Truncate returns a truncated string representation for error messages.
func Truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

// Float normalizes a raw provider value to float64 or nil.
func Float(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, ok := parseNumber(t)
		if !ok {
			return nil
		}
		return f
	default:
		return nil
	}
}

// Int normalizes a raw provider value to int64 or nil. Fractional inputs
// truncate toward zero, matching integer stat semantics.
func Int(v any) any {
	f := Float(v)
	if f == nil {
		return nil
	}
	return int64(f.(float64))
}

// Text normalizes a raw provider value to a non-empty string or nil.
func Text(v any) any {
	s := strings.TrimSpace(String(v))
	if s == "" || s == "-" || strings.EqualFold(s, "null") {
		return nil
	}
	return s
}

// String returns the string form of v, or "" when absent.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// StringOr returns the trimmed string form of v, or fallback when absent.
func StringOr(v any, fallback string) string {
	s := strings.TrimSpace(String(v))
	if s == "" || s == "-" || strings.EqualFold(s, "null") {
		return fallback
	}
	return s
}

// parseNumber parses a provider numeric string. Absent markers and
// unparseable values report ok=false rather than an error: a malformed cell
// becomes NULL and shows up in validation null density, it does not abort
// a whole collection run.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return 0, false
	}
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
