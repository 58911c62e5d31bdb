package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/beaconlabs/beacon/internal/storage"
)

// Column value coercion. The ClickHouse driver hands back a mix of
// numeric widths depending on column type and aggregate function, so
// every fold reads row values through these helpers.

func rowString(r storage.Row, key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func rowFloat(r storage.Row, key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func rowInt(r storage.Row, key string) int64 {
	return int64(rowFloat(r, key))
}

// utcDay truncates an epoch-millisecond timestamp to its UTC calendar
// date.
func utcDay(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

// safeDiv guards every ratio in the read path: zero denominator yields
// zero, never NaN or Inf.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// round2 rounds to two decimal places for percentages and averages.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
