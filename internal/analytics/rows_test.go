package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beaconlabs/beacon/internal/storage"
)

func TestRowCoercion(t *testing.T) {
	r := storage.Row{
		"s":   "hello",
		"f64": 1.5,
		"f32": float32(2.5),
		"i64": int64(7),
		"u64": uint64(9),
		"num": "3.25",
	}

	assert.Equal(t, "hello", rowString(r, "s"))
	assert.Equal(t, "", rowString(r, "missing"))

	assert.Equal(t, 1.5, rowFloat(r, "f64"))
	assert.Equal(t, 2.5, rowFloat(r, "f32"))
	assert.Equal(t, 7.0, rowFloat(r, "i64"))
	assert.Equal(t, 9.0, rowFloat(r, "u64"))
	assert.Equal(t, 3.25, rowFloat(r, "num"))
	assert.Equal(t, 0.0, rowFloat(r, "missing"))

	assert.Equal(t, int64(7), rowInt(r, "i64"))
	assert.Equal(t, int64(1), rowInt(r, "f64"))
	assert.Equal(t, int64(0), rowInt(r, "missing"))
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 2.5, safeDiv(5, 2))
	assert.Equal(t, 0.0, safeDiv(5, 0))
	assert.Equal(t, 0.0, safeDiv(0, 0))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 11.67, round2(11.666666))
	assert.Equal(t, 33.33, round2(33.3333))
	assert.Equal(t, 10.0, round2(10))
	assert.Equal(t, -2.35, round2(-2.345))
}

func TestUTCDay(t *testing.T) {
	assert.Equal(t, "2024-01-15", utcDay(day1Noon))
	assert.Equal(t, "2024-01-16", utcDay(day2Noon))
	assert.Equal(t, "1970-01-01", utcDay(0))
}
