package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d.String())

	d, err = Parse("2025-03-09T23:10:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d.String(), "timestamp is truncated, not converted")

	_, err = Parse("09/03/2025")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
}

func TestOnUsesLocation(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*60*60)
	instant := time.Date(2025, 1, 31, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-01-31", On(instant, time.UTC).String())
	assert.Equal(t, "2025-02-01", On(instant, karachi).String())
	assert.Equal(t, "2025-01-31", On(instant, nil).String())
}

func TestWithinIsInclusive(t *testing.T) {
	start := MustParse("2025-05-01")
	end := MustParse("2025-05-10")

	assert.True(t, start.Within(start, end))
	assert.True(t, end.Within(start, end))
	assert.True(t, MustParse("2025-05-05").Within(start, end))
	assert.False(t, start.AddDays(-1).Within(start, end))
	assert.False(t, end.AddDays(1).Within(start, end))
}

func TestAddDaysCrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, "2025-03-01", MustParse("2025-02-28").AddDays(1).String())
	assert.Equal(t, "2024-12-31", MustParse("2025-01-01").AddDays(-1).String())
}

func TestMinMax(t *testing.T) {
	a := MustParse("2025-01-01")
	b := MustParse("2025-06-01")
	assert.Equal(t, b, Max(a, b))
	assert.Equal(t, a, Min(a, b))
}

func TestJSON(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
	raw, err := json.Marshal(payload{Start: MustParse("2025-07-04")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-07-04","end":null}`, string(raw))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-07-04","end":"2025-07-10"}`), &p))
	assert.Equal(t, "2025-07-10", p.End.String())

	assert.Error(t, json.Unmarshal([]byte(`{"start":"July 4"}`), &p))
}

func TestScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-08-15", d.String())

	require.NoError(t, d.Scan([]byte("2025-08-16")))
	assert.Equal(t, "2025-08-16", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
