package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2025-02-10")
	require.NoError(t, err)
	require.Equal(t, New(2025, time.February, 10), d)
	require.Equal(t, "2025-02-10", d.String())

	_, err = Parse("10/02/2025")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseFlexible(t *testing.T) {
	want := New(2025, time.February, 5)
	for _, in := range []string{"2025-02-05", "05/02/2025", "5/2/2025", "5 Feb 2025", "05 Feb 2025", "2025-02-05T10:00:00Z"} {
		got, err := ParseFlexible(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFlexible("next tuesday")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2025-02-07", false}, // Friday
		{"2025-02-08", true},  // Saturday
		{"2025-02-09", true},  // Sunday
		{"2025-02-10", false}, // Monday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsWeekend(MustParse(tt.date)), tt.date)
	}
}

func TestAdjustForWeekend(t *testing.T) {
	assert.Equal(t, MustParse("2025-02-10"), AdjustForWeekend(MustParse("2025-02-08")))
	assert.Equal(t, MustParse("2025-02-10"), AdjustForWeekend(MustParse("2025-02-09")))
	assert.Equal(t, MustParse("2025-02-11"), AdjustForWeekend(MustParse("2025-02-11")))
}

func TestAdjustForWeekend_Idempotent(t *testing.T) {
	d := MustParse("2025-01-01")
	for i := 0; i < 60; i++ {
		once := AdjustForWeekend(d)
		require.Equal(t, once, AdjustForWeekend(once), d.String())
		require.False(t, IsWeekend(once))
		d = d.AddDays(1)
	}
}

func TestAddBusinessDays(t *testing.T) {
	fri := MustParse("2025-02-07")
	assert.Equal(t, fri, AddBusinessDays(fri, 0))
	assert.Equal(t, MustParse("2025-02-10"), AddBusinessDays(fri, 1))
	assert.Equal(t, MustParse("2025-02-14"), AddBusinessDays(fri, 5))
	assert.Equal(t, MustParse("2025-02-06"), AddBusinessDays(fri, -1))
	assert.Equal(t, fri, AddBusinessDays(MustParse("2025-02-10"), -1))
	// counting starts after a weekend day too
	assert.Equal(t, MustParse("2025-02-10"), AddBusinessDays(MustParse("2025-02-08"), 1))
}

func TestBusinessDaysBetween(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2025-02-06", "2025-02-10", 3},
		{"2025-02-10", "2025-02-14", 5},
		{"2025-02-08", "2025-02-09", 0},
		{"2025-02-03", "2025-02-16", 10},
		{"2025-02-03", "2025-03-03", 21},
		{"2025-02-10", "2025-02-09", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BusinessDaysBetween(MustParse(tt.start), MustParse(tt.end)), tt.start+".."+tt.end)
	}
}

func TestDurationBetween(t *testing.T) {
	start, end := MustParse("2025-03-01"), MustParse("2025-03-10")
	assert.Equal(t, 10, DurationBetween(start, end, false))
	assert.Equal(t, 6, DurationBetween(start, end, true))
	assert.Equal(t, 1, DurationBetween(start, start, false))
	// a weekend-only span still counts as one day
	assert.Equal(t, 1, DurationBetween(MustParse("2025-03-01"), MustParse("2025-03-02"), true))
}

func TestDurationRoundTrip(t *testing.T) {
	start := MustParse("2025-01-01")
	for day := 0; day < 14; day++ {
		for duration := 1; duration <= 25; duration++ {
			for _, skip := range []bool{false, true} {
				end := EndFromDuration(start, duration, skip)
				require.False(t, end.Before(start))
				require.Equal(t, duration, DurationBetween(start, end, skip),
					"start=%s duration=%d skip=%v end=%s", start, duration, skip, end)

				back := StartFromDuration(end, duration, skip)
				require.Equal(t, duration, DurationBetween(back, end, skip),
					"end=%s duration=%d skip=%v start=%s", end, duration, skip, back)
			}
		}
		start = start.AddDays(1)
	}
}

func TestRange(t *testing.T) {
	start, end := MustParse("2025-01-15"), MustParse("2025-04-02")
	require.Len(t, Range(start, start.AddDays(2), ScaleDay), 3)
	assert.Equal(t, []Date{MustParse("2025-01-15"), MustParse("2025-02-15"), MustParse("2025-03-15")}, Range(start, end, ScaleMonth))
	assert.Len(t, Range(start, end, ScaleWeek), 12)

	scale, err := ParseScale("week")
	require.NoError(t, err)
	assert.Equal(t, ScaleWeek, scale)
	_, err = ParseScale("Year")
	require.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
	b, err := json.Marshal(payload{Start: MustParse("2025-02-10")})
	require.NoError(t, err)
	require.JSONEq(t, `{"start":"2025-02-10","end":null}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-03-01","end":null}`), &p))
	require.Equal(t, MustParse("2025-03-01"), p.Start)
	require.True(t, p.End.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"start":"01/03/2025"}`), &p))
}

func TestMaxAndFormat(t *testing.T) {
	a, b := MustParse("2025-02-10"), MustParse("2025-02-07")
	require.Equal(t, a, Max(b, a, b))
	require.True(t, Max().IsZero())
	require.Equal(t, "Feb 10, 2025", a.Format())
}
