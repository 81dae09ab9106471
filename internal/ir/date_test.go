package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d.String())

	_, err = ParseDate("2024-1-31")
	assert.Error(t, err)
	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestDate_AddDays(t *testing.T) {
	d := MustParseDate("2024-02-28")
	assert.Equal(t, "2024-02-29", d.AddDays(1).String(), "leap day")
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2023-02-28", d.AddDays(-365).String())
	assert.Equal(t, 365, d.DaysSince(d.AddDays(-365)))
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-01-01", DateOf(ts).String())
	assert.Equal(t, "2024-01-02", DateOf(ts.UTC()).String())
}

func TestDate_TextMarshaling(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2025-06-01")))
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", string(b))

	assert.Error(t, d.UnmarshalText([]byte("June 1")))
}

func TestDate_Ordering(t *testing.T) {
	a := MustParseDate("2024-01-01")
	b := MustParseDate("2024-01-02")
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, Date{}.IsZero())
	assert.False(t, a.IsZero())
}
