package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-01-07 is a Wednesday.
var refWednesday = time.Date(2026, time.January, 7, 15, 30, 0, 0, time.UTC)

func TestNormalizeWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Monday", "Monday"},
		{"monday", "Monday"},
		{"TUESDAY", "Tuesday"},
		{"  friday ", "Friday"},
		{"sUnDaY", "Sunday"},
	}

	for _, tt := range tests {
		got, err := NormalizeWeekday(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeWeekdayInvalid(t *testing.T) {
	for _, in := range []string{"", "Mon", "Funday", "tomorrow", "1"} {
		_, err := NormalizeWeekday(in)
		assert.ErrorIs(t, err, ErrInvalidWeekday, in)
	}
}

func TestNextDateForFutureWeekday(t *testing.T) {
	got, err := NextDateFor("Friday", refWednesday)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.Friday, got.Weekday())
}

func TestNextDateForEarlierWeekdayWraps(t *testing.T) {
	got, err := NextDateFor("Monday", refWednesday)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.Monday, got.Weekday())
}

func TestNextDateForSameDayRollsToNextWeek(t *testing.T) {
	got, err := NextDateFor("Wednesday", refWednesday)
	require.NoError(t, err)

	// Asking for today's weekday lands a full week out, never today.
	assert.Equal(t, time.Date(2026, time.January, 14, 0, 0, 0, 0, time.UTC), got)
}

func TestNextDateForDeterministic(t *testing.T) {
	first, err := NextDateFor("Saturday", refWednesday)
	require.NoError(t, err)
	second, err := NextDateFor("Saturday", refWednesday)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNextDateForAlwaysMatchesRequestedWeekday(t *testing.T) {
	for _, day := range Weekdays {
		for offset := 0; offset < 14; offset++ {
			ref := refWednesday.AddDate(0, 0, offset)
			got, err := NextDateFor(day, ref)
			require.NoError(t, err)

			num, ok := WeekdayNumber(day)
			require.True(t, ok)
			assert.Equal(t, num, got.Weekday())
			assert.True(t, got.After(TruncateToDate(ref)), "%s from %s must be strictly in the future", day, ref)
		}
	}
}

func TestNextDateForInvalidWeekday(t *testing.T) {
	_, err := NextDateFor("Noday", refWednesday)
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestNextDateForTruncatesTimeOfDay(t *testing.T) {
	got, err := NextDateFor("Thursday", refWednesday)
	require.NoError(t, err)

	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, 0, got.Second())
}
