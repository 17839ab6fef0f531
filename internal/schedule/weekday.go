package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidWeekday = errors.New("invalid weekday")

// Weekdays is the canonical seven-day vocabulary, in week order.
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

var weekdayNumbers = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

// NormalizeWeekday maps a weekday name in any casing to its canonical form.
func NormalizeWeekday(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	for _, day := range Weekdays {
		if strings.EqualFold(trimmed, day) {
			return day, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}

// WeekdayNumber maps a canonical weekday name to its time.Weekday value.
func WeekdayNumber(canonical string) (time.Weekday, bool) {
	n, ok := weekdayNumbers[canonical]
	return n, ok
}

// NextDateFor resolves a weekday name to the next concrete calendar date
// strictly after the reference date. When the reference date already falls on
// the requested weekday the result is that weekday one week out, so a request
// made on a Monday for "Monday" lands on next Monday rather than today.
func NextDateFor(weekday string, ref time.Time) (time.Time, error) {
	canon, err := NormalizeWeekday(weekday)
	if err != nil {
		return time.Time{}, err
	}

	delta := int(weekdayNumbers[canon]) - int(ref.Weekday())
	if delta <= 0 {
		delta += 7
	}

	return TruncateToDate(ref.AddDate(0, 0, delta)), nil
}

// TruncateToDate drops the time-of-day component. Slot times are carried as
// opaque labels, never on the date itself.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
