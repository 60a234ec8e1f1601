// Package week provides the calendar utilities shared by the scheduling
// resolver and the API layer. All computations treat a date as a plain
// calendar day: values are normalized to midnight UTC so that a date
// string round-trips to the same weekday regardless of the host timezone.
package week

import (
	"fmt"
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
)

// DateLayout is the canonical YYYY-MM-DD form used for completion keys,
// week identifiers, and one-off activity dates.
const DateLayout = "2006-01-02"

// Date normalizes t to its calendar day at midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Start returns the first day (Sunday) of the week containing t.
func Start(t time.Time) time.Time {
	d := Date(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// End returns the last day (Saturday) of the week containing t.
func End(t time.Time) time.Time {
	return Start(t).AddDate(0, 0, 6)
}

// Identifier returns the canonical string key for the week containing t:
// the formatted date of the week's first day.
func Identifier(t time.Time) string {
	return FormatDate(Start(t))
}

// Days returns the ordered seven days of the week containing t.
func Days(t time.Time) []time.Time {
	start := Start(t)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// FormatDate formats t as a date key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as a calendar date at midnight
// UTC. It is not a timestamp parse: "2024-03-10" is the same day on
// every host.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DayForDate returns the schedule label for t's weekday.
func DayForDate(t time.Time) model.DayOfWeek {
	return model.DayFor(t.Weekday())
}
