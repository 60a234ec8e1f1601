// Package schedule resolves which occurrences of an activity fall on
// which days of a week, applying per-week overrides and soft deletions.
// It is the single source of truth for "is this scheduled today": the
// coin ledger and the API week view both go through it.
package schedule

import (
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/week"
)

// Override returns the override record for the given week, if any.
func Override(a *model.Activity, weekID string) (model.ActivityOverride, bool) {
	o, ok := a.Overrides[weekID]
	return o, ok
}

// EffectiveName returns the display name for the activity in the given
// week: the week's name override if set, else the base name.
func EffectiveName(a *model.Activity, weekID string) string {
	if o, ok := a.Overrides[weekID]; ok && o.Name != nil {
		return *o.Name
	}
	return a.Name
}

// EffectiveDays returns the weekday set in effect for the given week.
// For one-off activities the set is the single weekday of the activity's
// date; day overrides are meaningless for them. For weekly activities the
// week's days override wins, else the base days. Fallback is per field
// and always to the base activity, never to another week's override.
func EffectiveDays(a *model.Activity, weekID string) []model.DayOfWeek {
	if a.Recurrence == model.RecurrenceOnce {
		d, err := week.ParseDate(a.Date)
		if err != nil {
			return nil
		}
		return []model.DayOfWeek{week.DayForDate(d)}
	}
	if o, ok := a.Overrides[weekID]; ok && o.Days != nil {
		return o.Days
	}
	return a.Days
}

// IsScheduled reports whether the activity has an occurrence on day.
// An activity deleted for day's week produces no occurrences at all.
func IsScheduled(a *model.Activity, day time.Time) bool {
	weekID := week.Identifier(day)
	if a.DeletedInWeek(weekID) {
		return false
	}
	if a.Recurrence == model.RecurrenceOnce {
		return a.Date == week.FormatDate(day)
	}
	label := week.DayForDate(day)
	for _, d := range EffectiveDays(a, weekID) {
		if d == label {
			return true
		}
	}
	return false
}

// ScheduledDates returns every date in the week containing t on which the
// activity is scheduled, in day order. Empty when the activity is deleted
// for that week or has no occurrences there.
func ScheduledDates(a *model.Activity, t time.Time) []time.Time {
	var dates []time.Time
	for _, day := range week.Days(t) {
		if IsScheduled(a, day) {
			dates = append(dates, day)
		}
	}
	return dates
}

// Visible filters activities to those shown for the week containing t:
// weekly-deleted activities are hidden, and one-off activities appear
// only in the week containing their date.
func Visible(activities []model.Activity, t time.Time) []model.Activity {
	weekID := week.Identifier(t)
	start, end := week.Start(t), week.End(t)

	var out []model.Activity
	for i := range activities {
		a := &activities[i]
		if a.DeletedInWeek(weekID) {
			continue
		}
		if a.Recurrence == model.RecurrenceOnce {
			d, err := week.ParseDate(a.Date)
			if err != nil {
				continue
			}
			if d.Before(start) || d.After(end) {
				continue
			}
		}
		out = append(out, *a)
	}
	return out
}
