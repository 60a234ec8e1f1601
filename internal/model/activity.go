package model

// Recurrence describes how often an activity occurs.
type Recurrence string

const (
	RecurrenceWeekly Recurrence = "weekly"
	RecurrenceOnce   Recurrence = "once"
)

// ActivityOverride is a per-week patch to an activity's name and/or
// scheduled days. Unset fields fall back to the base activity, never to
// another week's override.
type ActivityOverride struct {
	Name *string     `json:"name,omitempty"`
	Days []DayOfWeek `json:"days,omitempty"`
}

// Activity is a mission definition: either weekly on a set of days, or a
// one-off on a single date. Completion state is keyed by calendar date
// (YYYY-MM-DD); overrides and weekly deletions are keyed by week
// identifier (the date of the week's first day).
type Activity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Recurrence Recurrence `json:"recurrence"`

	// Days is the base weekday set for weekly activities.
	Days []DayOfWeek `json:"days,omitempty"`
	// Date is the calendar date (YYYY-MM-DD) for one-off activities.
	Date string `json:"date,omitempty"`

	Overrides      map[string]ActivityOverride `json:"overrides,omitempty"`
	Completed      map[string]bool             `json:"completed,omitempty"`
	DeletedInWeeks []string                    `json:"deletedInWeeks,omitempty"`
}

// CompletedOn reports whether the activity is marked completed on the
// given date key. A missing map or entry means not completed.
func (a *Activity) CompletedOn(dateKey string) bool {
	return a.Completed[dateKey]
}

// SetCompleted writes an explicit completion flag for the date key,
// allocating the map on first use.
func (a *Activity) SetCompleted(dateKey string, done bool) {
	if a.Completed == nil {
		a.Completed = make(map[string]bool)
	}
	a.Completed[dateKey] = done
}

// DeletedInWeek reports whether the activity is soft-deleted for the week.
func (a *Activity) DeletedInWeek(weekID string) bool {
	for _, w := range a.DeletedInWeeks {
		if w == weekID {
			return true
		}
	}
	return false
}
