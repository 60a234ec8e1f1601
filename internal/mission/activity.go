// Package mission holds the mutators for a profile's in-memory
// snapshot: the completion and coin ledger, per-week overrides and
// deletions, and the reward ledger. Every mutator computes its full
// effect in memory; persistence of the updated snapshot is the
// caller's job (one whole-record write per mutation).
package mission

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/week"
)

// NewActivity validates and builds a mission with a fresh id.
func NewActivity(name string, rec model.Recurrence, days []model.DayOfWeek, date string) (model.Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Activity{}, ErrNameRequired
	}

	a := model.Activity{
		ID:         uuid.NewString(),
		Name:       name,
		Recurrence: rec,
	}

	switch rec {
	case model.RecurrenceOnce:
		if date == "" {
			return model.Activity{}, ErrDateRequired
		}
		if _, err := week.ParseDate(date); err != nil {
			return model.Activity{}, err
		}
		a.Date = date
	default:
		a.Recurrence = model.RecurrenceWeekly
		if len(days) == 0 {
			return model.Activity{}, ErrDaysRequired
		}
		a.Days = days
	}

	return a, nil
}

// findActivity returns a pointer into the slice, or nil if the id is
// unknown.
func findActivity(activities []model.Activity, id string) *model.Activity {
	for i := range activities {
		if activities[i].ID == id {
			return &activities[i]
		}
	}
	return nil
}

// SetWeeklyOverride replaces the activity's override record for the
// given week. Replacement is wholesale: fields the caller leaves unset
// revert to the base activity, so "edit" semantics require the caller
// to supply every field it wants kept (the edit form always sends the
// name, and the days only for weekly missions). Unknown ids are a
// no-op.
func SetWeeklyOverride(activities []model.Activity, id, weekID string, o model.ActivityOverride) error {
	if o.Name != nil && strings.TrimSpace(*o.Name) == "" {
		return ErrNameRequired
	}

	a := findActivity(activities, id)
	if a == nil {
		return nil
	}
	if a.Recurrence == model.RecurrenceWeekly && o.Days != nil && len(o.Days) == 0 {
		return ErrDaysRequired
	}

	if a.Overrides == nil {
		a.Overrides = make(map[string]model.ActivityOverride)
	}
	a.Overrides[weekID] = o
	return nil
}

// DeleteForWeek hides the activity for one week only. The activity, its
// completion history, and every other week's schedule survive. Adding
// the same week twice is a no-op.
func DeleteForWeek(activities []model.Activity, id, weekID string) {
	a := findActivity(activities, id)
	if a == nil {
		return
	}
	if a.DeletedInWeek(weekID) {
		return
	}
	a.DeletedInWeeks = append(a.DeletedInWeeks, weekID)
}
