package mission

import (
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/schedule"
	"github.com/mkarlsen/chorecoin/internal/week"
)

// ToggleCompletion flips the completion flag for one activity on one
// date and settles the weekly coin ledger. A coin is earned exactly when
// the toggle completes the last remaining scheduled occurrence of the
// activity's week, and revoked exactly when the toggle breaks a fully
// completed week. Partial progress never moves coins. The returned delta
// is -1, 0, or +1 and has already been applied to info.Coins, clamped at
// zero. Toggling twice restores both the completion map and the balance.
//
// An unknown activity id is a no-op.
func ToggleCompletion(activities []model.Activity, info *model.ChildInfo, activityID string, date time.Time) int {
	a := findActivity(activities, activityID)
	if a == nil {
		return 0
	}

	dateKey := week.FormatDate(date)
	wasCompleted := a.CompletedOn(dateKey)
	willBeCompleted := !wasCompleted

	// Resolve the week's scheduled occurrences with the current
	// override state, not whatever was in effect historically.
	scheduled := schedule.ScheduledDates(a, date)

	delta := 0
	if len(scheduled) > 0 {
		wasFull, isFull := true, true
		for _, d := range scheduled {
			key := week.FormatDate(d)
			wasFull = wasFull && a.CompletedOn(key)
			if key == dateKey {
				isFull = isFull && willBeCompleted
			} else {
				isFull = isFull && a.CompletedOn(key)
			}
		}
		switch {
		case !wasFull && isFull:
			delta = 1
		case wasFull && !isFull:
			delta = -1
		}
	}

	a.SetCompleted(dateKey, willBeCompleted)

	if delta != 0 && info != nil {
		info.Coins += delta
		if info.Coins < 0 {
			// the balance never goes negative
			info.Coins = 0
		}
	}
	return delta
}
