package mission

import (
	"testing"
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/week"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := week.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

// Week under test starts Sunday 2024-03-10.
func monWedFri() []model.Activity {
	return []model.Activity{{
		ID:         "act-1",
		Name:       "Practice piano",
		Recurrence: model.RecurrenceWeekly,
		Days:       []model.DayOfWeek{model.Monday, model.Wednesday, model.Friday},
	}}
}

func TestFullCompletionAwardsOneCoin(t *testing.T) {
	acts := monWedFri()
	info := &model.ChildInfo{Name: "Ana"}

	if d := ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-11")); d != 0 {
		t.Errorf("Monday delta = %d, want 0", d)
	}
	if d := ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-13")); d != 0 {
		t.Errorf("Wednesday delta = %d, want 0", d)
	}
	if info.Coins != 0 {
		t.Errorf("coins after partial week = %d, want 0", info.Coins)
	}

	// Completing the last scheduled day crosses the boundary.
	if d := ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-15")); d != 1 {
		t.Errorf("Friday delta = %d, want 1", d)
	}
	if info.Coins != 1 {
		t.Errorf("coins = %d, want 1", info.Coins)
	}
}

func TestUncompletionRevokesTheCoin(t *testing.T) {
	acts := monWedFri()
	info := &model.ChildInfo{Name: "Ana"}
	for _, day := range []string{"2024-03-11", "2024-03-13", "2024-03-15"} {
		ToggleCompletion(acts, info, "act-1", mustDate(t, day))
	}
	if info.Coins != 1 {
		t.Fatalf("coins = %d, want 1 after full week", info.Coins)
	}

	if d := ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-13")); d != -1 {
		t.Errorf("un-complete delta = %d, want -1", d)
	}
	if info.Coins != 0 {
		t.Errorf("coins = %d, want 0", info.Coins)
	}
	// Breaking it further changes nothing.
	if d := ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-11")); d != 0 {
		t.Errorf("second un-complete delta = %d, want 0", d)
	}
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	acts := monWedFri()
	acts[0].SetCompleted("2024-03-11", true)
	acts[0].SetCompleted("2024-03-13", true)
	info := &model.ChildInfo{Name: "Ana", Coins: 5}

	day := mustDate(t, "2024-03-15")
	ToggleCompletion(acts, info, "act-1", day) // completes the week, +1
	ToggleCompletion(acts, info, "act-1", day) // undoes it, -1

	if info.Coins != 5 {
		t.Errorf("coins = %d, want 5 restored", info.Coins)
	}
	if acts[0].CompletedOn("2024-03-15") {
		t.Error("completion flag should be back to false")
	}
}

func TestCoinsNeverNegative(t *testing.T) {
	acts := monWedFri()
	// Pre-completed week with a balance that was spent elsewhere.
	for _, key := range []string{"2024-03-11", "2024-03-13", "2024-03-15"} {
		acts[0].SetCompleted(key, true)
	}
	info := &model.ChildInfo{Name: "Ana", Coins: 0}

	ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-13"))
	if info.Coins != 0 {
		t.Errorf("coins = %d, want clamp at 0", info.Coins)
	}
}

func TestToggleUnknownActivityIsNoop(t *testing.T) {
	acts := monWedFri()
	info := &model.ChildInfo{Name: "Ana", Coins: 2}

	if d := ToggleCompletion(acts, info, "no-such-id", mustDate(t, "2024-03-11")); d != 0 {
		t.Errorf("delta = %d, want 0", d)
	}
	if info.Coins != 2 {
		t.Errorf("coins = %d, want untouched", info.Coins)
	}
}

func TestToggleOnceActivity(t *testing.T) {
	acts := []model.Activity{{
		ID:         "act-2",
		Name:       "Dentist",
		Recurrence: model.RecurrenceOnce,
		Date:       "2024-03-13",
	}}
	info := &model.ChildInfo{Name: "Ana"}

	// A one-off's week has exactly one scheduled date, so completing it
	// is immediately a full week.
	if d := ToggleCompletion(acts, info, "act-2", mustDate(t, "2024-03-13")); d != 1 {
		t.Errorf("delta = %d, want 1", d)
	}
	if info.Coins != 1 {
		t.Errorf("coins = %d, want 1", info.Coins)
	}
}

func TestToggleOnDeletedWeekHasNoCoinEffect(t *testing.T) {
	acts := monWedFri()
	acts[0].DeletedInWeeks = []string{"2024-03-10"}
	info := &model.ChildInfo{Name: "Ana"}

	// The resolver reports no scheduled dates for a deleted week, so the
	// flip applies without coin movement.
	if d := ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-11")); d != 0 {
		t.Errorf("delta = %d, want 0", d)
	}
	if !acts[0].CompletedOn("2024-03-11") {
		t.Error("completion flag should still be written")
	}
	if info.Coins != 0 {
		t.Errorf("coins = %d, want 0", info.Coins)
	}
}

func TestToggleUsesCurrentOverrideDays(t *testing.T) {
	acts := monWedFri()
	name := "Practice piano"
	acts[0].Overrides = map[string]model.ActivityOverride{
		"2024-03-10": {Name: &name, Days: []model.DayOfWeek{model.Monday}},
	}
	info := &model.ChildInfo{Name: "Ana"}

	// With the override, Monday alone is the whole week's schedule.
	if d := ToggleCompletion(acts, info, "act-1", mustDate(t, "2024-03-11")); d != 1 {
		t.Errorf("delta = %d, want 1 under the narrowed override", d)
	}
	if info.Coins != 1 {
		t.Errorf("coins = %d, want 1", info.Coins)
	}
}

func TestWeeklyDeleteLeavesHistoryAndNeighborsAlone(t *testing.T) {
	acts := monWedFri()
	acts[0].SetCompleted("2024-03-11", true)

	DeleteForWeek(acts, "act-1", "2024-03-10")
	DeleteForWeek(acts, "act-1", "2024-03-10") // idempotent

	if len(acts[0].DeletedInWeeks) != 1 {
		t.Errorf("DeletedInWeeks = %v, want a single entry", acts[0].DeletedInWeeks)
	}
	if !acts[0].CompletedOn("2024-03-11") {
		t.Error("completion history must survive a weekly delete")
	}
}

func TestDeleteForWeekUnknownID(t *testing.T) {
	acts := monWedFri()
	DeleteForWeek(acts, "no-such-id", "2024-03-10")
	if len(acts[0].DeletedInWeeks) != 0 {
		t.Error("unknown id must not touch other activities")
	}
}
