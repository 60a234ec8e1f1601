package schedule

import (
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/week"
)

// Progress summarizes one week of scheduled work for the dashboard.
type Progress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`

	// DailyCompleted counts completed occurrences per day, Sunday first.
	DailyCompleted [7]int `json:"dailyCompleted"`
	// PerfectDays counts days where every scheduled occurrence was
	// completed (days with nothing scheduled do not count).
	PerfectDays int `json:"perfectDays"`
	// MissionTally maps effective activity names to their completed
	// occurrence counts for the week.
	MissionTally map[string]int `json:"missionTally"`
}

// ComputeProgress walks the week containing t over the visible
// activities and tallies scheduled versus completed occurrences.
func ComputeProgress(activities []model.Activity, t time.Time) Progress {
	weekID := week.Identifier(t)
	p := Progress{MissionTally: make(map[string]int)}

	visible := Visible(activities, t)
	for di, day := range week.Days(t) {
		scheduled, completed := 0, 0
		for i := range visible {
			a := &visible[i]
			if !IsScheduled(a, day) {
				continue
			}
			scheduled++
			if a.CompletedOn(week.FormatDate(day)) {
				completed++
				p.DailyCompleted[di]++
				p.MissionTally[EffectiveName(a, weekID)]++
			}
		}
		p.Total += scheduled
		p.Completed += completed
		if scheduled > 0 && completed == scheduled {
			p.PerfectDays++
		}
	}

	if p.Total > 0 {
		p.Percentage = (p.Completed*100 + p.Total/2) / p.Total
	}
	return p
}
