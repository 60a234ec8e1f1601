package profile

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/schedule"
	"github.com/mkarlsen/chorecoin/internal/week"
)

// randomSuffix returns a short crypto-random hex string for legacy
// unique-id synthesis.
func randomSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// DayView is one cell column of the week view.
type DayView struct {
	Date  string          `json:"date"`
	Day   model.DayOfWeek `json:"day"`
	Today bool            `json:"today"`
}

// ActivityView is an activity resolved for one week: effective name and
// days, plus per-day scheduled/completed flags aligned with the week's
// day columns.
type ActivityView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Recurrence    model.Recurrence  `json:"recurrence"`
	EffectiveDays []model.DayOfWeek `json:"effectiveDays"`
	HasOverride   bool              `json:"hasOverride"`
	Scheduled     [7]bool           `json:"scheduled"`
	Completed     [7]bool           `json:"completed"`
}

// WeekView is everything the schedule screen needs for one week.
type WeekView struct {
	WeekID     string            `json:"weekId"`
	Days       [7]DayView        `json:"days"`
	Activities []ActivityView    `json:"activities"`
	Progress   schedule.Progress `json:"progress"`
	Coins      int               `json:"coins"`
}

// Week resolves the week containing date for the active profile.
func (s *Service) Week(date time.Time, now time.Time) (*WeekView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, ErrNoProfile
	}

	weekID := week.Identifier(date)
	view := &WeekView{
		WeekID:   weekID,
		Progress: schedule.ComputeProgress(s.activities, date),
		Coins:    s.info.Coins,
	}

	days := week.Days(date)
	today := week.FormatDate(now)
	for i, d := range days {
		view.Days[i] = DayView{
			Date:  week.FormatDate(d),
			Day:   week.DayForDate(d),
			Today: week.FormatDate(d) == today,
		}
	}

	for _, a := range schedule.Visible(s.activities, date) {
		av := ActivityView{
			ID:            a.ID,
			Name:          schedule.EffectiveName(&a, weekID),
			Recurrence:    a.Recurrence,
			EffectiveDays: schedule.EffectiveDays(&a, weekID),
		}
		_, av.HasOverride = schedule.Override(&a, weekID)
		for i, d := range days {
			av.Scheduled[i] = schedule.IsScheduled(&a, d)
			av.Completed[i] = av.Scheduled[i] && a.CompletedOn(week.FormatDate(d))
		}
		view.Activities = append(view.Activities, av)
	}

	return view, nil
}

// History returns the dashboard stats for the week containing date.
func (s *Service) History(date time.Time) (*schedule.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, ErrNoProfile
	}
	p := schedule.ComputeProgress(s.activities, date)
	return &p, nil
}

// RewardsView bundles the catalog, history, and balance.
type RewardsView struct {
	Coins           int                    `json:"coins"`
	Rewards         []model.Reward         `json:"rewards"`
	RedeemedRewards []model.RedeemedReward `json:"redeemedRewards"`
}

// Rewards returns the active profile's reward state.
func (s *Service) Rewards() (*RewardsView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, ErrNoProfile
	}

	view := &RewardsView{
		Coins:           s.info.Coins,
		Rewards:         append([]model.Reward(nil), s.info.Rewards...),
		RedeemedRewards: append([]model.RedeemedReward(nil), s.info.RedeemedRewards...),
	}
	if view.Rewards == nil {
		view.Rewards = []model.Reward{}
	}
	if view.RedeemedRewards == nil {
		view.RedeemedRewards = []model.RedeemedReward{}
	}
	return view, nil
}

// AgentView is the header summary of the active profile.
type AgentView struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Coins  int    `json:"coins"`
	HasPIN bool   `json:"hasPin"`
}

// Agent returns the active profile's summary.
func (s *Service) Agent() (*AgentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, ErrNoProfile
	}
	return &AgentView{
		Name:   s.info.Name,
		Age:    s.info.Age,
		Coins:  s.info.Coins,
		HasPIN: s.info.HasPIN(),
	}, nil
}
