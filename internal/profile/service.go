// Package profile owns the active profile session: loading a profile's
// snapshot from the store, routing every mutation through the mission
// package, and writing the whole snapshot back after each change.
// Switching profiles is a hard reset: in-memory state is discarded and
// reloaded under the new name before any further mutation is accepted.
package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkarlsen/chorecoin/internal/mission"
	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/store"
	"github.com/mkarlsen/chorecoin/internal/week"
)

var (
	ErrNameRequired  = errors.New("profile name is required")
	ErrDuplicateName = errors.New("a profile with that name already exists")
	ErrNoProfile     = errors.New("no active profile")
	ErrWrongPIN      = errors.New("wrong PIN")
)

type Service struct {
	store  *store.ProfileStore
	logger *slog.Logger

	mu         sync.Mutex
	name       string
	info       *model.ChildInfo
	activities []model.Activity
}

func NewService(s *store.ProfileStore, logger *slog.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// ListNames returns every profile name on the device.
func (s *Service) ListNames() ([]string, error) {
	return s.store.ListProfileNames()
}

// Create registers a new profile and makes it active. The name must not
// collide case-insensitively with any existing profile. A non-empty pin
// protects the profile with a bcrypt hash.
func (s *Service) Create(name, age, pin string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	exists, err := s.store.NameExists(name, "")
	if err != nil {
		return fmt.Errorf("check profile name: %w", err)
	}
	if exists {
		return ErrDuplicateName
	}

	info := &model.ChildInfo{
		Name:            name,
		Age:             age,
		Coins:           0,
		Rewards:         []model.Reward{},
		RedeemedRewards: []model.RedeemedReward{},
	}
	if pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash pin: %w", err)
		}
		info.PINHash = string(hash)
	}

	if err := s.store.PutChildInfo(name, info); err != nil {
		return err
	}
	if err := s.store.PutActivities(name, []model.Activity{}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.info = info
	s.activities = []model.Activity{}
	return nil
}

// Select makes the named profile active, discarding any previous
// in-memory state and reloading from the store. A PIN-protected profile
// requires the matching pin. A failed load is treated as an empty
// profile, not a crash.
func (s *Service) Select(name, pin string) error {
	info, err := s.store.GetChildInfo(name)
	if err != nil {
		s.logger.Warn("profile load failed, treating as empty", "profile", name, "error", err)
		info = nil
	}
	if info != nil && info.HasPIN() {
		if err := bcrypt.CompareHashAndPassword([]byte(info.PINHash), []byte(pin)); err != nil {
			return ErrWrongPIN
		}
	}
	applyDefaults(info)

	activities, err := s.store.GetActivities(name)
	if err != nil {
		s.logger.Warn("activities load failed, treating as empty", "profile", name, "error", err)
		activities = []model.Activity{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.info = info
	s.activities = activities
	return nil
}

// applyDefaults fills the forward-compatible zero values for records
// written by older versions: missing catalogs become empty lists. It is
// non-destructive and safe on every load.
func applyDefaults(info *model.ChildInfo) {
	if info == nil {
		return
	}
	if info.Rewards == nil {
		info.Rewards = []model.Reward{}
	}
	if info.RedeemedRewards == nil {
		info.RedeemedRewards = []model.RedeemedReward{}
	}
}

// Logout clears the active session without touching stored data.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = ""
	s.info = nil
	s.activities = nil
}

// ActiveName returns the active profile name, or "" when logged out.
func (s *Service) ActiveName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// UpdateAgent updates the active profile's name and age. A name change
// moves both stored records to the new keys atomically and is rejected
// when the new name collides case-insensitively with another profile,
// leaving all state unchanged.
func (s *Service) UpdateAgent(newName, age string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return ErrNoProfile
	}

	renaming := !strings.EqualFold(newName, s.name)
	if renaming {
		exists, err := s.store.NameExists(newName, s.name)
		if err != nil {
			return fmt.Errorf("check profile name: %w", err)
		}
		if exists {
			return ErrDuplicateName
		}
		if err := s.store.Rename(s.name, newName); err != nil {
			return err
		}
		s.name = newName
	}

	s.info.Name = newName
	s.info.Age = age
	return s.store.PutChildInfo(s.name, s.info)
}

// DeleteActive removes the active profile's stored records and logs out.
func (s *Service) DeleteActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name == "" {
		return ErrNoProfile
	}
	if err := s.store.Delete(s.name); err != nil {
		return err
	}
	s.name = ""
	s.info = nil
	s.activities = nil
	return nil
}

// ImportLegacy backfills redemption records exported by the old web app,
// which could lack unique ids. Missing ids are synthesized from the
// catalog id, redemption date, and a fresh random suffix. This runs only
// on explicit request, never on routine load. Returns the number of
// records repaired.
func (s *Service) ImportLegacy() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return 0, ErrNoProfile
	}

	repaired := 0
	for i := range s.info.RedeemedRewards {
		rr := &s.info.RedeemedRewards[i]
		if rr.UniqueID == "" {
			rr.UniqueID = fmt.Sprintf("%s-%s-%s", rr.ID, rr.RedemptionDate, randomSuffix())
			repaired++
		}
	}
	if repaired == 0 {
		return 0, nil
	}
	return repaired, s.store.PutChildInfo(s.name, s.info)
}

func (s *Service) persist() error {
	if err := s.store.PutChildInfo(s.name, s.info); err != nil {
		return err
	}
	return s.store.PutActivities(s.name, s.activities)
}

// ToggleCompletion flips one completion flag and settles the weekly
// coin ledger, then persists the whole snapshot.
func (s *Service) ToggleCompletion(activityID string, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return 0, ErrNoProfile
	}

	delta := mission.ToggleCompletion(s.activities, s.info, activityID, date)
	return delta, s.persist()
}

// AddActivity creates a mission and persists the activity list.
func (s *Service) AddActivity(name string, rec model.Recurrence, days []model.DayOfWeek, date string) (model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return model.Activity{}, ErrNoProfile
	}

	a, err := mission.NewActivity(name, rec, days, date)
	if err != nil {
		return model.Activity{}, err
	}
	s.activities = append(s.activities, a)
	return a, s.store.PutActivities(s.name, s.activities)
}

// SetWeeklyOverride stores a week's override for an activity. The week
// identifier is normalized to the week start of whatever date it names.
func (s *Service) SetWeeklyOverride(activityID, weekID string, o model.ActivityOverride) error {
	d, err := week.ParseDate(weekID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return ErrNoProfile
	}

	if err := mission.SetWeeklyOverride(s.activities, activityID, week.Identifier(d), o); err != nil {
		return err
	}
	return s.store.PutActivities(s.name, s.activities)
}

// DeleteForWeek hides an activity for one week.
func (s *Service) DeleteForWeek(activityID, weekID string) error {
	d, err := week.ParseDate(weekID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return ErrNoProfile
	}

	mission.DeleteForWeek(s.activities, activityID, week.Identifier(d))
	return s.store.PutActivities(s.name, s.activities)
}

// AddReward appends a catalog entry and persists the profile.
func (s *Service) AddReward(name string, cost int) (model.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return model.Reward{}, ErrNoProfile
	}

	r, err := mission.AddReward(s.info, name, cost)
	if err != nil {
		return model.Reward{}, err
	}
	return r, s.store.PutChildInfo(s.name, s.info)
}

// UpdateReward edits a catalog entry in place.
func (s *Service) UpdateReward(id, name string, cost int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return ErrNoProfile
	}

	if err := mission.UpdateReward(s.info, id, name, cost); err != nil {
		return err
	}
	return s.store.PutChildInfo(s.name, s.info)
}

// DeleteReward removes a catalog entry; history is untouched.
func (s *Service) DeleteReward(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return ErrNoProfile
	}

	mission.DeleteReward(s.info, id)
	return s.store.PutChildInfo(s.name, s.info)
}

// Redeem exchanges coins for a reward. Returns nil with no error for an
// unknown reward id.
func (s *Service) Redeem(id string, now time.Time) (*model.RedeemedReward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, ErrNoProfile
	}

	rec, err := mission.Redeem(s.info, id, now)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return rec, s.store.PutChildInfo(s.name, s.info)
}

// ToggleUsed flips a redemption record's used flag.
func (s *Service) ToggleUsed(uniqueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return ErrNoProfile
	}

	mission.ToggleUsed(s.info, uniqueID)
	return s.store.PutChildInfo(s.name, s.info)
}
