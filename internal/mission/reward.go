package mission

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkarlsen/chorecoin/internal/model"
	"github.com/mkarlsen/chorecoin/internal/week"
)

// AddReward appends a catalog entry with a fresh id.
func AddReward(info *model.ChildInfo, name string, cost int) (model.Reward, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Reward{}, ErrNameRequired
	}
	if cost <= 0 {
		return model.Reward{}, ErrCostInvalid
	}

	r := model.Reward{ID: uuid.NewString(), Name: name, Cost: cost}
	info.Rewards = append(info.Rewards, r)
	return r, nil
}

// UpdateReward replaces the catalog entry in place. Unknown ids are a
// no-op; validation runs before any lookup so a bad edit never mutates.
func UpdateReward(info *model.ChildInfo, id, name string, cost int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if cost <= 0 {
		return ErrCostInvalid
	}

	for i := range info.Rewards {
		if info.Rewards[i].ID == id {
			info.Rewards[i].Name = name
			info.Rewards[i].Cost = cost
			return nil
		}
	}
	return nil
}

// DeleteReward removes the catalog entry. Past redemptions keep their
// own copies and are unaffected.
func DeleteReward(info *model.ChildInfo, id string) {
	for i := range info.Rewards {
		if info.Rewards[i].ID == id {
			info.Rewards = append(info.Rewards[:i], info.Rewards[i+1:]...)
			return
		}
	}
}

// Redeem exchanges coins for a catalog reward. The affordability check
// runs before any mutation; on success the reward leaves the catalog,
// the coins are deducted, and a redemption record with a fresh unique id
// is appended. Returns nil for an unknown reward id.
func Redeem(info *model.ChildInfo, id string, now time.Time) (*model.RedeemedReward, error) {
	var reward *model.Reward
	idx := -1
	for i := range info.Rewards {
		if info.Rewards[i].ID == id {
			reward = &info.Rewards[i]
			idx = i
			break
		}
	}
	if reward == nil {
		return nil, nil
	}
	if info.Coins < reward.Cost {
		return nil, ErrInsufficientCoins
	}

	redeemed := model.RedeemedReward{
		Reward:         *reward,
		UniqueID:       uuid.NewString(),
		RedemptionDate: week.FormatDate(now),
		Used:           false,
	}

	info.Coins -= reward.Cost
	info.Rewards = append(info.Rewards[:idx], info.Rewards[idx+1:]...)
	info.RedeemedRewards = append(info.RedeemedRewards, redeemed)
	return &redeemed, nil
}

// ToggleUsed flips the used flag on a redemption record. Coins are
// untouched; unknown unique ids are a no-op.
func ToggleUsed(info *model.ChildInfo, uniqueID string) {
	for i := range info.RedeemedRewards {
		if info.RedeemedRewards[i].UniqueID == uniqueID {
			info.RedeemedRewards[i].Used = !info.RedeemedRewards[i].Used
			return
		}
	}
}
