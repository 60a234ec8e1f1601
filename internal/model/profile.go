package model

// Reward is a catalog entry that can be redeemed for coins.
type Reward struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

// RedeemedReward records one redemption. UniqueID identifies the
// redemption instance; the embedded catalog ID may repeat if the same
// reward is re-added and redeemed again.
type RedeemedReward struct {
	Reward
	UniqueID       string `json:"uniqueId"`
	RedemptionDate string `json:"redemptionDate"`
	Used           bool   `json:"used"`
}

// ChildInfo is one agent profile: the child's details, coin balance,
// reward catalog, and redemption history. Profile names are unique
// case-insensitively across the device.
type ChildInfo struct {
	Name            string           `json:"name"`
	Age             string           `json:"age"`
	Coins           int              `json:"coins"`
	Rewards         []Reward         `json:"rewards"`
	RedeemedRewards []RedeemedReward `json:"redeemedRewards"`

	// PINHash is a bcrypt hash of the profile's optional PIN. Empty
	// means the profile is not PIN-protected. Never serialized to API
	// responses; persisted with the profile record.
	PINHash string `json:"pinHash,omitempty"`
}

// HasPIN reports whether the profile requires a PIN to select.
func (c *ChildInfo) HasPIN() bool {
	return c.PINHash != ""
}
