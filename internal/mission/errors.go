package mission

import "errors"

// Validation errors are reported to the caller before any state is
// mutated. Unknown activity/reward ids are not errors: the mutators
// treat them as no-ops because the UI only references ids it holds.
var (
	ErrNameRequired      = errors.New("name is required")
	ErrDaysRequired      = errors.New("a weekly mission needs at least one day")
	ErrDateRequired      = errors.New("a one-off mission needs a date")
	ErrCostInvalid       = errors.New("cost must be a positive integer")
	ErrInsufficientCoins = errors.New("not enough coins")
)
