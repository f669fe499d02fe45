package domain

import "time"

// RentalOptionKind names the derived rental durations.
type RentalOptionKind string

const (
	RentalHourly RentalOptionKind = "hourly"
	RentalDaily  RentalOptionKind = "daily"
	RentalWeekly RentalOptionKind = "weekly"
	RentalTrial  RentalOptionKind = "trial"
)

// RentalOption is a rentable duration for a specific cosmetic, derived
// from its purchase price at initialization.
type RentalOption struct {
	ID         string
	CosmeticID string
	Kind       RentalOptionKind
	Duration   time.Duration
	Price      int
	Extendable bool
}

// RentalLease is a time-boxed grant of a cosmetic. At most one lease per
// (player, cosmetic) exists at a time.
type RentalLease struct {
	PlayerID   string
	CosmeticID string
	OptionID   string
	ExpiresAt  time.Time
	Extendable bool
}

// Active reports whether the lease has not yet expired at the given instant.
func (l RentalLease) Active(now time.Time) bool {
	return l.ExpiresAt.After(now)
}
