package domain

// Transaction limits
const (
	// MaxCratePurchaseQuantity bounds a single crate purchase.
	MaxCratePurchaseQuantity = 64
)

// Duplicate-reward conversion
const (
	// DuplicateCreditFloor is the minimum credit refund when a crate
	// rolls a cosmetic the player already owns.
	DuplicateCreditFloor = 10
	// DuplicateCreditDivisor converts a duplicate's price into credits.
	DuplicateCreditDivisor = 4
)
