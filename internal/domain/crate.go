package domain

import "time"

// RewardType classifies what a crate reward entry pays out.
type RewardType string

const (
	RewardCredits  RewardType = "CREDITS"
	RewardCosmetic RewardType = "COSMETIC"
	RewardRental   RewardType = "RENTAL"
	RewardCrate    RewardType = "CRATE"
	RewardSpecial  RewardType = "SPECIAL"
)

// Rarity is a display band for reward entries, derived from price.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// CrateTier describes one purchasable crate kind. Rank orders tiers from
// cheapest (0) upward and controls which cosmetics are eligible for the
// tier's reward table.
type CrateTier struct {
	Key         string `json:"key" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Price       int    `json:"price" validate:"min=0"`
	Purchasable bool   `json:"purchasable"`
	Rank        int    `json:"rank" validate:"min=0"`
}

// RewardEntry is one weighted outcome in a tier's reward table.
// Tables are built once at startup and are immutable afterwards.
type RewardEntry struct {
	Tier      string
	Type      RewardType
	PayloadID string
	Amount    int
	Weight    int
	Rarity    Rarity
}

// AuditRecord is the write-only log row appended for every crate opening.
type AuditRecord struct {
	ID         string
	PlayerID   string
	Tier       string
	RewardType RewardType
	PayloadID  string
	Amount     int
	CreatedAt  time.Time
}
