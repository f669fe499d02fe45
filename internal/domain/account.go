package domain

import "time"

// Account is a player's credit balance as held by the ledger cache.
// Accounts are created on first sighting with the configured welcome
// balance and are never deleted.
type Account struct {
	PlayerID string    `json:"player_id"`
	Balance  int       `json:"balance"`
	CachedAt time.Time `json:"cached_at"`
}
