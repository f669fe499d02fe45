package catalog

import (
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// Catalog is the read-only source of cosmetic and crate tier metadata.
// Implementations are built once at startup; the engine never mutates
// catalog state.
type Catalog interface {
	// Lookup returns the cosmetic with the given id.
	Lookup(cosmeticID string) (*domain.Cosmetic, bool)
	// All returns every cosmetic, in a stable order.
	All() []domain.Cosmetic
	// Tier returns the crate tier with the given key.
	Tier(key string) (*domain.CrateTier, bool)
	// Tiers returns every crate tier, ordered by rank ascending.
	Tiers() []domain.CrateTier
}
