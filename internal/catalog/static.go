package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// fileSchema is the on-disk layout of the catalog config file.
type fileSchema struct {
	Cosmetics []domain.Cosmetic  `json:"cosmetics" validate:"required,min=1,dive"`
	Tiers     []domain.CrateTier `json:"tiers" validate:"required,min=1,dive"`
}

// Static is a Catalog backed by a JSON config file, loaded and validated
// once at startup.
type Static struct {
	cosmetics map[string]domain.Cosmetic
	ordered   []domain.Cosmetic
	tiers     map[string]domain.CrateTier
	tierOrder []domain.CrateTier
}

// Load reads, validates, and indexes the catalog config file.
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Static catalog from raw JSON config bytes.
func Parse(data []byte) (*Static, error) {
	var schema fileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&schema); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	c := &Static{
		cosmetics: make(map[string]domain.Cosmetic, len(schema.Cosmetics)),
		tiers:     make(map[string]domain.CrateTier, len(schema.Tiers)),
	}

	for _, cosmetic := range schema.Cosmetics {
		if !cosmetic.Category.Valid() {
			return nil, fmt.Errorf("cosmetic %q has unknown category %q", cosmetic.ID, cosmetic.Category)
		}
		if _, exists := c.cosmetics[cosmetic.ID]; exists {
			return nil, fmt.Errorf("duplicate cosmetic id %q", cosmetic.ID)
		}
		c.cosmetics[cosmetic.ID] = cosmetic
	}

	for _, tier := range schema.Tiers {
		if _, exists := c.tiers[tier.Key]; exists {
			return nil, fmt.Errorf("duplicate tier key %q", tier.Key)
		}
		c.tiers[tier.Key] = tier
	}

	// Stable orders: cosmetics by id, tiers by rank. Reward table
	// construction depends on this for reproducible selection.
	c.ordered = append(c.ordered, schema.Cosmetics...)
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })

	c.tierOrder = append(c.tierOrder, schema.Tiers...)
	sort.Slice(c.tierOrder, func(i, j int) bool { return c.tierOrder[i].Rank < c.tierOrder[j].Rank })

	return c, nil
}

// Lookup returns the cosmetic with the given id.
func (c *Static) Lookup(cosmeticID string) (*domain.Cosmetic, bool) {
	cosmetic, ok := c.cosmetics[cosmeticID]
	if !ok {
		return nil, false
	}
	return &cosmetic, true
}

// All returns every cosmetic ordered by id.
func (c *Static) All() []domain.Cosmetic {
	out := make([]domain.Cosmetic, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Tier returns the crate tier with the given key.
func (c *Static) Tier(key string) (*domain.CrateTier, bool) {
	tier, ok := c.tiers[key]
	if !ok {
		return nil, false
	}
	return &tier, true
}

// Tiers returns every crate tier ordered by rank ascending.
func (c *Static) Tiers() []domain.CrateTier {
	out := make([]domain.CrateTier, len(c.tierOrder))
	copy(out, c.tierOrder)
	return out
}
