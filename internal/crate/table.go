package crate

import (
	"fmt"

	"github.com/halveric/CosmeticsCore_Go/internal/catalog"
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// Table is the immutable weighted reward table for one crate tier,
// built once at startup. Entry order is stable (catalog order, fixed
// entries last), which keeps selection reproducible under a seeded RNG.
type Table struct {
	Tier        string
	Entries     []domain.RewardEntry
	TotalWeight int
}

// Select draws one entry with probability proportional to its weight.
// rnd must return a uniform float64 in [0, 1).
func (t *Table) Select(rnd func() float64) domain.RewardEntry {
	r := rnd() * float64(t.TotalWeight)
	cumulative := 0.0
	for _, entry := range t.Entries {
		cumulative += float64(entry.Weight)
		if cumulative >= r {
			return entry
		}
	}
	// Floating-point rounding can leave r just above the final
	// cumulative weight; the last entry absorbs that sliver.
	return t.Entries[len(t.Entries)-1]
}

func rarityForPrice(price int) domain.Rarity {
	switch {
	case price >= legendaryPriceFloor:
		return domain.RarityLegendary
	case price >= epicPriceFloor:
		return domain.RarityEpic
	case price >= rarePriceFloor:
		return domain.RarityRare
	default:
		return domain.RarityCommon
	}
}

func cosmeticWeight(price int) int {
	w := cosmeticWeightBase / price
	if w < minCosmeticWeight {
		w = minCosmeticWeight
	}
	return w
}

// BuildTables constructs the reward table for every tier in the catalog.
func BuildTables(cat catalog.Catalog) (map[string]*Table, error) {
	tiers := cat.Tiers()
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: catalog defines no tiers", domain.ErrEmptyRewardTable)
	}

	tierByRank := make(map[int]domain.CrateTier, len(tiers))
	maxRank := 0
	for _, tier := range tiers {
		tierByRank[tier.Rank] = tier
		if tier.Rank > maxRank {
			maxRank = tier.Rank
		}
	}

	cosmetics := cat.All()

	tables := make(map[string]*Table, len(tiers))
	for _, tier := range tiers {
		table := &Table{Tier: tier.Key}

		// Cosmetic entries derived from the catalog. Free and
		// zero-priced cosmetics never drop; access-gated cosmetics are
		// excluded from low tiers.
		for _, cosmetic := range cosmetics {
			if cosmetic.Price <= 0 || cosmetic.Free {
				continue
			}
			if cosmetic.Gated() && tier.Rank < gatedMinTierRank {
				continue
			}
			table.Entries = append(table.Entries, domain.RewardEntry{
				Tier:      tier.Key,
				Type:      domain.RewardCosmetic,
				PayloadID: cosmetic.ID,
				Amount:    1,
				Weight:    cosmeticWeight(cosmetic.Price),
				Rarity:    rarityForPrice(cosmetic.Price),
			})
		}

		// Fixed entries.
		table.Entries = append(table.Entries,
			domain.RewardEntry{
				Tier:   tier.Key,
				Type:   domain.RewardCredits,
				Amount: smallCreditsPerRank * (tier.Rank + 1),
				Weight: weightSmallCredits,
				Rarity: domain.RarityCommon,
			},
			domain.RewardEntry{
				Tier:   tier.Key,
				Type:   domain.RewardCredits,
				Amount: largeCreditsPerRank * (tier.Rank + 1),
				Weight: weightLargeCredits,
				Rarity: domain.RarityRare,
			},
			domain.RewardEntry{
				Tier:      tier.Key,
				Type:      domain.RewardRental,
				PayloadID: string(domain.RentalDaily),
				Amount:    1,
				Weight:    weightRentalToken,
				Rarity:    domain.RarityRare,
			},
		)

		// A crate can pay out a crate of the next tier down; the
		// cheapest tier has nowhere lower to point.
		if lower, ok := tierByRank[tier.Rank-1]; ok {
			table.Entries = append(table.Entries, domain.RewardEntry{
				Tier:      tier.Key,
				Type:      domain.RewardCrate,
				PayloadID: lower.Key,
				Amount:    1,
				Weight:    weightNestedCrate,
				Rarity:    domain.RarityRare,
			})
		}

		// Tier-upgrade special for every tier below the top rank.
		if tier.Rank < maxRank {
			table.Entries = append(table.Entries, domain.RewardEntry{
				Tier:      tier.Key,
				Type:      domain.RewardSpecial,
				PayloadID: SpecialTierUpgrade,
				Amount:    1,
				Weight:    weightSpecial,
				Rarity:    domain.RarityEpic,
			})
		}

		if err := validateTable(table, cat); err != nil {
			return nil, err
		}
		tables[tier.Key] = table
	}

	return tables, nil
}

// validateTable enforces the table invariants: non-empty with a positive
// weight sum, and no CRATE entry that names its own tier (which would
// allow unbounded payout chains).
func validateTable(table *Table, cat catalog.Catalog) error {
	if len(table.Entries) == 0 {
		return fmt.Errorf("%w: tier %s", domain.ErrEmptyRewardTable, table.Tier)
	}

	total := 0
	for _, entry := range table.Entries {
		if entry.Weight <= 0 {
			return fmt.Errorf("tier %s: entry %s has non-positive weight %d", table.Tier, entry.PayloadID, entry.Weight)
		}
		total += entry.Weight

		if entry.Type == domain.RewardCrate {
			if entry.PayloadID == table.Tier {
				return fmt.Errorf("tier %s: reward table references itself", table.Tier)
			}
			if _, ok := cat.Tier(entry.PayloadID); !ok {
				return fmt.Errorf("tier %s: nested crate tier %q not in catalog", table.Tier, entry.PayloadID)
			}
		}
	}

	if total <= 0 {
		return fmt.Errorf("%w: tier %s has zero total weight", domain.ErrEmptyRewardTable, table.Tier)
	}

	table.TotalWeight = total
	return nil
}
