package crate

// Weight derivation for cosmetic entries. A cosmetic's weight is
// inversely proportional to its price, so cheaper cosmetics are more
// common within a tier.
const (
	cosmeticWeightBase = 1000
	minCosmeticWeight  = 1
)

// Rarity bands by price.
const (
	rarePriceFloor      = 100
	epicPriceFloor      = 250
	legendaryPriceFloor = 500
)

// gatedMinTierRank is the lowest tier rank whose tables may include
// cosmetics requiring elevated access.
const gatedMinTierRank = 2

// Fixed reward table entries. Weights are design constants, not derived;
// credit amounts scale with tier rank.
const (
	smallCreditsPerRank = 25
	largeCreditsPerRank = 100

	weightSmallCredits = 40
	weightLargeCredits = 15
	weightRentalToken  = 10
	weightNestedCrate  = 8
	weightSpecial      = 2
)

// Special reward payload names.
const (
	SpecialTierUpgrade = "tier_upgrade"
)

// fallbackSpecialCredits is granted when a SPECIAL payload name has no
// registered effect.
const fallbackSpecialCredits = 50
