package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

const validCatalogJSON = `{
	"cosmetics": [
		{"id": "trail_flame", "name": "Flame Trail", "category": "trail", "price": 250},
		{"id": "hat_straw", "name": "Straw Hat", "category": "hat", "price": 40},
		{"id": "aura_basic", "name": "Basic Aura", "category": "aura", "price": 0, "free": true},
		{"id": "wings_void", "name": "Void Wings", "category": "wing", "price": 500, "access": 1}
	],
	"tiers": [
		{"key": "epic", "display_name": "Epic Crate", "price": 300, "purchasable": true, "rank": 2},
		{"key": "common", "display_name": "Common Crate", "price": 50, "purchasable": true, "rank": 0},
		{"key": "rare", "display_name": "Rare Crate", "price": 120, "purchasable": true, "rank": 1}
	]
}`

func TestParse_ValidCatalog(t *testing.T) {
	cat, err := Parse([]byte(validCatalogJSON))
	require.NoError(t, err)

	cosmetic, ok := cat.Lookup("hat_straw")
	require.True(t, ok)
	assert.Equal(t, "Straw Hat", cosmetic.Name)
	assert.Equal(t, domain.CategoryHat, cosmetic.Category)
	assert.Equal(t, 40, cosmetic.Price)

	gated, ok := cat.Lookup("wings_void")
	require.True(t, ok)
	assert.True(t, gated.Gated())

	_, ok = cat.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestParse_CosmeticsOrderedByID(t *testing.T) {
	cat, err := Parse([]byte(validCatalogJSON))
	require.NoError(t, err)

	all := cat.All()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestParse_TiersOrderedByRank(t *testing.T) {
	cat, err := Parse([]byte(validCatalogJSON))
	require.NoError(t, err)

	tiers := cat.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, "common", tiers[0].Key)
	assert.Equal(t, "rare", tiers[1].Key)
	assert.Equal(t, "epic", tiers[2].Key)
}

func TestParse_DuplicateCosmeticID(t *testing.T) {
	_, err := Parse([]byte(`{
		"cosmetics": [
			{"id": "hat_straw", "name": "Straw Hat", "category": "hat", "price": 40},
			{"id": "hat_straw", "name": "Straw Hat Again", "category": "hat", "price": 50}
		],
		"tiers": [
			{"key": "common", "display_name": "Common Crate", "price": 50, "purchasable": true, "rank": 0}
		]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cosmetic id")
}

func TestParse_UnknownCategory(t *testing.T) {
	_, err := Parse([]byte(`{
		"cosmetics": [
			{"id": "mount_horse", "name": "Horse", "category": "mount", "price": 40}
		],
		"tiers": [
			{"key": "common", "display_name": "Common Crate", "price": 50, "purchasable": true, "rank": 0}
		]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestParse_MissingRequiredFields(t *testing.T) {
	_, err := Parse([]byte(`{
		"cosmetics": [
			{"id": "", "name": "Nameless", "category": "hat", "price": 40}
		],
		"tiers": [
			{"key": "common", "display_name": "Common Crate", "price": 50, "purchasable": true, "rank": 0}
		]
	}`))
	assert.Error(t, err)
}

func TestParse_EmptyTiers(t *testing.T) {
	_, err := Parse([]byte(`{
		"cosmetics": [
			{"id": "hat_straw", "name": "Straw Hat", "category": "hat", "price": 40}
		],
		"tiers": []
	}`))
	assert.Error(t, err)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{nope`))
	assert.Error(t, err)
}
