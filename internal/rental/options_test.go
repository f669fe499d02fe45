package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

func TestDeriveOptions_StandardCosmetic(t *testing.T) {
	options := DeriveOptions(domain.Cosmetic{ID: "hat_iron", Category: domain.CategoryHat, Price: 150})
	require.Len(t, options, 3)

	byKind := map[domain.RentalOptionKind]domain.RentalOption{}
	for _, o := range options {
		byKind[o.Kind] = o
	}

	hourly := byKind[domain.RentalHourly]
	assert.Equal(t, 30, hourly.Price)
	assert.Equal(t, time.Hour, hourly.Duration)
	assert.True(t, hourly.Extendable)

	daily := byKind[domain.RentalDaily]
	assert.Equal(t, 75, daily.Price)
	assert.Equal(t, 24*time.Hour, daily.Duration)

	weekly := byKind[domain.RentalWeekly]
	assert.Equal(t, 120, weekly.Price)
	assert.Equal(t, 7*24*time.Hour, weekly.Duration)
}

func TestDeriveOptions_PriceFloors(t *testing.T) {
	options := DeriveOptions(domain.Cosmetic{ID: "pin_tiny", Category: domain.CategoryHat, Price: 2})

	byKind := map[domain.RentalOptionKind]domain.RentalOption{}
	for _, o := range options {
		byKind[o.Kind] = o
	}

	// 20%, 50% and 80% of 2 all round below the per-kind floors.
	assert.Equal(t, 1, byKind[domain.RentalHourly].Price)
	assert.Equal(t, 5, byKind[domain.RentalDaily].Price)
	assert.Equal(t, 10, byKind[domain.RentalWeekly].Price)
}

func TestDeriveOptions_GatedCosmeticGetsTrial(t *testing.T) {
	options := DeriveOptions(domain.Cosmetic{
		ID:       "wings_void",
		Category: domain.CategoryWing,
		Price:    500,
		Access:   domain.AccessElevated,
	})
	require.Len(t, options, 4)

	var trial *domain.RentalOption
	for i := range options {
		if options[i].Kind == domain.RentalTrial {
			trial = &options[i]
		}
	}
	require.NotNil(t, trial)
	assert.Equal(t, 50, trial.Price)
	assert.Equal(t, 30*time.Minute, trial.Duration)
	assert.False(t, trial.Extendable)
}

func TestDeriveOptions_FreeAndZeroPricedNotRentable(t *testing.T) {
	assert.Nil(t, DeriveOptions(domain.Cosmetic{ID: "aura_basic", Category: domain.CategoryAura, Price: 0, Free: true}))
	assert.Nil(t, DeriveOptions(domain.Cosmetic{ID: "aura_zero", Category: domain.CategoryAura, Price: 0}))
}

func TestOptionID_RoundTrip(t *testing.T) {
	id := OptionID("hat_iron", domain.RentalDaily)
	assert.Equal(t, "hat_iron:daily", id)

	cosmeticID, kind, err := ParseOptionID(id)
	require.NoError(t, err)
	assert.Equal(t, "hat_iron", cosmeticID)
	assert.Equal(t, domain.RentalDaily, kind)
}

func TestParseOptionID_Malformed(t *testing.T) {
	for _, bad := range []string{"", "hat_iron", ":daily", "hat_iron:"} {
		_, _, err := ParseOptionID(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %q", bad)
	}
}
