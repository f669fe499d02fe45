package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// Rental pricing, derived from the cosmetic's purchase price.
const (
	hourlyPricePct = 20
	dailyPricePct  = 50
	weeklyPricePct = 80
	trialPricePct  = 10

	hourlyMinPrice = 1
	dailyMinPrice  = 5
	weeklyMinPrice = 10
	trialMinPrice  = 1
)

// Rental durations.
const (
	hourlyDuration = time.Hour
	dailyDuration  = 24 * time.Hour
	weeklyDuration = 7 * 24 * time.Hour
	trialDuration  = 30 * time.Minute
)

// optionIDSeparator joins cosmetic id and option kind into an option id.
const optionIDSeparator = ":"

// OptionID returns the canonical id for a cosmetic's rental option.
func OptionID(cosmeticID string, kind domain.RentalOptionKind) string {
	return cosmeticID + optionIDSeparator + string(kind)
}

// ParseOptionID splits an option id back into cosmetic id and kind.
func ParseOptionID(optionID string) (cosmeticID string, kind domain.RentalOptionKind, err error) {
	idx := strings.LastIndex(optionID, optionIDSeparator)
	if idx <= 0 || idx == len(optionID)-1 {
		return "", "", fmt.Errorf("%w: malformed option id %q", domain.ErrInvalidInput, optionID)
	}
	return optionID[:idx], domain.RentalOptionKind(optionID[idx+1:]), nil
}

func pctPrice(price, pct, floor int) int {
	p := price * pct / 100
	if p < floor {
		p = floor
	}
	return p
}

// DeriveOptions computes the rental options for a cosmetic from its
// purchase price. Free and zero-priced cosmetics are not rentable.
// Access-gated cosmetics additionally get a short non-extendable trial.
func DeriveOptions(c domain.Cosmetic) []domain.RentalOption {
	if c.Price <= 0 || c.Free {
		return nil
	}

	options := []domain.RentalOption{
		{
			ID:         OptionID(c.ID, domain.RentalHourly),
			CosmeticID: c.ID,
			Kind:       domain.RentalHourly,
			Duration:   hourlyDuration,
			Price:      pctPrice(c.Price, hourlyPricePct, hourlyMinPrice),
			Extendable: true,
		},
		{
			ID:         OptionID(c.ID, domain.RentalDaily),
			CosmeticID: c.ID,
			Kind:       domain.RentalDaily,
			Duration:   dailyDuration,
			Price:      pctPrice(c.Price, dailyPricePct, dailyMinPrice),
			Extendable: true,
		},
		{
			ID:         OptionID(c.ID, domain.RentalWeekly),
			CosmeticID: c.ID,
			Kind:       domain.RentalWeekly,
			Duration:   weeklyDuration,
			Price:      pctPrice(c.Price, weeklyPricePct, weeklyMinPrice),
			Extendable: true,
		},
	}

	if c.Gated() {
		options = append(options, domain.RentalOption{
			ID:         OptionID(c.ID, domain.RentalTrial),
			CosmeticID: c.ID,
			Kind:       domain.RentalTrial,
			Duration:   trialDuration,
			Price:      pctPrice(c.Price, trialPricePct, trialMinPrice),
			Extendable: false,
		})
	}

	return options
}

// findOption returns the option of the given kind, if the cosmetic offers it.
func findOption(c domain.Cosmetic, kind domain.RentalOptionKind) (domain.RentalOption, bool) {
	for _, option := range DeriveOptions(c) {
		if option.Kind == kind {
			return option, true
		}
	}
	return domain.RentalOption{}, false
}
