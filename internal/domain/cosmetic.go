package domain

// Category identifies the slot a cosmetic occupies. A player can have at
// most one active cosmetic per category.
type Category string

// Cosmetic categories
const (
	CategoryParticle       Category = "particle"
	CategoryHat            Category = "hat"
	CategoryPet            Category = "pet"
	CategoryTrail          Category = "trail"
	CategoryGadget         Category = "gadget"
	CategoryWing           Category = "wing"
	CategoryAura           Category = "aura"
	CategoryTransformation Category = "transformation"
)

// AllCategories lists every known category, used for validation and cleanup passes.
var AllCategories = []Category{
	CategoryParticle,
	CategoryHat,
	CategoryPet,
	CategoryTrail,
	CategoryGadget,
	CategoryWing,
	CategoryAura,
	CategoryTransformation,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// AccessLevel gates who may use a cosmetic.
type AccessLevel int

const (
	// AccessEveryone means no gating.
	AccessEveryone AccessLevel = iota
	// AccessElevated requires an elevated-access grant from the access bridge.
	AccessElevated
)

// Cosmetic is the read-only catalog record for a purchasable visual item.
type Cosmetic struct {
	ID       string      `json:"id" validate:"required"`
	Name     string      `json:"name" validate:"required"`
	Category Category    `json:"category" validate:"required"`
	Price    int         `json:"price" validate:"min=0"`
	Free     bool        `json:"free"`
	Access   AccessLevel `json:"access" validate:"min=0,max=1"`
}

// Gated reports whether the cosmetic requires elevated access.
func (c Cosmetic) Gated() bool {
	return c.Access == AccessElevated
}
