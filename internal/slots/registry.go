package slots

import (
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// Registry maps categories to their handlers. Every category resolves
// to some handler; unknown categories fall back to the default.
type Registry struct {
	handlers map[domain.Category]Handler
	fallback Handler
}

// NewRegistry creates a registry with the default handler for every
// category and the transformation handler for the transformation
// category. Nil effects or morpher fall back to no-ops.
func NewRegistry(effects Effects, morpher Morpher) *Registry {
	if effects == nil {
		effects = NoopEffects{}
	}
	if morpher == nil {
		morpher = NoopMorpher{}
	}
	def := NewEffectHandler(effects)

	r := &Registry{
		handlers: make(map[domain.Category]Handler, len(domain.AllCategories)),
		fallback: def,
	}
	for _, category := range domain.AllCategories {
		r.handlers[category] = def
	}
	r.handlers[domain.CategoryTransformation] = NewTransformationHandler(effects, morpher)
	return r
}

// Register installs a custom handler for a category.
func (r *Registry) Register(category domain.Category, handler Handler) {
	r.handlers[category] = handler
}

// For returns the handler for a category.
func (r *Registry) For(category domain.Category) Handler {
	if h, ok := r.handlers[category]; ok {
		return h
	}
	return r.fallback
}
