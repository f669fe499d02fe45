package slots

import (
	"context"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// Effects is implemented by the presentation/visual layer. The engine
// never renders anything itself; it only tells the layer what to show.
type Effects interface {
	Apply(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error
	Remove(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error
}

// NoopEffects is the default when no visual layer is attached.
type NoopEffects struct{}

func (NoopEffects) Apply(context.Context, string, *domain.Cosmetic) error  { return nil }
func (NoopEffects) Remove(context.Context, string, *domain.Cosmetic) error { return nil }

// Handler is the per-category activation strategy. The manager treats
// every category through this interface; categories with extra
// lifecycle plug in their own implementation.
type Handler interface {
	// Activate installs the cosmetic's effect for the player.
	Activate(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error
	// Deactivate removes the cosmetic's effect.
	Deactivate(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error
	// Release tears down any lingering state for a player who is gone.
	// Unlike Deactivate it must not fail; errors are best-effort logged
	// by the caller.
	Release(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error
}

// EffectHandler is the default handler backing most categories: apply
// and remove a visual effect, nothing more.
type EffectHandler struct {
	effects Effects
}

// NewEffectHandler creates the default category handler.
func NewEffectHandler(effects Effects) *EffectHandler {
	return &EffectHandler{effects: effects}
}

func (h *EffectHandler) Activate(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error {
	return h.effects.Apply(ctx, playerID, cosmetic)
}

func (h *EffectHandler) Deactivate(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error {
	return h.effects.Remove(ctx, playerID, cosmetic)
}

func (h *EffectHandler) Release(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error {
	return h.effects.Remove(ctx, playerID, cosmetic)
}
