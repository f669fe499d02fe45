package slots

import (
	"context"
	"errors"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// Morpher is the external entity-lifecycle hook for transformation
// cosmetics, which swap the player's visible entity rather than attach
// an effect to it.
type Morpher interface {
	BeginMorph(ctx context.Context, playerID, cosmeticID string) error
	EndMorph(ctx context.Context, playerID string) error
}

// NoopMorpher is the default when no transformation backend is attached.
type NoopMorpher struct{}

func (NoopMorpher) BeginMorph(context.Context, string, string) error { return nil }
func (NoopMorpher) EndMorph(context.Context, string) error           { return nil }

// TransformationHandler carries the extra entity lifecycle of the
// transformation category. It is registered in the handler registry like
// any other category handler, so the manager's control flow stays
// uniform.
type TransformationHandler struct {
	effects Effects
	morpher Morpher
}

// NewTransformationHandler creates the transformation category handler.
func NewTransformationHandler(effects Effects, morpher Morpher) *TransformationHandler {
	return &TransformationHandler{effects: effects, morpher: morpher}
}

func (h *TransformationHandler) Activate(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error {
	if err := h.morpher.BeginMorph(ctx, playerID, cosmetic.ID); err != nil {
		return err
	}
	return h.effects.Apply(ctx, playerID, cosmetic)
}

func (h *TransformationHandler) Deactivate(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error {
	return errors.Join(
		h.morpher.EndMorph(ctx, playerID),
		h.effects.Remove(ctx, playerID, cosmetic),
	)
}

func (h *TransformationHandler) Release(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error {
	return h.Deactivate(ctx, playerID, cosmetic)
}
