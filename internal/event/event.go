package event

import (
	"context"
	"errors"
	"sync"
)

// EventSchemaVersion is stamped into every published event.
const EventSchemaVersion = "1.0"

// Type represents the type of an event.
type Type string

// Event types emitted by the engine. The presentation layer subscribes
// to these to render messages; the engine never blocks on them.
const (
	CratePurchased  Type = "crate.purchased"
	CrateOpened     Type = "crate.opened"
	RentalStarted   Type = "rental.started"
	RentalExtended  Type = "rental.extended"
	RentalExpired   Type = "rental.expired"
	SlotActivated   Type = "slot.activated"
	SlotDeactivated Type = "slot.deactivated"
)

// Event is a generic engine notification.
type Event struct {
	Version string      `json:"version"`
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Handler processes a published event.
type Handler func(ctx context.Context, event Event) error

// Bus is the publish/subscribe surface between the engine core and the
// presentation layer.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory, synchronous Bus implementation.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewMemoryBus creates a new MemoryBus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for the given event type.
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers the event to every subscribed handler. Handler errors
// are collected; the event is still delivered to the remaining handlers.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
