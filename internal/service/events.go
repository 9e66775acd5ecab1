package service

import (
	"context"
	"homeservice-booking/internal/model"
	"sync"
)

// EventPublisher receives lifecycle events from the booking engine
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event)
}

// EventHandler consumes published events. Handlers must not block the
// publisher; slow delivery belongs in the handler's own goroutines.
type EventHandler interface {
	Handle(ctx context.Context, event model.Event)
}

// EventHandlerFunc adapts a function to EventHandler
type EventHandlerFunc func(ctx context.Context, event model.Event)

func (f EventHandlerFunc) Handle(ctx context.Context, event model.Event) {
	f(ctx, event)
}

// EventBus is an in-process fan-out of lifecycle events
type EventBus struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

// NewEventBus creates an event bus with no subscribers
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers h for every subsequent event
func (b *EventBus) Subscribe(h EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish hands event to every subscriber in registration order
func (b *EventBus) Publish(ctx context.Context, event model.Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.Handle(ctx, event)
	}
}
