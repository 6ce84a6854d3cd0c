package events

import (
	"log/slog"
	"sync"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// Handler consumes a published domain event.
type Handler func(event domain.Event)

// Bus is an in-process publish/subscribe channel decoupling REST mutation
// handlers from the WebSocket broadcast logic. Dispatch is a plain mapping
// from event kind to subscriber list: every kind has exactly one broadcast
// consumer, so no pattern matching is needed.
//
// Publish is synchronous and ordered: handlers run inline on the
// publisher's goroutine, so events published in a given order are handed to
// each subscriber in that same order. Handler failures are contained here
// and never reach the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[domain.EventKind][]Handler
	logger   *slog.Logger
}

var _ ports.EventPublisher = (*Bus)(nil)

// NewBus creates an empty event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[domain.EventKind][]Handler),
		logger:   logger.With("component", "event_bus"),
	}
}

// Subscribe registers a handler for the given event kind. Subscriptions are
// expected to happen during wiring, before any publishes.
func (b *Bus) Subscribe(kind domain.EventKind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Publish delivers the event to every subscriber of its kind. It implements
// ports.EventPublisher. A kind with no subscribers is a no-op.
func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Kind]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(handler, event)
	}
}

// dispatch runs a single handler, recovering panics so a broken subscriber
// cannot take down the publishing request.
func (b *Bus) dispatch(handler Handler, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_kind", event.Kind,
				"project_id", event.ProjectID,
				"panic", r,
			)
		}
	}()

	handler(event)
}
