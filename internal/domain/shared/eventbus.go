package shared

import (
	"context"
	"sync"
)

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	// An empty slice means the handler receives all events
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish publishes one or more domain events. When the context carries a
	// pending-event buffer (an open primary transaction), events are staged on
	// it and dispatched only after the transaction commits; otherwise they are
	// dispatched immediately.
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	// Subscribe registers a handler for specific event types
	// If no event types are provided, the handler receives all events
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a handler from the subscription list
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	// Start starts the bus's background dispatch workers
	Start(ctx context.Context) error
	// Stop drains in-flight dispatches and stops the workers
	Stop(ctx context.Context) error
}

type pendingEventsKey struct{}

// PendingEvents buffers events published during a primary transaction.
// The transaction manager attaches a buffer to the context before running the
// unit of work and drains it after the commit succeeds; a rollback simply
// abandons the buffer, so nothing staged on it is ever dispatched.
type PendingEvents struct {
	mu     sync.Mutex
	events []DomainEvent
}

// Add stages events on the buffer
func (p *PendingEvents) Add(events ...DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

// Drain returns the staged events and empties the buffer
func (p *PendingEvents) Drain() []DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	drained := p.events
	p.events = nil
	return drained
}

// Len returns the number of staged events
func (p *PendingEvents) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// WithPendingEvents attaches a fresh pending-event buffer to the context
func WithPendingEvents(ctx context.Context) (context.Context, *PendingEvents) {
	pending := &PendingEvents{}
	return context.WithValue(ctx, pendingEventsKey{}, pending), pending
}

// PendingEventsFromContext returns the pending-event buffer attached to the
// context, or nil when no primary transaction is open
func PendingEventsFromContext(ctx context.Context) *PendingEvents {
	pending, _ := ctx.Value(pendingEventsKey{}).(*PendingEvents)
	return pending
}
