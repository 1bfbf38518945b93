package event

import (
	"sync"

	"github.com/finledger/backend/internal/domain/shared"
)

// HandlerRegistry holds event handler subscriptions. Registration happens
// once at process start; lookups happen on every dispatch, so the map is
// guarded by a read-write lock.
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates an empty handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		byType: make(map[string][]shared.EventHandler),
	}
}

// Register adds a handler for the given event types. With no event types the
// handler becomes a wildcard subscriber and receives every event; the audit
// recorder uses this to observe all change descriptors and filter by domain
// itself.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = append(r.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.byType[eventType] = append(r.byType[eventType], handler)
	}
}

// Unregister removes a handler from all subscriptions
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = withoutHandler(r.wildcard, handler)
	for eventType, handlers := range r.byType {
		remaining := withoutHandler(handlers, handler)
		if len(remaining) == 0 {
			delete(r.byType, eventType)
			continue
		}
		r.byType[eventType] = remaining
	}
}

// HandlersFor returns the handlers subscribed to an event type, wildcard
// subscribers included
func (r *HandlerRegistry) HandlersFor(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.byType[eventType]
	handlers := make([]shared.EventHandler, 0, len(typed)+len(r.wildcard))
	handlers = append(handlers, typed...)
	handlers = append(handlers, r.wildcard...)
	return handlers
}

func withoutHandler(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	remaining := handlers[:0:0]
	for _, h := range handlers {
		if h != target {
			remaining = append(remaining, h)
		}
	}
	return remaining
}
