package event

import (
	"slices"
	"sync"

	"github.com/coupang-catalog/backend/internal/domain/shared"
)

// HandlerRegistry keeps handler subscriptions in registration order
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		byType: make(map[string][]shared.EventHandler),
	}
}

// Register subscribes handler to eventTypes, or to every event when none are given.
// Registering the same handler twice for a type is a no-op.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		if !slices.Contains(r.wildcard, handler) {
			r.wildcard = append(r.wildcard, handler)
		}
		return
	}

	for _, eventType := range eventTypes {
		if slices.Contains(r.byType[eventType], handler) {
			continue
		}
		r.byType[eventType] = append(r.byType[eventType], handler)
	}
}

// Unregister removes handler from every subscription
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = without(r.wildcard, handler)
	for eventType, handlers := range r.byType {
		remaining := without(handlers, handler)
		if len(remaining) == 0 {
			delete(r.byType, eventType)
			continue
		}
		r.byType[eventType] = remaining
	}
}

// GetHandlers returns the handlers for eventType followed by wildcard handlers.
// The returned slice is a snapshot and safe to iterate without the lock.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.byType[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(r.wildcard))
	result = append(result, typed...)
	for _, h := range r.wildcard {
		if !slices.Contains(typed, h) {
			result = append(result, h)
		}
	}
	return result
}

// Len returns the number of distinct registered handlers
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]struct{})
	for _, h := range r.wildcard {
		seen[h] = struct{}{}
	}
	for _, handlers := range r.byType {
		for _, h := range handlers {
			seen[h] = struct{}{}
		}
	}
	return len(seen)
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	return slices.DeleteFunc(slices.Clone(handlers), func(h shared.EventHandler) bool {
		return h == target
	})
}
