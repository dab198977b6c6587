package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed handlers come before wildcard handlers", func(t *testing.T) {
		r := NewHandlerRegistry()
		wildcard := newTestHandler()
		typed := newTestHandler("CatalogLoaded")

		r.Register(wildcard)
		r.Register(typed, "CatalogLoaded")

		handlers := r.GetHandlers("CatalogLoaded")
		assert.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])

		other := r.GetHandlers("ChannelStatusChanged")
		assert.Len(t, other, 1)
		assert.Same(t, wildcard, other[0])
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler("CatalogLoaded")

		r.Register(h, "CatalogLoaded")
		r.Register(h, "CatalogLoaded")
		r.Register(h)

		assert.Len(t, r.GetHandlers("CatalogLoaded"), 1)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("unregister removes every subscription", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		keep := newTestHandler()

		r.Register(h, "CatalogLoaded", "CatalogLoadFailed")
		r.Register(h)
		r.Register(keep, "CatalogLoaded")
		r.Unregister(h)

		assert.Len(t, r.GetHandlers("CatalogLoaded"), 1)
		assert.Empty(t, r.GetHandlers("CatalogLoadFailed"))
		assert.Equal(t, 1, r.Len())
	})

	t.Run("returned slice is a snapshot", func(t *testing.T) {
		r := NewHandlerRegistry()
		r.Register(newTestHandler(), "CatalogLoaded")

		snapshot := r.GetHandlers("CatalogLoaded")
		r.Register(newTestHandler(), "CatalogLoaded")

		assert.Len(t, snapshot, 1)
		assert.Len(t, r.GetHandlers("CatalogLoaded"), 2)
	})
}
