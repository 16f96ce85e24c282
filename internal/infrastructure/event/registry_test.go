package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	r := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()

	r.Register(h1, "TabOpened", "TabClosed")
	r.Register(h1, "TabOpened")
	r.Register(h2)

	opened := r.GetHandlers("TabOpened")
	assert.Len(t, opened, 2)
	assert.Same(t, h1, opened[0])
	assert.Same(t, h2, opened[1])

	assert.Len(t, r.GetHandlers("ProductCreated"), 1)
	assert.Equal(t, 2, r.Count())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()
	r.Register(h1, "TabOpened")
	r.Register(h2, "TabOpened")
	r.Register(h1)

	r.Unregister(h1)

	handlers := r.GetHandlers("TabOpened")
	assert.Len(t, handlers, 1)
	assert.Same(t, h2, handlers[0])
	assert.Equal(t, 1, r.Count())

	r.Unregister(h2)
	assert.Empty(t, r.GetHandlers("TabOpened"))
	assert.Equal(t, 0, r.Count())
}
