package events

import "sync"

// Handler receives one event payload. Handlers run synchronously on the
// emitter's goroutine, which preserves per-channel emission order.
type Handler func(payload any)

// Bus is a minimal named-channel dispatcher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Name][]Handler)}
}

// Subscribe registers a handler for a channel. Handlers are invoked in
// subscription order.
func (b *Bus) Subscribe(name Name, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], h)
	b.mu.Unlock()
}

// Emit delivers the payload to every handler subscribed to the channel.
func (b *Bus) Emit(name Name, payload any) {
	b.mu.RLock()
	subs := b.handlers[name]
	b.mu.RUnlock()

	for _, h := range subs {
		h(payload)
	}
}
