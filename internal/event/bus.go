package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

// NamedHandlerFunc also receives the event name; wildcard subscribers use it.
type NamedHandlerFunc func(eventName string, raw any)

// Publisher is the narrow side of the bus handed to actuators.
type Publisher interface {
	Publish(eventName string, evt any)
}

// Bus delivers events synchronously, in subscription order, on the
// publishing goroutine. Simulation handlers must observe state within the
// same tick that produced the event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	wildcard []NamedHandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// SubscribeAll registers a handler for every event name. It runs after the
// name-specific handlers.
func (b *Bus) SubscribeAll(handler NamedHandlerFunc) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

func (b *Bus) Publish(eventName string, evt any) {
	b.mu.RLock()
	handlers := append([]HandlerFunc(nil), b.handlers[eventName]...)
	wildcard := append([]NamedHandlerFunc(nil), b.wildcard...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		dispatch(eventName, func() { handler(evt) })
	}
	for _, handler := range wildcard {
		dispatch(eventName, func() { handler(eventName, evt) })
	}
}

func dispatch(eventName string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	call()
}
