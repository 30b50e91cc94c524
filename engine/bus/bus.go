// Package bus is the synchronous, type-parameterized event signal the
// ECS store and the session layer both emit onto. Handlers run inline on
// the emitting goroutine in subscription order, exactly as the surrounding
// engine's own tick and post-callback queues behave: there is no hidden
// asynchrony for application code to reason about.
package bus

import (
	"reflect"
	"sync"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/safe"
)

// Bus dispatches events of arbitrary registered types to their subscribers.
// A Bus is not safe for concurrent Publish/Subscribe calls from multiple
// goroutines at once; the engine core only ever touches it from the single
// thread driving the tick loop.
type Bus struct {
	mu       sync.Mutex
	handlers map[reflect.Type][]*subscription
	nextID   uint64
}

// Token identifies one subscription so it can later be removed.
type Token struct {
	typ reflect.Type
	id  uint64
}

type subscription struct {
	id uint64
	fn reflect.Value
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]*subscription)}
}

// Subscribe registers handler to be called, in subscription order, every
// time an event of type T is published. The returned Token can be passed to
// Unsubscribe.
func Subscribe[T any](b *Bus, handler func(T)) Token {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], &subscription{id: id, fn: reflect.ValueOf(handler)})
	return Token{typ: t, id: id}
}

// Unsubscribe removes a previously registered handler. It is a no-op if the
// token has already been removed.
func (b *Bus) Unsubscribe(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[tok.typ]
	for i, s := range subs {
		if s.id == tok.id {
			b.handlers[tok.typ] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every subscriber of T synchronously, in the
// order they subscribed. Handlers that panic do not stop later handlers
// from running: each handler runs under safe.Run, which recovers its panic
// and logs it with a stack trace before the next handler is called,
// matching how the engine treats misbehaving application callbacks
// elsewhere.
func Publish[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	subs := make([]*subscription, len(b.handlers[t]))
	copy(subs, b.handlers[t])
	b.mu.Unlock()

	arg := reflect.ValueOf(event)
	for _, s := range subs {
		fn, a := s.fn, arg
		safe.Run(func() { fn.Call([]reflect.Value{a}) })
	}
}

// Len reports how many handlers are currently subscribed to T; mainly
// useful in tests that assert Unsubscribe actually removed a handler.
func Len[T any](b *Bus) int {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[t])
}
