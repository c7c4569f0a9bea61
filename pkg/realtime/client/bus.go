// Package client is the consuming side of the realtime channel: a Transport
// that keeps a websocket open and a Bus that routes decoded events to
// subscribers.
package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"eureka/pkg/realtime/wire"
)

// Handler receives the raw payload of one event. Every subscriber of an event
// gets the same slice and must not modify it.
type Handler func(payload json.RawMessage)

// Subscriber is implemented by Bus and Scope.
type Subscriber interface {
	Subscribe(eventType wire.EventType, h Handler) *Subscription
}

// Subscription is the handle returned by Subscribe. Subscribing the same
// function twice yields two handles, and each fires until released.
type Subscription struct {
	bus       *Bus
	eventType wire.EventType
	handler   Handler
	released  atomic.Bool
}

// EventType is the event this subscription listens to.
func (s *Subscription) EventType() wire.EventType { return s.eventType }

// Unsubscribe releases the subscription. Later calls are no-ops.
func (s *Subscription) Unsubscribe() {
	s.bus.Unsubscribe(s)
}

// Bus maps event types to subscriber lists.
type Bus struct {
	mu     sync.RWMutex
	subs   map[wire.EventType][]*Subscription
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[wire.EventType][]*Subscription),
		logger: logger,
	}
}

// Subscribe appends h to the subscribers of eventType.
func (b *Bus) Subscribe(eventType wire.EventType, h Handler) *Subscription {
	sub := &Subscription{bus: b, eventType: eventType, handler: h}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventType] = append(b.subs[eventType], sub)
	return sub
}

// Unsubscribe removes exactly sub. Nil or already released handles are
// ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.bus != b || sub.released.Swap(true) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.eventType]
	for i, s := range list {
		if s == sub {
			// copy so snapshots held by an in-flight Dispatch stay intact
			next := make([]*Subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, sub.eventType)
			} else {
				b.subs[sub.eventType] = next
			}
			return
		}
	}
}

// Len reports how many subscriptions eventType has.
func (b *Bus) Len(eventType wire.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}

// Dispatch runs every subscriber of eventType in registration order on the
// calling goroutine. The list is snapshotted first, so handlers may subscribe
// or unsubscribe freely. A panicking handler is logged and skipped.
func (b *Bus) Dispatch(eventType wire.EventType, payload json.RawMessage) {
	b.mu.RLock()
	snapshot := b.subs[eventType]
	b.mu.RUnlock()

	for _, sub := range snapshot {
		if sub.released.Load() {
			continue
		}
		b.invoke(sub, payload)
	}
}

func (b *Bus) invoke(sub *Subscription, payload json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("realtime subscriber panicked",
				"event_type", sub.eventType.String(),
				"panic", fmt.Sprint(r),
			)
		}
	}()
	sub.handler(payload)
}

// On subscribes a typed handler. Payloads that do not decode into T are
// logged and skipped.
func On[T any](s Subscriber, eventType wire.EventType, fn func(T), logger *slog.Logger) *Subscription {
	return s.Subscribe(eventType, func(payload json.RawMessage) {
		v, err := wire.DecodePayload[T](payload)
		if err != nil {
			logger.Warn("dropping undecodable payload",
				"event_type", eventType.String(),
				"error", err,
			)
			return
		}
		fn(v)
	})
}

// Scope collects subscriptions so a consumer can release all of them at
// once when it goes away.
type Scope struct {
	bus    *Bus
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

func (b *Bus) NewScope() *Scope {
	return &Scope{bus: b}
}

// Subscribe registers h on the bus and tracks the handle. After Close it
// returns an already released subscription.
func (s *Scope) Subscribe(eventType wire.EventType, h Handler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.bus.Subscribe(eventType, h)
	if s.closed {
		sub.Unsubscribe()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Close releases every subscription taken through the scope.
func (s *Scope) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
