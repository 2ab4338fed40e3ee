// Package events provides an in-process event bus.
//
// The bus fans published events out to subscriber channels without ever
// blocking the publisher: a subscriber that stops draining loses events
// once its buffer fills, and the bus counts the drops. Emitting progress
// must never stall the pipeline that is making the progress.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure Bus implements the interface.
var _ driven.EventBus = (*Bus)(nil)

// DefaultBufferSize is the per-subscriber channel buffer.
const DefaultBufferSize = 64

// Config holds configuration for the event bus.
type Config struct {
	// BufferSize is the per-subscriber channel buffer (default: 64).
	BufferSize int
}

// Bus is an in-process event bus with per-subscriber buffers.
type Bus struct {
	mu         sync.RWMutex
	subs       map[int]*subscriber
	nextID     int
	closed     bool
	bufferSize int

	dropped atomic.Uint64
}

// subscriber is one registered listener. A nil type set means all types.
type subscriber struct {
	ch    chan domain.Event
	types map[domain.EventType]struct{}
}

// NewBus creates a new event bus.
func NewBus(cfg Config) *Bus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &Bus{
		subs:       make(map[int]*subscriber),
		bufferSize: cfg.BufferSize,
	}
}

// Publish delivers an event to all current subscribers. Subscribers with
// full buffers are skipped and the drop is counted.
func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers interest in the given event types. An empty type
// list subscribes to everything. The returned cancel function removes
// the subscription and closes the channel; it is safe to call twice.
func (b *Bus) Subscribe(types ...domain.EventType) (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	sub := &subscriber{ch: ch}
	if len(types) > 0 {
		sub.types = make(map[domain.EventType]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		close(sub.ch)
	}
	return ch, cancel
}

// Dropped returns the number of events dropped due to full subscriber
// buffers since the bus was created.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close removes all subscriptions and closes their channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
	return nil
}

// wants reports whether the subscriber's filter matches the event type.
func (s *subscriber) wants(t domain.EventType) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}
