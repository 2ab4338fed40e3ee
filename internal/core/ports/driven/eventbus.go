package driven

import "github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"

// EventBus fans lifecycle events out to subscribers.
//
// Publish never blocks: slow subscribers drop events once their buffer is
// full, and drops are counted rather than stalling the pipeline. This is an
// optional service - when nil, no events are emitted.
type EventBus interface {
	// Publish delivers an event to all current subscribers.
	Publish(event domain.Event)

	// Subscribe registers interest in the given event types. An empty type
	// list subscribes to everything. The returned cancel function removes
	// the subscription and closes the channel.
	Subscribe(types ...domain.EventType) (<-chan domain.Event, func())

	// Dropped returns the number of events dropped due to full subscriber
	// buffers since the bus was created.
	Dropped() uint64

	// Close removes all subscriptions and closes their channels.
	Close() error
}
