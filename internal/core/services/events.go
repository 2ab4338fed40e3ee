package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// publish emits a lifecycle event when a bus is wired. The bus is an
// optional dependency; a nil bus drops the event.
func publish(bus driven.EventBus, t domain.EventType, docID string, payload map[string]string) {
	if bus == nil {
		return
	}
	bus.Publish(domain.Event{
		ID:      uuid.NewString(),
		Type:    t,
		DocID:   docID,
		At:      time.Now(),
		Payload: payload,
	})
}
