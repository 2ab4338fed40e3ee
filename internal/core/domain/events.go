package domain

import "time"

// EventType names a lifecycle event emitted by the pipeline.
type EventType string

const (
	// EventDocumentSubmitted fires when a document is accepted.
	EventDocumentSubmitted EventType = "document.submitted"

	// EventProcessingCompleted fires when a graph version is committed.
	// Payload: graph_id, version, duration.
	EventProcessingCompleted EventType = "processing.completed"

	// EventValidationFailed fires when a validation run ends in fail.
	// Payload: issue_ids, severity.
	EventValidationFailed EventType = "validation.failed"

	// EventExportReady fires when an export artifact exists.
	// Payload: artifact_id, type.
	EventExportReady EventType = "export.ready"

	// EventClarificationRequested fires when processing parks on
	// clarification questions. Payload: document_id, count.
	EventClarificationRequested EventType = "clarification.requested"

	// EventStatusChanged fires on every document status transition.
	// Payload: from, to.
	EventStatusChanged EventType = "document.status_changed"
)

// Event is one lifecycle notification.
type Event struct {
	// ID is the unique identifier for this emission.
	ID string

	// Type is the event kind.
	Type EventType

	// DocID is the document the event concerns.
	DocID string

	// At is the emission time.
	At time.Time

	// Payload carries event-specific string fields.
	Payload map[string]string
}
