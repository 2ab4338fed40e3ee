package driving

import "context"

// PipelineOrchestrator runs the interpretation pipeline over documents.
type PipelineOrchestrator interface {
	// Process runs the full pipeline for one document: chunk, classify,
	// retrieve, build, validate. The document must be in a processable
	// state. Returns the resulting graph version.
	Process(ctx context.Context, docID string) (*PipelineResult, error)

	// ProcessAll runs the pipeline for every document awaiting processing.
	// Documents run in parallel up to the configured bound; one document
	// failing does not stop the others.
	ProcessAll(ctx context.Context) ([]PipelineResult, error)

	// Status returns the pipeline state for a document.
	Status(ctx context.Context, docID string) (*PipelineStatus, error)
}

// PipelineResult summarises one pipeline run.
type PipelineResult struct {
	// DocID identifies the document.
	DocID string

	// GraphID is the produced graph version identifier, empty when the
	// run stopped before building (e.g. awaiting clarification).
	GraphID string

	// Version is the produced graph version number, 0 when none.
	Version int

	// AwaitingClarification is true when the run parked the document to
	// collect clarification answers instead of building a graph.
	AwaitingClarification bool

	// ValidationStatus is the report status for the produced version.
	ValidationStatus string

	// Err records a per-document failure during ProcessAll.
	Err error
}

// PipelineStatus represents the current pipeline state of a document.
type PipelineStatus struct {
	// DocID identifies the document.
	DocID string

	// Status is the document lifecycle status.
	Status string

	// Domain is the classified domain label, empty before classification.
	Domain string

	// DomainConfidence is the classification confidence in [0,1].
	DomainConfidence float64

	// ChunkCount is the number of chunks produced.
	ChunkCount int

	// LatestVersion is the highest graph version, 0 when none.
	LatestVersion int

	// PendingClarifications is the number of unanswered clarifications.
	PendingClarifications int
}
