package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrInsufficientInput indicates the submitted text is too short to
	// interpret. Recoverable: the caller can supply more material.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrSchemaViolation indicates the generation capability returned a
	// payload that does not satisfy the scope schema.
	ErrSchemaViolation = errors.New("generation output violates schema")

	// ErrGenerationFailure indicates generation kept producing invalid
	// output after the corrective retry budget. The document's graph
	// stays at its last good version.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrGenerationTimeout indicates a generation call exceeded its
	// deadline. Retried with backoff before failing the stage.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrDependencyCycle indicates a feature dependency edge would close
	// a cycle. Always downgraded to a recorded contradiction issue.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrRetrievalDegraded indicates no prior example met the similarity
	// floor. Non-fatal: generation proceeds unaugmented.
	ErrRetrievalDegraded = errors.New("retrieval degraded")

	// Capability Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Chunking and retrieval cannot run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates no generation service is configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrRateLimited indicates the capability provider rejected the call
	// for rate reasons.
	ErrRateLimited = errors.New("rate limited")

	// Lifecycle Errors.

	// ErrDocumentTerminal indicates an operation on a failed or
	// cancelled document.
	ErrDocumentTerminal = errors.New("document is in a terminal state")

	// ErrAwaitingClarification indicates processing is parked on open
	// clarification questions.
	ErrAwaitingClarification = errors.New("awaiting clarification")

	// ErrRegenerationInFlight indicates another regeneration for the
	// same document is running; per-document regeneration is serial.
	ErrRegenerationInFlight = errors.New("regeneration already in flight for document")

	// ErrNoGraph indicates the document has no committed graph version yet.
	ErrNoGraph = errors.New("no graph version for document")
)

// InsufficientInputError reports how much usable text was found and the
// minimum the pipeline needs, so the caller knows what would unblock it.
type InsufficientInputError struct {
	Have int
	Need int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("insufficient input: %d usable characters, need at least %d", e.Have, e.Need)
}

// Unwrap makes errors.Is(err, ErrInsufficientInput) hold.
func (e *InsufficientInputError) Unwrap() error {
	return ErrInsufficientInput
}

// SchemaViolationError carries the concrete violations found in a
// generation payload. The corrective retry prompt embeds them.
type SchemaViolationError struct {
	Violations []string
}

func (e *SchemaViolationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrSchemaViolation.Error()
	}
	return fmt.Sprintf("generation output violates schema: %s", e.Violations[0])
}

// Unwrap makes errors.Is(err, ErrSchemaViolation) hold.
func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}
