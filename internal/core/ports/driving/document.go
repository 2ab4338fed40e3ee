package driving

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// DocumentService manages document lifecycle and clarifications.
type DocumentService interface {
	// Submit registers a new document from normalized text and returns it
	// in the submitted state. Returns domain.InsufficientInputError when
	// the usable text is below the minimum.
	Submit(ctx context.Context, name, content string) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, docID string) (*domain.Document, error)

	// GetContent returns the stored normalized text of a document.
	GetContent(ctx context.Context, docID string) (string, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Cancel moves a non-terminal document to the cancelled state.
	// Returns domain.ErrDocumentTerminal when already terminal.
	Cancel(ctx context.Context, docID string) error

	// Confirm accepts the latest graph version and marks the document
	// ready for preprocessing. Returns domain.ErrNoGraph when the
	// document has no graph.
	Confirm(ctx context.Context, docID string) error

	// Delete removes a document with its chunks, graphs, and artifacts.
	Delete(ctx context.Context, docID string) error

	// Clarifications returns the clarification rounds for a document in
	// ask order.
	Clarifications(ctx context.Context, docID string) ([]domain.Clarification, error)

	// AnswerClarification records an answer for a pending clarification.
	// When every clarification for the document is resolved, the document
	// leaves awaiting_clarification and can be processed again.
	AnswerClarification(ctx context.Context, docID, clarificationID, answer string) error

	// ExpireClarifications marks overdue pending clarifications expired
	// and returns the affected document IDs. Used by the scheduler sweep.
	ExpireClarifications(ctx context.Context) ([]string, error)
}
