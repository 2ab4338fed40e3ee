package driven

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Backed by SQLite for metadata and text storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document, replacing any existing set.
	SaveChunks(ctx context.Context, docID string, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when no such document exists.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document in sequence order.
	GetChunks(ctx context.Context, docID string) ([]domain.Chunk, error)

	// ListDocuments returns all documents ordered by submission time
	// descending.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// ListByStatus returns documents in the given status.
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
