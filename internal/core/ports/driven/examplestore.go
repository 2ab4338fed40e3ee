package driven

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// ExampleStore persists the example corpus.
//
// The corpus is append-only: records are added, never updated or removed.
// Backed by SQLite (primary) or Postgres with pgvector (optional).
type ExampleStore interface {
	// Append stores new example records. Records with an already-known
	// example ID are skipped.
	Append(ctx context.Context, records []domain.ExampleRecord) error

	// List returns all example records ordered by example ID ascending.
	List(ctx context.Context) ([]domain.ExampleRecord, error)

	// ListByDomain returns records for one domain label, ordered by
	// example ID.
	ListByDomain(ctx context.Context, domainLabel string) ([]domain.ExampleRecord, error)

	// Get retrieves a record by example ID.
	Get(ctx context.Context, exampleID string) (*domain.ExampleRecord, error)

	// Count returns the number of stored examples.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
