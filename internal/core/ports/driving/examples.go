package driving

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// ExampleService manages the example corpus behind retrieval.
type ExampleService interface {
	// Add embeds and appends an example to the corpus, then reindexes.
	Add(ctx context.Context, domainLabel, textExcerpt, structuredOutput string) (*domain.ExampleRecord, error)

	// AddFromFile loads one corpus JSON file and appends its examples.
	AddFromFile(ctx context.Context, path string) (int, error)

	// List returns all stored examples ordered by example ID.
	List(ctx context.Context) ([]domain.ExampleRecord, error)

	// Count returns the number of stored examples.
	Count(ctx context.Context) (int, error)

	// Reindex reloads the corpus from the store and rebuilds the index
	// snapshot atomically.
	Reindex(ctx context.Context) error

	// Retrieve returns the top-k examples for a chunked document, ranked
	// by similarity. Zero results is not an error; the result is marked
	// degraded instead.
	Retrieve(ctx context.Context, chunks []domain.Chunk, k int) (*domain.RetrievalResult, error)
}
