package driven

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// ExampleIndex provides similarity search over the example corpus.
//
// Implementations hold an immutable snapshot of the corpus and swap it
// atomically on rebuild. Searches running concurrently with a rebuild see
// either the old snapshot or the new one, never partial state, and never
// block.
type ExampleIndex interface {
	// Search returns up to k examples ranked by cosine similarity to the
	// query vector, descending, ties broken by example ID ascending.
	// Results below minSimilarity are dropped.
	Search(ctx context.Context, query []float32, k int, minSimilarity float64) ([]domain.RetrievedExample, error)

	// Rebuild constructs a fresh snapshot from the given records and swaps
	// it in atomically.
	Rebuild(ctx context.Context, records []domain.ExampleRecord) error

	// Len returns the number of examples in the current snapshot.
	Len() int
}
