package driven

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// Chunker splits normalized document text into semantic chunks.
//
// Chunk IDs are content-addressed and unique within the document. Each chunk
// carries its source offset range, an embedding, and tags. Chunks are
// immutable once produced.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk splits the text of a document into ordered chunks.
	// Returns domain.InsufficientInputError when the usable text is too
	// short to chunk at all.
	Chunk(ctx context.Context, docID, text string) ([]domain.Chunk, error)
}
