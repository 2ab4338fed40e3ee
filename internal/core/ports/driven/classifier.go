package driven

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// DomainClassifier assigns a domain label to a chunked document.
//
// Classification is advisory: it biases example retrieval and taxonomy
// selection but never fails the pipeline. Low-margin classifications fall
// back to the generic domain.
type DomainClassifier interface {
	// Classify examines chunk embeddings and returns the domain label with
	// a confidence in [0,1].
	Classify(ctx context.Context, chunks []domain.Chunk) (string, float64, error)
}
