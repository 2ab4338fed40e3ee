package driven

import (
	"context"
)

// Normaliser extracts normalized plain text from one source file format.
//
// Normalisation strips markup and container structure only; the sentences
// themselves survive verbatim, so offsets into the produced text remain
// stable for chunking. Selection is by file extension via the registry in
// internal/normalisers.
type Normaliser interface {
	// Name returns the normaliser name for logging and configuration.
	Name() string

	// Extensions returns the lowercase file extensions handled, with dot.
	Extensions() []string

	// Normalise converts raw file bytes into plain text.
	// Returns domain.ErrInvalidInput when the bytes are not a valid
	// instance of the format.
	Normalise(ctx context.Context, raw []byte) (string, error)
}
