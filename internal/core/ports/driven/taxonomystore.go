package driven

import "github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"

// TaxonomyStore provides the module taxonomy used to canonicalize module
// names per domain.
//
// Implementations load a YAML file when one is configured and fall back to
// the embedded default taxonomy otherwise.
type TaxonomyStore interface {
	// Load returns the taxonomy. The result is safe to retain; stores
	// return a fresh copy on every call.
	Load() (*domain.Taxonomy, error)

	// Path returns the taxonomy file path, or empty when the embedded
	// default is in use.
	Path() string
}
