package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure TaxonomyStore implements the interface.
var _ driven.TaxonomyStore = (*TaxonomyStore)(nil)

// TaxonomyStore loads the module taxonomy from a YAML file. An empty
// path selects the embedded default taxonomy.
type TaxonomyStore struct {
	path string
}

// NewTaxonomyStore creates a new taxonomy store.
func NewTaxonomyStore(path string) *TaxonomyStore {
	return &TaxonomyStore{path: path}
}

// Load returns the taxonomy. A configured file replaces the embedded
// default wholesale; there is no merging.
func (s *TaxonomyStore) Load() (*domain.Taxonomy, error) {
	if s.path == "" {
		return domain.DefaultTaxonomy(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", s.path, err)
	}

	var taxonomy domain.Taxonomy
	if err := yaml.Unmarshal(data, &taxonomy); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", s.path, err)
	}
	if len(taxonomy.Domains) == 0 {
		return nil, fmt.Errorf("%w: taxonomy %s defines no domains", domain.ErrInvalidInput, s.path)
	}
	return &taxonomy, nil
}

// Path returns the taxonomy file path, or empty when the embedded
// default is in use.
func (s *TaxonomyStore) Path() string {
	return s.path
}
