package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure GraphStore implements the interface.
var _ driven.GraphStore = (*GraphStore)(nil)

// GraphStore is an in-memory implementation of driven.GraphStore.
// Graphs are cloned on both save and load so callers never share
// mutable state with the store.
type GraphStore struct {
	mu      sync.RWMutex
	graphs  map[string]map[int]*domain.RequirementGraph
	reports map[string]*domain.ValidationReport
}

// NewGraphStore creates a new in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		graphs:  make(map[string]map[int]*domain.RequirementGraph),
		reports: make(map[string]*domain.ValidationReport),
	}
}

// SaveGraph stores a new graph version.
func (s *GraphStore) SaveGraph(_ context.Context, graph *domain.RequirementGraph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.graphs[graph.DocID]
	if versions == nil {
		versions = make(map[int]*domain.RequirementGraph)
		s.graphs[graph.DocID] = versions
	}
	if _, ok := versions[graph.Version]; ok {
		return fmt.Errorf("graph %s v%d: %w", graph.DocID, graph.Version, domain.ErrAlreadyExists)
	}
	versions[graph.Version] = graph.Clone()
	return nil
}

// GetGraph retrieves one version of a document's graph. A report saved
// after the graph overrides the embedded validation state.
func (s *GraphStore) GetGraph(_ context.Context, docID string, version int) (*domain.RequirementGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.graphs[docID][version]
	if !ok {
		return nil, fmt.Errorf("graph %s v%d: %w", docID, version, domain.ErrNoGraph)
	}
	return s.withReport(stored), nil
}

// GetLatest retrieves the highest version of a document's graph.
func (s *GraphStore) GetLatest(_ context.Context, docID string) (*domain.RequirementGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.graphs[docID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("document %s: %w", docID, domain.ErrNoGraph)
	}
	highest := 0
	for v := range versions {
		if v > highest {
			highest = v
		}
	}
	return s.withReport(versions[highest]), nil
}

// ListVersions returns version numbers for a document, ascending.
func (s *GraphStore) ListVersions(_ context.Context, docID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.graphs[docID]
	out := make([]int, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}

// SaveReport stores the validation report for a graph version.
func (s *GraphStore) SaveReport(_ context.Context, report *domain.ValidationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.GraphID] = report.Clone()
	return nil
}

// GetReport retrieves the validation report for a graph version.
func (s *GraphStore) GetReport(_ context.Context, docID string, version int) (*domain.ValidationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[domain.GraphVersionID(docID, version)]
	if !ok {
		return nil, fmt.Errorf("report %s v%d: %w", docID, version, domain.ErrNotFound)
	}
	return report.Clone(), nil
}

// DeleteByDocument removes every graph version and report for a document.
func (s *GraphStore) DeleteByDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, graph := range s.graphs[docID] {
		delete(s.reports, graph.GraphID)
	}
	delete(s.graphs, docID)
	return nil
}

func (s *GraphStore) withReport(stored *domain.RequirementGraph) *domain.RequirementGraph {
	out := stored.Clone()
	if report, ok := s.reports[out.GraphID]; ok {
		out.Validation = report.Clone()
		out.ConfidenceScore = report.ConfidenceScore
	}
	return out
}
