package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure ExampleStore implements the interface.
var _ driven.ExampleStore = (*ExampleStore)(nil)

// ExampleStore is an in-memory implementation of driven.ExampleStore.
type ExampleStore struct {
	mu      sync.RWMutex
	records map[string]domain.ExampleRecord
}

// NewExampleStore creates a new in-memory example store.
func NewExampleStore() *ExampleStore {
	return &ExampleStore{
		records: make(map[string]domain.ExampleRecord),
	}
}

// Append stores new example records, skipping already-known IDs.
func (s *ExampleStore) Append(_ context.Context, records []domain.ExampleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range records {
		if _, ok := s.records[records[i].ExampleID]; ok {
			continue
		}
		s.records[records[i].ExampleID] = records[i]
	}
	return nil
}

// List returns all example records ordered by example ID ascending.
func (s *ExampleStore) List(_ context.Context) ([]domain.ExampleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExampleRecord, 0, len(s.records))
	for id := range s.records {
		out = append(out, s.records[id])
	}
	sortExamples(out)
	return out, nil
}

// ListByDomain returns records for one domain label, ordered by example ID.
func (s *ExampleStore) ListByDomain(_ context.Context, domainLabel string) ([]domain.ExampleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ExampleRecord
	for id := range s.records {
		if s.records[id].Domain == domainLabel {
			out = append(out, s.records[id])
		}
	}
	sortExamples(out)
	return out, nil
}

// Get retrieves a record by example ID.
func (s *ExampleStore) Get(_ context.Context, exampleID string) (*domain.ExampleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[exampleID]
	if !ok {
		return nil, fmt.Errorf("example %s: %w", exampleID, domain.ErrNotFound)
	}
	return &record, nil
}

// Count returns the number of stored examples.
func (s *ExampleStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close releases resources (no-op for memory store).
func (s *ExampleStore) Close() error {
	return nil
}

func sortExamples(records []domain.ExampleRecord) {
	sort.Slice(records, func(i, j int) bool { return records[i].ExampleID < records[j].ExampleID })
}
