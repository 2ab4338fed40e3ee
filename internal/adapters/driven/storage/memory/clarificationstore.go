package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure ClarificationStore implements the interface.
var _ driven.ClarificationStore = (*ClarificationStore)(nil)

// ClarificationStore is an in-memory implementation of driven.ClarificationStore.
type ClarificationStore struct {
	mu    sync.RWMutex
	items map[string]domain.Clarification
}

// NewClarificationStore creates a new in-memory clarification store.
func NewClarificationStore() *ClarificationStore {
	return &ClarificationStore{
		items: make(map[string]domain.Clarification),
	}
}

// SaveClarifications stores or updates clarification entries.
func (s *ClarificationStore) SaveClarifications(_ context.Context, items []domain.Clarification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range items {
		s.items[items[i].ID] = items[i]
	}
	return nil
}

// GetClarification retrieves one entry by ID.
func (s *ClarificationStore) GetClarification(_ context.Context, id string) (*domain.Clarification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("clarification %s: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

// ListByDocument returns all clarifications for a document in ask order.
func (s *ClarificationStore) ListByDocument(_ context.Context, docID string) ([]domain.Clarification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Clarification
	for id := range s.items {
		if s.items[id].DocID == docID {
			out = append(out, s.items[id])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AskedAt.Equal(out[j].AskedAt) {
			return out[i].AskedAt.Before(out[j].AskedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListExpired returns pending clarifications due at or before now.
func (s *ClarificationStore) ListExpired(_ context.Context, now time.Time) ([]domain.Clarification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Clarification
	for id := range s.items {
		item := s.items[id]
		if item.Status == domain.ClarificationPending && !item.ExpiresAt.After(now) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteByDocument removes all clarifications for a document.
func (s *ClarificationStore) DeleteByDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.items {
		if s.items[id].DocID == docID {
			delete(s.items, id)
		}
	}
	return nil
}
