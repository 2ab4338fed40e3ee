package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
type ArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]domain.ExportArtifact
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		artifacts: make(map[string]domain.ExportArtifact),
	}
}

// SaveArtifact stores an artifact. Saving a second artifact for the
// same (graph, type) pair returns the existing one unchanged.
func (s *ArtifactStore) SaveArtifact(_ context.Context, artifact *domain.ExportArtifact) (*domain.ExportArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.artifacts[artifact.ArtifactID]; ok {
		return &existing, nil
	}
	s.artifacts[artifact.ArtifactID] = *artifact
	stored := *artifact
	return &stored, nil
}

// GetArtifact retrieves the artifact for a graph version and type.
func (s *ArtifactStore) GetArtifact(_ context.Context, graphID string, typ domain.ExportType) (*domain.ExportArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.artifacts[domain.ArtifactID(graphID, typ)]
	if !ok {
		return nil, fmt.Errorf("artifact %s/%s: %w", graphID, typ, domain.ErrNotFound)
	}
	return &artifact, nil
}

// ListArtifacts returns artifacts for a document, newest first.
func (s *ArtifactStore) ListArtifacts(_ context.Context, docID string) ([]domain.ExportArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ExportArtifact
	for id := range s.artifacts {
		if s.artifacts[id].DocID == docID {
			out = append(out, s.artifacts[id])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ArtifactID < out[j].ArtifactID
	})
	return out, nil
}

// DeleteByDocument removes all artifacts for a document.
func (s *ArtifactStore) DeleteByDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.artifacts {
		if s.artifacts[id].DocID == docID {
			delete(s.artifacts, id)
		}
	}
	return nil
}
