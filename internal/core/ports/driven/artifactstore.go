package driven

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// ArtifactStore persists export artifacts.
//
// Artifacts are immutable. At most one artifact per (graph version, type) is
// current; re-exporting the same version returns the stored artifact instead
// of writing a new one.
type ArtifactStore interface {
	// SaveArtifact stores an artifact. Saving a second artifact for the
	// same (graph, type) pair is a no-op that returns the existing one.
	SaveArtifact(ctx context.Context, artifact *domain.ExportArtifact) (*domain.ExportArtifact, error)

	// GetArtifact retrieves the artifact for a graph version and type.
	// Returns domain.ErrNotFound when none exists.
	GetArtifact(ctx context.Context, graphID string, typ domain.ExportType) (*domain.ExportArtifact, error)

	// ListArtifacts returns artifacts for a document, newest first.
	ListArtifacts(ctx context.Context, docID string) ([]domain.ExportArtifact, error)

	// DeleteByDocument removes all artifacts for a document. Used only
	// when the document itself is deleted.
	DeleteByDocument(ctx context.Context, docID string) error
}
