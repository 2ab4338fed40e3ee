package driving

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// ExportService projects graph versions into tabular artifacts.
type ExportService interface {
	// Export produces the artifact for a graph version and format.
	// Version 0 means the latest. Exporting the same version and type
	// twice returns the stored artifact with an identical checksum.
	Export(ctx context.Context, docID string, version int, typ domain.ExportType) (*domain.ExportArtifact, error)

	// Rows projects a graph version into ordered export rows without
	// rendering a container format.
	Rows(ctx context.Context, docID string, version int) ([]domain.ExportRow, error)

	// ListArtifacts returns stored artifacts for a document, newest first.
	ListArtifacts(ctx context.Context, docID string) ([]domain.ExportArtifact, error)
}
