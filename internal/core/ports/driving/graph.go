package driving

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// GraphService exposes requirement graph versions to external actors.
type GraphService interface {
	// Get retrieves one version of a document's graph. Version 0 means
	// the latest.
	Get(ctx context.Context, docID string, version int) (*domain.RequirementGraph, error)

	// ListVersions returns the version chain for a document, ascending.
	ListVersions(ctx context.Context, docID string) ([]int, error)

	// Regenerate rebuilds one section of the latest graph with extra
	// instructions, producing version N+1 and the diff against N. All
	// other sections are carried over unchanged. Concurrent regeneration
	// of the same document returns domain.ErrRegenerationInFlight.
	Regenerate(ctx context.Context, docID string, section domain.GraphSection, instructions string) (*domain.RequirementGraph, *domain.GraphDiff, error)

	// Validate re-runs validation on a graph version and returns the
	// report. Version 0 means the latest. The stored report is updated.
	Validate(ctx context.Context, docID string, version int) (*domain.ValidationReport, error)

	// Report returns the stored validation report for a version.
	Report(ctx context.Context, docID string, version int) (*domain.ValidationReport, error)

	// Diff computes the entity-level diff between two versions.
	Diff(ctx context.Context, docID string, fromVersion, toVersion int) ([]domain.GraphDiff, error)
}
