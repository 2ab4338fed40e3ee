package driven

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// GraphStore persists requirement graph versions and validation reports.
//
// Graph versions are immutable once saved. Every version of a document is
// retained; regeneration appends a new version and never rewrites history.
type GraphStore interface {
	// SaveGraph stores a new graph version.
	// Returns domain.ErrAlreadyExists when the (doc, version) pair is taken.
	SaveGraph(ctx context.Context, graph *domain.RequirementGraph) error

	// GetGraph retrieves one version of a document's graph.
	// Returns domain.ErrNoGraph when the version does not exist.
	GetGraph(ctx context.Context, docID string, version int) (*domain.RequirementGraph, error)

	// GetLatest retrieves the highest version of a document's graph.
	// Returns domain.ErrNoGraph when the document has no graph yet.
	GetLatest(ctx context.Context, docID string) (*domain.RequirementGraph, error)

	// ListVersions returns version numbers for a document, ascending.
	ListVersions(ctx context.Context, docID string) ([]int, error)

	// SaveReport stores the validation report for a graph version.
	SaveReport(ctx context.Context, report *domain.ValidationReport) error

	// GetReport retrieves the validation report for a graph version.
	// Returns domain.ErrNotFound when no report exists.
	GetReport(ctx context.Context, docID string, version int) (*domain.ValidationReport, error)

	// DeleteByDocument removes every graph version and report for a
	// document. Used only when the document itself is deleted.
	DeleteByDocument(ctx context.Context, docID string) error
}
