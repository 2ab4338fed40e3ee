package driven

import "github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"

// ExportRenderer renders one graph version and its projected rows into a
// single container format.
//
// Renderers are pure: identical (graph, rows) inputs produce identical
// bytes. The artifact checksum is computed over the canonical row
// serialization, not the rendered bytes, so renderers are free to use
// container-specific layouts.
type ExportRenderer interface {
	// Type returns the export type this renderer produces.
	Type() domain.ExportType

	// Render produces the artifact content bytes.
	Render(graph *domain.RequirementGraph, rows []domain.ExportRow) ([]byte, error)
}
