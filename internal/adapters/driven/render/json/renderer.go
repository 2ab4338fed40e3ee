package json

import (
	"encoding/json"
	"fmt"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ExportRenderer = (*Renderer)(nil)

// document is the canonical JSON artifact shape. Struct marshalling
// keeps the key order stable across renders.
type document struct {
	Graph *domain.RequirementGraph `json:"graph"`
	Rows  []domain.ExportRow       `json:"rows"`
}

// Renderer writes the full graph plus the projected rows as indented
// JSON.
type Renderer struct{}

// New creates a new JSON renderer.
func New() *Renderer {
	return &Renderer{}
}

// Type returns the export type this renderer produces.
func (r *Renderer) Type() domain.ExportType {
	return domain.ExportJSON
}

// Render produces the JSON bytes.
func (r *Renderer) Render(graph *domain.RequirementGraph, rows []domain.ExportRow) ([]byte, error) {
	if graph == nil {
		return nil, domain.ErrInvalidInput
	}
	if rows == nil {
		rows = []domain.ExportRow{}
	}
	out, err := json.MarshalIndent(document{Graph: graph, Rows: rows}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return append(out, '\n'), nil
}
