package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ExportRenderer = (*Renderer)(nil)

// Renderer writes the projected rows as RFC 4180 CSV with a fixed
// header row.
type Renderer struct{}

// New creates a new CSV renderer.
func New() *Renderer {
	return &Renderer{}
}

// Type returns the export type this renderer produces.
func (r *Renderer) Type() domain.ExportType {
	return domain.ExportCSV
}

// Render produces the CSV bytes, header row first, then one record per
// projected row in projection order.
func (r *Renderer) Render(_ *domain.RequirementGraph, rows []domain.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(domain.ExportHeaders()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Cells()); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
