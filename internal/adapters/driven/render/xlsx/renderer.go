package xlsx

import (
	"fmt"
	"regexp"

	"github.com/xuri/excelize/v2"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ExportRenderer = (*Renderer)(nil)

const sheetName = "Scope"

// illegalXMLChars matches control characters the XLSX XML container
// cannot carry.
var illegalXMLChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

// columnWidths sizes the six scope columns for readability.
var columnWidths = []float64{24, 32, 48, 40, 40, 32}

// Renderer writes the projected rows as a single-sheet XLSX workbook.
type Renderer struct{}

// New creates a new XLSX renderer.
func New() *Renderer {
	return &Renderer{}
}

// Type returns the export type this renderer produces.
func (r *Renderer) Type() domain.ExportType {
	return domain.ExportXLSX
}

// Render produces the workbook bytes. The header row is frozen so it
// stays visible while scrolling.
func (r *Renderer) Render(_ *domain.RequirementGraph, rows []domain.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, 1, domain.ExportHeaders()); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeRow(f, i+2, row.Cells()); err != nil {
			return nil, err
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
		Selection:   []excelize.Selection{{SQRef: "A2", ActiveCell: "A2", Pane: "bottomLeft"}},
	}); err != nil {
		return nil, fmt.Errorf("freeze header row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRow writes one row of cells starting at column A, scrubbing
// control characters the XML container cannot represent.
func writeRow(f *excelize.File, rowIdx int, cells []string) error {
	scrubbed := make([]interface{}, len(cells))
	for i, cell := range cells {
		scrubbed[i] = illegalXMLChars.ReplaceAllString(cell, "")
	}
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowIdx, err)
	}
	if err := f.SetSheetRow(sheetName, cell, &scrubbed); err != nil {
		return fmt.Errorf("write row %d: %w", rowIdx, err)
	}
	return nil
}
