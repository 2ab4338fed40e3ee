package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

func sampleRows() []domain.ExportRow {
	return []domain.ExportRow{
		{
			Module:       "Payments",
			Feature:      "Checkout Flow",
			Interactions: "Customer pays with a saved card → order confirmed",
			Notes:        "PCI scope applies",
			Questions:    "Which payment providers are in scope?",
			Answers:      "Stripe only",
		},
		{
			Module:  domain.UnassignedModule,
			Feature: "Reporting",
			Answers: "Weekly digest",
		},
	}
}

func openWorkbook(t *testing.T, content []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRenderer_ImplementsInterface(t *testing.T) {
	var _ driven.ExportRenderer = New()
}

func TestRenderer_Type(t *testing.T) {
	assert.Equal(t, domain.ExportXLSX, New().Type())
}

func TestRenderer_Render_HeaderAndRows(t *testing.T) {
	out, err := New().Render(nil, sampleRows())
	require.NoError(t, err)

	f := openWorkbook(t, out)
	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ExportHeaders(), rows[0])

	module, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Payments", module)
	answers, err := f.GetCellValue(sheetName, "F2")
	require.NoError(t, err)
	assert.Equal(t, "Stripe only", answers)
	unassigned, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, domain.UnassignedModule, unassigned)
}

func TestRenderer_Render_FreezesHeaderRow(t *testing.T) {
	out, err := New().Render(nil, sampleRows())
	require.NoError(t, err)

	f := openWorkbook(t, out)
	panes, err := f.GetPanes(sheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)
}

func TestRenderer_Render_ScrubsControlChars(t *testing.T) {
	rows := []domain.ExportRow{{
		Module:  "General",
		Feature: "bad\x01cell\x02value",
		Notes:   "keeps\ttabs",
	}}

	out, err := New().Render(nil, rows)
	require.NoError(t, err)

	f := openWorkbook(t, out)
	feature, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "badcellvalue", feature)
	notes, err := f.GetCellValue(sheetName, "D2")
	require.NoError(t, err)
	assert.Equal(t, "keeps\ttabs", notes)
}

func TestRenderer_Render_SetsColumnWidths(t *testing.T) {
	out, err := New().Render(nil, nil)
	require.NoError(t, err)

	f := openWorkbook(t, out)
	width, err := f.GetColWidth(sheetName, "A")
	require.NoError(t, err)
	assert.InDelta(t, columnWidths[0], width, 0.01)
}

func TestRenderer_Render_EmptyRowsStillHasHeader(t *testing.T) {
	out, err := New().Render(nil, nil)
	require.NoError(t, err)

	f := openWorkbook(t, out)
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ExportHeaders(), rows[0])
}
