package html

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

func sampleGraph() *domain.RequirementGraph {
	return &domain.RequirementGraph{
		GraphID:          "gra_1",
		DocID:            "doc_1",
		Version:          2,
		Domain:           "saas",
		ExecutiveSummary: "A billing platform for small bakeries.",
		ConfidenceScore:  0.82,
		CreatedAt:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func sampleRows() []domain.ExportRow {
	return []domain.ExportRow{
		{
			Module:       "Payments",
			Feature:      "Checkout Flow",
			Interactions: "Customer pays with a saved card → order confirmed",
		},
	}
}

func TestRenderer_ImplementsInterface(t *testing.T) {
	var _ driven.ExportRenderer = New()
}

func TestRenderer_Type(t *testing.T) {
	assert.Equal(t, domain.ExportHTML, New().Type())
}

func TestRenderer_Render_NilGraph(t *testing.T) {
	_, err := New().Render(nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRenderer_Render_WrapsReportInPageShell(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<title>Project Scope doc_1 v2</title>")
	assert.Contains(t, page, "<style>")
	assert.Contains(t, page, "<h1>Project Scope</h1>")
	assert.Contains(t, page, "A billing platform for small bakeries.")
	assert.Contains(t, page, "</body>\n</html>\n")
}

func TestRenderer_Render_RendersFeatureTable(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<th>Modules</th>")
	assert.Contains(t, page, "<td>Payments</td>")
	assert.Contains(t, page, "<td>Checkout Flow</td>")
}

func TestRenderer_Render_EscapesTitle(t *testing.T) {
	graph := sampleGraph()
	graph.DocID = "doc<script>"

	out, err := New().Render(graph, nil)
	require.NoError(t, err)

	assert.Contains(t, string(out), "<title>Project Scope doc&lt;script&gt; v2</title>")
}

func TestRenderer_Render_Deterministic(t *testing.T) {
	first, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)
	second, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
