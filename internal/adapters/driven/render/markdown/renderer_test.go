package markdown

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
		ParentVersion:    1,
		Domain:           "saas",
		ExecutiveSummary: "A billing platform for small bakeries.",
		Personas: []domain.Persona{
			{
				ID:          "per_1",
				Name:        "Admin",
				Description: "Runs back office operations",
				Goals:       []string{"reconcile payments", "manage refunds"},
			},
		},
		FunctionalRequirements: []domain.Requirement{
			{ID: "req_1", Kind: domain.RequirementFunctional, Text: "Checkout must support saved cards."},
		},
		TechnicalRequirements: []domain.Requirement{
			{ID: "req_2", Kind: domain.RequirementTechnical, Text: "The API must use TLS."},
		},
		Questions: []domain.Question{
			{
				ID:       "que_1",
				Text:     "Which payment providers are in scope?",
				Category: domain.QuestionContext,
				Status:   domain.QuestionAnswered,
				Answer:   "Stripe only",
			},
			{
				ID:              "que_2",
				Text:            "Who approves refunds?",
				Category:        domain.QuestionPersonaCoverage,
				Status:          domain.QuestionOpen,
				SuggestedAnswer: "The store manager",
			},
		},
		ConfidenceScore: 0.82,
		Validation: &domain.ValidationReport{
			GraphID: "gra_1",
			Version: 2,
			Issues: []domain.Issue{
				{
					IssueID:        "iss_1",
					Type:           domain.IssueOrphanFeature,
					Severity:       domain.SeverityMedium,
					Summary:        "Feature Reporting maps to no module",
					Recommendation: "Assign Reporting to a module",
				},
			},
			ConfidenceScore: 0.68,
			Status:          domain.ReportWarn,
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func sampleRows() []domain.ExportRow {
	return []domain.ExportRow{
		{
			Module:       "Payments",
			Feature:      "Checkout Flow",
			Interactions: "Customer pays with a saved card → order confirmed",
			Notes:        "PCI scope applies",
			Questions:    "Which payment providers are in scope?",
			Answers:      "",
		},
	}
}

func TestRenderer_ImplementsInterface(t *testing.T) {
	var _ driven.ExportRenderer = New()
}

func TestRenderer_Type(t *testing.T) {
	assert.Equal(t, domain.ExportMarkdown, New().Type())
}

func TestRenderer_Render_NilGraph(t *testing.T) {
	_, err := New().Render(nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRenderer_Render_ReportSections(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, "# Project Scope\n")
	assert.Contains(t, report, "## Executive Summary")
	assert.Contains(t, report, "## Personas")
	assert.Contains(t, report, "## Modules & Features")
	assert.Contains(t, report, "## Functional Requirements")
	assert.Contains(t, report, "## Technical Requirements")
	assert.Contains(t, report, "## Non-Functional Requirements")
	assert.Contains(t, report, "## Open Questions")
	assert.Contains(t, report, "## Validation")
}

func TestRenderer_Render_MetadataAndSummary(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, "- Document: `doc_1`")
	assert.Contains(t, report, "- Version: 2")
	assert.Contains(t, report, "- Domain: saas")
	assert.Contains(t, report, "- Confidence: 0.82")
	assert.Contains(t, report, "- Generated: 2026-03-01T10:00:00Z")
	assert.Contains(t, report, "A billing platform for small bakeries.")
}

func TestRenderer_Render_FeatureTable(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, "| Modules | Features | Interactions | Notes | Questions / Clarifications | Answers |")
	assert.Contains(t, report, "| Payments | Checkout Flow | Customer pays with a saved card → order confirmed | PCI scope applies | Which payment providers are in scope? |  |")
}

func TestRenderer_Render_PersonasAndRequirements(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, "- **Admin**: Runs back office operations (goals: reconcile payments; manage refunds)")
	assert.Contains(t, report, "1. Checkout must support saved cards.")
	assert.Contains(t, report, "1. The API must use TLS.")
}

func TestRenderer_Render_QuestionStatuses(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, "1. Which payment providers are in scope? _(context, answered)_")
	assert.Contains(t, report, "   - Answer: Stripe only")
	assert.Contains(t, report, "2. Who approves refunds? _(persona_coverage, open)_")
	assert.Contains(t, report, "   - Suggested: The store manager")
}

func TestRenderer_Render_ValidationAppendix(t *testing.T) {
	out, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, "Status: **warn** (confidence 0.68)")
	assert.Contains(t, report, "| medium | orphan_feature | Feature Reporting maps to no module | Assign Reporting to a module |")
}

func TestRenderer_Render_EmptyGraphPlaceholders(t *testing.T) {
	graph := &domain.RequirementGraph{
		GraphID:   "gra_2",
		DocID:     "doc_2",
		Version:   1,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	out, err := New().Render(graph, nil)
	require.NoError(t, err)

	report := string(out)
	assert.NotContains(t, report, "- Domain:")
	assert.Contains(t, report, "_Not provided._")
	assert.Contains(t, report, "_None identified._")
	assert.Contains(t, report, "_No features extracted._")
	assert.Contains(t, report, "_None._")
	assert.Contains(t, report, "_Not yet validated._")
}

func TestRenderer_Render_EscapesTableCells(t *testing.T) {
	rows := []domain.ExportRow{{
		Module:  "General",
		Feature: "a|b",
		Notes:   "line one\nline two",
	}}

	out, err := New().Render(sampleGraph(), rows)
	require.NoError(t, err)

	report := string(out)
	assert.Contains(t, report, `| a\|b |`)
	assert.Contains(t, report, "| line one line two |")
}

func TestRenderer_Render_Deterministic(t *testing.T) {
	first, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)
	second, err := New().Render(sampleGraph(), sampleRows())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
