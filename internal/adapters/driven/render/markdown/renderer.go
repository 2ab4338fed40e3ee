package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ExportRenderer = (*Renderer)(nil)

// Renderer writes the graph as a markdown scope report: summary,
// personas, the projected feature table, requirement lists, open
// questions and a validation appendix.
type Renderer struct{}

// New creates a new markdown renderer.
func New() *Renderer {
	return &Renderer{}
}

// Type returns the export type this renderer produces.
func (r *Renderer) Type() domain.ExportType {
	return domain.ExportMarkdown
}

// Render produces the report bytes.
func (r *Renderer) Render(graph *domain.RequirementGraph, rows []domain.ExportRow) ([]byte, error) {
	if graph == nil {
		return nil, domain.ErrInvalidInput
	}

	var b strings.Builder
	b.WriteString("# Project Scope\n\n")
	fmt.Fprintf(&b, "- Document: `%s`\n", graph.DocID)
	fmt.Fprintf(&b, "- Version: %d\n", graph.Version)
	if graph.Domain != "" {
		fmt.Fprintf(&b, "- Domain: %s\n", graph.Domain)
	}
	fmt.Fprintf(&b, "- Confidence: %.2f\n", graph.ConfidenceScore)
	fmt.Fprintf(&b, "- Generated: %s\n", graph.CreatedAt.UTC().Format(time.RFC3339))

	b.WriteString("\n## Executive Summary\n\n")
	if summary := strings.TrimSpace(graph.ExecutiveSummary); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n")
	} else {
		b.WriteString("_Not provided._\n")
	}

	writePersonas(&b, graph.Personas)
	writeRows(&b, rows)
	writeRequirements(&b, "Functional Requirements", graph.FunctionalRequirements)
	writeRequirements(&b, "Technical Requirements", graph.TechnicalRequirements)
	writeRequirements(&b, "Non-Functional Requirements", graph.NonFunctionalRequirements)
	writeQuestions(&b, graph.Questions)
	writeValidation(&b, graph.Validation)

	return []byte(b.String()), nil
}

func writePersonas(b *strings.Builder, personas []domain.Persona) {
	b.WriteString("\n## Personas\n\n")
	if len(personas) == 0 {
		b.WriteString("_None identified._\n")
		return
	}
	for _, p := range personas {
		b.WriteString("- **" + flatten(p.Name) + "**")
		if p.Description != "" {
			b.WriteString(": " + flatten(p.Description))
		}
		if len(p.Goals) > 0 {
			b.WriteString(" (goals: " + flatten(strings.Join(p.Goals, "; ")) + ")")
		}
		b.WriteString("\n")
	}
}

func writeRows(b *strings.Builder, rows []domain.ExportRow) {
	b.WriteString("\n## Modules & Features\n\n")
	if len(rows) == 0 {
		b.WriteString("_No features extracted._\n")
		return
	}
	headers := domain.ExportHeaders()
	writeTableRow(b, headers)
	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = "---"
	}
	writeTableRow(b, separator)
	for _, row := range rows {
		writeTableRow(b, row.Cells())
	}
}

func writeRequirements(b *strings.Builder, title string, reqs []domain.Requirement) {
	b.WriteString("\n## " + title + "\n\n")
	if len(reqs) == 0 {
		b.WriteString("_None._\n")
		return
	}
	for i, req := range reqs {
		fmt.Fprintf(b, "%d. %s\n", i+1, flatten(req.Text))
	}
}

func writeQuestions(b *strings.Builder, questions []domain.Question) {
	b.WriteString("\n## Open Questions\n\n")
	if len(questions) == 0 {
		b.WriteString("_None._\n")
		return
	}
	for i, q := range questions {
		fmt.Fprintf(b, "%d. %s _(%s, %s)_\n", i+1, flatten(q.Text), q.Category, q.Status)
		switch {
		case q.Status == domain.QuestionAnswered && q.Answer != "":
			fmt.Fprintf(b, "   - Answer: %s\n", flatten(q.Answer))
		case q.Status == domain.QuestionOpen && q.SuggestedAnswer != "":
			fmt.Fprintf(b, "   - Suggested: %s\n", flatten(q.SuggestedAnswer))
		}
	}
}

func writeValidation(b *strings.Builder, report *domain.ValidationReport) {
	b.WriteString("\n## Validation\n\n")
	if report == nil {
		b.WriteString("_Not yet validated._\n")
		return
	}
	fmt.Fprintf(b, "Status: **%s** (confidence %.2f)\n", report.Status, report.ConfidenceScore)
	if len(report.Issues) == 0 {
		b.WriteString("\nNo issues found.\n")
		return
	}
	b.WriteString("\n")
	writeTableRow(b, []string{"Severity", "Type", "Summary", "Recommendation"})
	writeTableRow(b, []string{"---", "---", "---", "---"})
	for _, issue := range report.Issues {
		writeTableRow(b, []string{
			string(issue.Severity), string(issue.Type), issue.Summary, issue.Recommendation,
		})
	}
}

func writeTableRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" " + escapeCell(cell) + " |")
	}
	b.WriteString("\n")
}

var newlineFlattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// flatten collapses newlines so multi-line values stay on one line.
func flatten(s string) string {
	return newlineFlattener.Replace(s)
}

// escapeCell makes a value safe inside a markdown table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(flatten(s), "|", "\\|")
}
