package html

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/markdown"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ExportRenderer = (*Renderer)(nil)

const pageStyle = `body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; color: #1f2933; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #cbd2d9; padding: 0.4rem 0.6rem; text-align: left; vertical-align: top; }
th { background: #f5f7fa; }
code { background: #f5f7fa; padding: 0.1rem 0.3rem; }`

// Renderer renders the markdown scope report into a standalone HTML
// page.
type Renderer struct {
	report    *markdown.Renderer
	converter goldmark.Markdown
}

// New creates a new HTML renderer.
func New() *Renderer {
	return &Renderer{
		report:    markdown.New(),
		converter: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Type returns the export type this renderer produces.
func (r *Renderer) Type() domain.ExportType {
	return domain.ExportHTML
}

// Render produces the page bytes.
func (r *Renderer) Render(graph *domain.RequirementGraph, rows []domain.ExportRow) ([]byte, error) {
	source, err := r.report.Render(graph, rows)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	var body bytes.Buffer
	if err := r.converter.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	title := fmt.Sprintf("Project Scope %s v%d", graph.DocID, graph.Version)
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>\n" + pageStyle + "\n</style>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
