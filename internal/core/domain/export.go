package domain

import (
	"strconv"
	"time"
)

// ExportType selects the artifact container format.
type ExportType string

const (
	ExportCSV      ExportType = "csv"
	ExportXLSX     ExportType = "xlsx"
	ExportMarkdown ExportType = "markdown"
	ExportHTML     ExportType = "html"
	ExportJSON     ExportType = "json"
)

// ParseExportType validates an export type string.
func ParseExportType(s string) (ExportType, bool) {
	switch ExportType(s) {
	case ExportCSV, ExportXLSX, ExportMarkdown, ExportHTML, ExportJSON:
		return ExportType(s), true
	}
	return "", false
}

// UnassignedModule is the synthetic module name under which features
// without a module mapping appear in exports. It exists only in the
// projection, never in the graph.
const UnassignedModule = "Unassigned"

// ExportRow is one tabular row of the scope projection.
// Cell values are fully derived from one graph version; identical
// versions always project to identical rows.
type ExportRow struct {
	Module       string `json:"module"`
	Feature      string `json:"feature"`
	Interactions string `json:"interactions"`
	Notes        string `json:"notes"`
	Questions    string `json:"questions"`
	Answers      string `json:"answers"`
}

// ExportHeaders returns the column headers in output order.
func ExportHeaders() []string {
	return []string{"Modules", "Features", "Interactions", "Notes", "Questions / Clarifications", "Answers"}
}

// Cells returns the row values in header order.
func (r ExportRow) Cells() []string {
	return []string{r.Module, r.Feature, r.Interactions, r.Notes, r.Questions, r.Answers}
}

// ExportArtifact is an immutable, checksummed projection of one graph
// version into one container format. The checksum covers the canonical
// row serialization, not the container bytes, so the same version
// carries the same checksum across formats.
type ExportArtifact struct {
	ArtifactID string      `json:"artifact_id"`
	GraphID    string      `json:"graph_id"`
	DocID      string      `json:"doc_id"`
	Version    int         `json:"version"`
	Type       ExportType  `json:"type"`
	Rows       []ExportRow `json:"rows"`
	Content    []byte      `json:"-"`
	Checksum   string      `json:"checksum"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Filename suggests a file name for the artifact content.
func (a *ExportArtifact) Filename() string {
	ext := string(a.Type)
	switch a.Type {
	case ExportMarkdown:
		ext = "md"
	case ExportXLSX:
		ext = "xlsx"
	}
	return "scope-" + a.DocID + "-v" + strconv.Itoa(a.Version) + "." + ext
}
