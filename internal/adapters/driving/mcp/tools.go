package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// SubmitDocumentInput is the input schema for the submit_document tool.
type SubmitDocumentInput struct {
	Name    string `json:"name" jsonschema:"document name, usually the source file name"`
	Content string `json:"content" jsonschema:"the normalized document text to interpret"`
}

// SubmitDocumentOutput is the output schema for the submit_document tool.
type SubmitDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// ProcessDocumentInput is the input schema for the process_document tool.
type ProcessDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to process"`
}

// ProcessDocumentOutput is the output schema for the process_document tool.
type ProcessDocumentOutput struct {
	DocumentID            string `json:"document_id"`
	GraphID               string `json:"graph_id,omitempty"`
	Version               int    `json:"version"`
	ValidationStatus      string `json:"validation_status,omitempty"`
	AwaitingClarification bool   `json:"awaiting_clarification"`
}

// GetGraphInput is the input schema for the get_graph tool.
type GetGraphInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document whose graph to fetch"`
	Version    int    `json:"version,omitempty" jsonschema:"graph version, 0 or omitted for the latest"`
}

// GetGraphOutput is the output schema for the get_graph tool.
type GetGraphOutput struct {
	Graph *domain.RequirementGraph `json:"graph"`
}

// RegenerateSectionInput is the input schema for the regenerate_section tool.
type RegenerateSectionInput struct {
	DocumentID   string `json:"document_id" jsonschema:"the document whose latest graph to rework"`
	Section      string `json:"section" jsonschema:"section to rebuild: summary, personas, modules, features, interactions, functional, technical, non_functional or questions"`
	Instructions string `json:"instructions,omitempty" jsonschema:"extra instructions for the rebuild"`
}

// RegenerateSectionOutput is the output schema for the regenerate_section tool.
type RegenerateSectionOutput struct {
	Version     int      `json:"version"`
	FromVersion int      `json:"from_version"`
	Added       []string `json:"added"`
	Removed     []string `json:"removed"`
	Changed     []string `json:"changed"`
}

// ValidateGraphInput is the input schema for the validate_graph tool.
type ValidateGraphInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document whose graph to validate"`
	Version    int    `json:"version,omitempty" jsonschema:"graph version, 0 or omitted for the latest"`
}

// ValidateGraphOutput is the output schema for the validate_graph tool.
type ValidateGraphOutput struct {
	Report *domain.ValidationReport `json:"report"`
}

// ExportScopeInput is the input schema for the export_scope tool.
type ExportScopeInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to export"`
	Type       string `json:"type,omitempty" jsonschema:"artifact format: csv, xlsx, markdown, html or json (default csv)"`
	Version    int    `json:"version,omitempty" jsonschema:"graph version, 0 or omitted for the latest"`
}

// ExportScopeOutput is the output schema for the export_scope tool.
type ExportScopeOutput struct {
	ArtifactID string             `json:"artifact_id"`
	DocumentID string             `json:"document_id"`
	Version    int                `json:"version"`
	Type       string             `json:"type"`
	Checksum   string             `json:"checksum"`
	RowCount   int                `json:"row_count"`
	Rows       []domain.ExportRow `json:"rows"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// DocumentInfo summarises one document for listings.
type DocumentInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	Domain        string `json:"domain,omitempty"`
	LatestVersion int    `json:"latest_version"`
}

// AddExampleInput is the input schema for the add_example tool.
type AddExampleInput struct {
	Domain           string `json:"domain,omitempty" jsonschema:"optional domain label for the example"`
	TextExcerpt      string `json:"text_excerpt" jsonschema:"the input text excerpt"`
	StructuredOutput string `json:"structured_output" jsonschema:"the structured scope this input produced, injected verbatim into prompts"`
}

// AddExampleOutput is the output schema for the add_example tool.
type AddExampleOutput struct {
	ExampleID string `json:"example_id"`
	Count     int    `json:"count"`
}

// AnswerClarificationInput is the input schema for the answer_clarification tool.
type AnswerClarificationInput struct {
	DocumentID      string `json:"document_id" jsonschema:"the parked document"`
	ClarificationID string `json:"clarification_id" jsonschema:"the question being answered"`
	Answer          string `json:"answer" jsonschema:"the answer text"`
}

// AnswerClarificationOutput is the output schema for the answer_clarification tool.
type AnswerClarificationOutput struct {
	Resolved bool `json:"resolved"`
	Pending  int  `json:"pending"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_document",
		Description: "Submit a project document for requirement interpretation",
	}, s.handleSubmitDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Run the interpretation pipeline and commit a graph version",
	}, s.handleProcessDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_graph",
		Description: "Fetch a requirement graph version for a document",
	}, s.handleGetGraph)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "regenerate_section",
		Description: "Rebuild one section of the latest graph as a new version",
	}, s.handleRegenerateSection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_graph",
		Description: "Re-validate a graph version and return the report",
	}, s.handleValidateGraph)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_scope",
		Description: "Project a graph version into deterministic scope rows",
	}, s.handleExportScope)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all submitted documents, newest first",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_example",
		Description: "Add a worked example to the retrieval corpus",
	}, s.handleAddExample)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_clarification",
		Description: "Answer a pending clarification question on a parked document",
	}, s.handleAnswerClarification)
}

// handleSubmitDocument handles the submit_document tool invocation.
func (s *Server) handleSubmitDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitDocumentInput,
) (*mcp.CallToolResult, SubmitDocumentOutput, error) {
	doc, err := s.ports.Document.Submit(ctx, input.Name, input.Content)
	if err != nil {
		return nil, SubmitDocumentOutput{}, err
	}

	return nil, SubmitDocumentOutput{
		DocumentID: doc.ID,
		Status:     string(doc.Status),
	}, nil
}

// handleProcessDocument handles the process_document tool invocation.
func (s *Server) handleProcessDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessDocumentInput,
) (*mcp.CallToolResult, ProcessDocumentOutput, error) {
	if s.ports.Pipeline == nil {
		return nil, ProcessDocumentOutput{}, errPipelineUnavailable
	}

	result, err := s.ports.Pipeline.Process(ctx, input.DocumentID)
	if err != nil {
		return nil, ProcessDocumentOutput{}, err
	}

	return nil, ProcessDocumentOutput{
		DocumentID:            result.DocID,
		GraphID:               result.GraphID,
		Version:               result.Version,
		ValidationStatus:      result.ValidationStatus,
		AwaitingClarification: result.AwaitingClarification,
	}, nil
}

// handleGetGraph handles the get_graph tool invocation.
func (s *Server) handleGetGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetGraphInput,
) (*mcp.CallToolResult, GetGraphOutput, error) {
	if s.ports.Graph == nil {
		return nil, GetGraphOutput{}, errGraphUnavailable
	}

	graph, err := s.ports.Graph.Get(ctx, input.DocumentID, input.Version)
	if err != nil {
		return nil, GetGraphOutput{}, err
	}

	return nil, GetGraphOutput{Graph: graph}, nil
}

// handleRegenerateSection handles the regenerate_section tool invocation.
func (s *Server) handleRegenerateSection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RegenerateSectionInput,
) (*mcp.CallToolResult, RegenerateSectionOutput, error) {
	if s.ports.Graph == nil {
		return nil, RegenerateSectionOutput{}, errGraphUnavailable
	}

	section, err := domain.ParseGraphSection(input.Section)
	if err != nil {
		return nil, RegenerateSectionOutput{}, err
	}

	graph, diff, err := s.ports.Graph.Regenerate(ctx, input.DocumentID, section, input.Instructions)
	if err != nil {
		return nil, RegenerateSectionOutput{}, err
	}

	changed := make([]string, len(diff.Changed))
	for i := range diff.Changed {
		changed[i] = diff.Changed[i].ID
	}

	return nil, RegenerateSectionOutput{
		Version:     graph.Version,
		FromVersion: graph.ParentVersion,
		Added:       diff.Added,
		Removed:     diff.Removed,
		Changed:     changed,
	}, nil
}

// handleValidateGraph handles the validate_graph tool invocation.
func (s *Server) handleValidateGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateGraphInput,
) (*mcp.CallToolResult, ValidateGraphOutput, error) {
	if s.ports.Graph == nil {
		return nil, ValidateGraphOutput{}, errGraphUnavailable
	}

	report, err := s.ports.Graph.Validate(ctx, input.DocumentID, input.Version)
	if err != nil {
		return nil, ValidateGraphOutput{}, err
	}

	return nil, ValidateGraphOutput{Report: report}, nil
}

// handleExportScope handles the export_scope tool invocation.
func (s *Server) handleExportScope(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportScopeInput,
) (*mcp.CallToolResult, ExportScopeOutput, error) {
	if s.ports.Export == nil {
		return nil, ExportScopeOutput{}, errExportUnavailable
	}

	typeName := input.Type
	if typeName == "" {
		typeName = string(domain.ExportCSV)
	}
	typ, ok := domain.ParseExportType(typeName)
	if !ok {
		return nil, ExportScopeOutput{}, fmt.Errorf("unknown export type %q", input.Type)
	}

	artifact, err := s.ports.Export.Export(ctx, input.DocumentID, input.Version, typ)
	if err != nil {
		return nil, ExportScopeOutput{}, err
	}

	return nil, ExportScopeOutput{
		ArtifactID: artifact.ArtifactID,
		DocumentID: artifact.DocID,
		Version:    artifact.Version,
		Type:       string(artifact.Type),
		Checksum:   artifact.Checksum,
		RowCount:   len(artifact.Rows),
		Rows:       artifact.Rows,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentInfo, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentInfo{
			ID:            docs[i].ID,
			Name:          docs[i].Name,
			Status:        string(docs[i].Status),
			Domain:        docs[i].Domain,
			LatestVersion: docs[i].LatestVersion,
		}
	}

	return nil, output, nil
}

// handleAddExample handles the add_example tool invocation.
func (s *Server) handleAddExample(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddExampleInput,
) (*mcp.CallToolResult, AddExampleOutput, error) {
	if s.ports.Examples == nil {
		return nil, AddExampleOutput{}, errExamplesUnavailable
	}

	example, err := s.ports.Examples.Add(ctx, input.Domain, input.TextExcerpt, input.StructuredOutput)
	if err != nil {
		return nil, AddExampleOutput{}, err
	}

	count, err := s.ports.Examples.Count(ctx)
	if err != nil {
		return nil, AddExampleOutput{}, err
	}

	return nil, AddExampleOutput{
		ExampleID: example.ExampleID,
		Count:     count,
	}, nil
}

// handleAnswerClarification handles the answer_clarification tool invocation.
func (s *Server) handleAnswerClarification(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerClarificationInput,
) (*mcp.CallToolResult, AnswerClarificationOutput, error) {
	if err := s.ports.Document.AnswerClarification(ctx, input.DocumentID, input.ClarificationID, input.Answer); err != nil {
		return nil, AnswerClarificationOutput{}, err
	}

	clarifications, err := s.ports.Document.Clarifications(ctx, input.DocumentID)
	if err != nil {
		return nil, AnswerClarificationOutput{}, err
	}

	pending := 0
	for i := range clarifications {
		if clarifications[i].Status == domain.ClarificationPending {
			pending++
		}
	}

	return nil, AnswerClarificationOutput{
		Resolved: pending == 0,
		Pending:  pending,
	}, nil
}
