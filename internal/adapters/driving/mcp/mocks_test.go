package mcp

import (
	"context"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	document       *domain.Document
	documents      []domain.Document
	content        string
	clarifications []domain.Clarification
	expired        []string
	err            error
}

func (m *mockDocumentService) Submit(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Cancel(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Confirm(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Clarifications(_ context.Context, _ string) ([]domain.Clarification, error) {
	return m.clarifications, m.err
}

func (m *mockDocumentService) AnswerClarification(_ context.Context, _, _, _ string) error {
	return m.err
}

func (m *mockDocumentService) ExpireClarifications(_ context.Context) ([]string, error) {
	return m.expired, m.err
}

// mockPipelineService is a mock implementation of driving.PipelineOrchestrator.
type mockPipelineService struct {
	result  *driving.PipelineResult
	results []driving.PipelineResult
	status  *driving.PipelineStatus
	err     error
}

func (m *mockPipelineService) Process(_ context.Context, _ string) (*driving.PipelineResult, error) {
	return m.result, m.err
}

func (m *mockPipelineService) ProcessAll(_ context.Context) ([]driving.PipelineResult, error) {
	return m.results, m.err
}

func (m *mockPipelineService) Status(_ context.Context, _ string) (*driving.PipelineStatus, error) {
	return m.status, m.err
}

// mockGraphService is a mock implementation of driving.GraphService.
type mockGraphService struct {
	graph    *domain.RequirementGraph
	versions []int
	diff     *domain.GraphDiff
	diffs    []domain.GraphDiff
	report   *domain.ValidationReport
	err      error
}

func (m *mockGraphService) Get(_ context.Context, _ string, _ int) (*domain.RequirementGraph, error) {
	return m.graph, m.err
}

func (m *mockGraphService) ListVersions(_ context.Context, _ string) ([]int, error) {
	return m.versions, m.err
}

func (m *mockGraphService) Regenerate(
	_ context.Context,
	_ string,
	_ domain.GraphSection,
	_ string,
) (*domain.RequirementGraph, *domain.GraphDiff, error) {
	return m.graph, m.diff, m.err
}

func (m *mockGraphService) Validate(_ context.Context, _ string, _ int) (*domain.ValidationReport, error) {
	return m.report, m.err
}

func (m *mockGraphService) Report(_ context.Context, _ string, _ int) (*domain.ValidationReport, error) {
	return m.report, m.err
}

func (m *mockGraphService) Diff(_ context.Context, _ string, _, _ int) ([]domain.GraphDiff, error) {
	return m.diffs, m.err
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	artifact  *domain.ExportArtifact
	artifacts []domain.ExportArtifact
	rows      []domain.ExportRow
	err       error
}

func (m *mockExportService) Export(
	_ context.Context,
	_ string,
	_ int,
	_ domain.ExportType,
) (*domain.ExportArtifact, error) {
	return m.artifact, m.err
}

func (m *mockExportService) Rows(_ context.Context, _ string, _ int) ([]domain.ExportRow, error) {
	return m.rows, m.err
}

func (m *mockExportService) ListArtifacts(_ context.Context, _ string) ([]domain.ExportArtifact, error) {
	return m.artifacts, m.err
}

// mockExampleService is a mock implementation of driving.ExampleService.
type mockExampleService struct {
	example   *domain.ExampleRecord
	examples  []domain.ExampleRecord
	added     int
	count     int
	retrieval *domain.RetrievalResult
	err       error
}

func (m *mockExampleService) Add(_ context.Context, _, _, _ string) (*domain.ExampleRecord, error) {
	return m.example, m.err
}

func (m *mockExampleService) AddFromFile(_ context.Context, _ string) (int, error) {
	return m.added, m.err
}

func (m *mockExampleService) List(_ context.Context) ([]domain.ExampleRecord, error) {
	return m.examples, m.err
}

func (m *mockExampleService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

func (m *mockExampleService) Reindex(_ context.Context) error {
	return m.err
}

func (m *mockExampleService) Retrieve(
	_ context.Context,
	_ []domain.Chunk,
	_ int,
) (*domain.RetrievalResult, error) {
	return m.retrieval, m.err
}
