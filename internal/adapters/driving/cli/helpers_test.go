package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/ai"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/config/file"
	hashembed "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/embedding/hash"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/events"
	heuristicgen "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/generation/heuristic"
	memoryindex "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/index/memory"
	csvrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/csv"
	htmlrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/html"
	jsonrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/json"
	markdownrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/markdown"
	xlsxrender "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/render/xlsx"
	memorystore "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/storage/memory"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/chunkers/semantic"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/classifiers/centroid"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/services"
)

// richDocumentText is long enough to process straight through without a
// clarification round.
const richDocumentText = `The clinic group wants an online booking platform for veterinary
appointments. Pet owners must be able to register, list their pets and
book a slot with a vet at one of the clinics. The system must send a
confirmation email after each booking and a reminder 24 hours before
the appointment. Clinic staff need a calendar view where they can block
out slots, reassign appointments between vets and mark no-shows. The
platform should support cancellation up to two hours before the slot.
Payments are collected at the clinic, not online. An admin dashboard
must show utilisation per clinic and per vet, with a CSV download of
the monthly numbers. The system must keep a full audit trail of every
booking change for at least two years.`

// thinDocumentText clears the submission floor but stays under the
// clarification floor, so processing parks it on questions.
const thinDocumentText = `We need an app for dog walkers. Walkers get jobs, owners pay per walk.
Something with a map would be good.`

// setupTestServices wires memory-backed services into the package-level
// variables and returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldDocument := documentService
	oldPipeline := pipelineService
	oldGraph := graphService
	oldExport := exportService
	oldExamples := exampleService
	oldSettings := settingsService
	oldScheduler := schedulerService
	oldBus := eventBus
	oldAppSettings := appSettings

	settings := domain.DefaultAppSettings()
	pipeline := settings.Pipeline
	embedder := hashembed.NewEmbeddingService(hashembed.Config{})
	bus := events.NewBus(events.Config{})

	docStore := memorystore.NewDocumentStore()
	graphStore := memorystore.NewGraphStore()
	clarStore := memorystore.NewClarificationStore()
	artifactStore := memorystore.NewArtifactStore()

	chunker := semantic.New(embedder,
		semantic.WithMinInputChars(pipeline.MinInputChars),
	)
	classifier := centroid.New(embedder)
	builder := services.NewGraphBuilder(
		nil, heuristicgen.NewGenerationService(), file.NewTaxonomyStore(""),
		pipeline, domain.StrategyHeuristic)
	validator := services.NewGraphValidator(embedder, pipeline)

	exampleService = services.NewExampleService(
		memorystore.NewExampleStore(), memoryindex.NewIndex(), embedder, pipeline)
	documentService = services.NewDocumentService(
		docStore, graphStore, clarStore, artifactStore, bus, pipeline)
	pipelineService = services.NewPipelineService(
		docStore, graphStore, clarStore, chunker, classifier,
		exampleService, builder, validator, bus, pipeline)
	graphService = services.NewGraphService(
		docStore, graphStore, clarStore, exampleService, builder, validator, bus, pipeline)
	exportService = services.NewExportService(
		graphStore, artifactStore, []driven.ExportRenderer{
			csvrender.New(),
			xlsxrender.New(),
			markdownrender.New(),
			htmlrender.New(),
			jsonrender.New(),
		}, bus)
	settingsService = services.NewSettingsService(memorystore.NewConfigStore(), ai.NewConfigValidator())
	schedulerService = services.NewScheduler(
		domain.DefaultSchedulerConfig(), memorystore.NewScheduleStore(),
		documentService, exampleService)
	eventBus = bus
	appSettings = &settings

	return func() {
		bus.Close()
		documentService = oldDocument
		pipelineService = oldPipeline
		graphService = oldGraph
		exportService = oldExport
		exampleService = oldExamples
		settingsService = oldSettings
		schedulerService = oldScheduler
		eventBus = oldBus
		appSettings = oldAppSettings
	}
}

// submitTestDocument registers a document directly through the service
// and returns it, so commands under test can reference its ID.
func submitTestDocument(t *testing.T, content string) *domain.Document {
	t.Helper()
	doc, err := documentService.Submit(context.Background(), "test-doc.md", content)
	require.NoError(t, err)
	return doc
}

// processTestDocument runs the pipeline for a document and requires a
// committed version.
func processTestDocument(t *testing.T, docID string) {
	t.Helper()
	result, err := pipelineService.Process(context.Background(), docID)
	require.NoError(t, err)
	require.False(t, result.AwaitingClarification)
	require.NotZero(t, result.Version)
}

// parkTestDocument submits a thin document and processes it so it lands
// in awaiting_clarification, returning the doc and its open questions.
func parkTestDocument(t *testing.T) (*domain.Document, []domain.Clarification) {
	t.Helper()

	doc := submitTestDocument(t, thinDocumentText)
	result, err := pipelineService.Process(context.Background(), doc.ID)
	require.NoError(t, err)
	require.True(t, result.AwaitingClarification)

	clarifications, err := documentService.Clarifications(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, clarifications)
	return doc, clarifications
}

// writeTestFile drops content into a temp file and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// mockDocumentServiceError fails every operation.
type mockDocumentServiceError struct{}

func (m *mockDocumentServiceError) Submit(_ context.Context, _, _ string) (*domain.Document, error) {
	return nil, errors.New("storage error")
}

func (m *mockDocumentServiceError) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, errors.New("storage error")
}

func (m *mockDocumentServiceError) GetContent(_ context.Context, _ string) (string, error) {
	return "", errors.New("storage error")
}

func (m *mockDocumentServiceError) List(_ context.Context) ([]domain.Document, error) {
	return nil, errors.New("storage error")
}

func (m *mockDocumentServiceError) Cancel(_ context.Context, _ string) error {
	return errors.New("storage error")
}

func (m *mockDocumentServiceError) Confirm(_ context.Context, _ string) error {
	return errors.New("storage error")
}

func (m *mockDocumentServiceError) Delete(_ context.Context, _ string) error {
	return errors.New("storage error")
}

func (m *mockDocumentServiceError) Clarifications(_ context.Context, _ string) ([]domain.Clarification, error) {
	return nil, errors.New("storage error")
}

func (m *mockDocumentServiceError) AnswerClarification(_ context.Context, _, _, _ string) error {
	return errors.New("storage error")
}

func (m *mockDocumentServiceError) ExpireClarifications(_ context.Context) ([]string, error) {
	return nil, errors.New("storage error")
}
