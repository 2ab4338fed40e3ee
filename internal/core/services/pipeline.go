package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineOrchestrator = (*PipelineService)(nil)

// PipelineService runs the interpretation pipeline: chunk, classify,
// retrieve, build, validate, commit.
type PipelineService struct {
	docStore   driven.DocumentStore
	graphStore driven.GraphStore
	clarStore  driven.ClarificationStore
	chunker    driven.Chunker
	classifier driven.DomainClassifier
	retriever  driving.ExampleService
	builder    *GraphBuilder
	validator  *GraphValidator
	bus        driven.EventBus
	settings   domain.PipelineSettings

	mu     sync.Mutex
	active map[string]bool
}

// NewPipelineService creates a new pipeline orchestrator.
func NewPipelineService(
	docStore driven.DocumentStore,
	graphStore driven.GraphStore,
	clarStore driven.ClarificationStore,
	chunker driven.Chunker,
	classifier driven.DomainClassifier,
	retriever driving.ExampleService,
	builder *GraphBuilder,
	validator *GraphValidator,
	bus driven.EventBus,
	settings domain.PipelineSettings,
) *PipelineService {
	return &PipelineService{
		docStore:   docStore,
		graphStore: graphStore,
		clarStore:  clarStore,
		chunker:    chunker,
		classifier: classifier,
		retriever:  retriever,
		builder:    builder,
		validator:  validator,
		bus:        bus,
		settings:   settings,
		active:     make(map[string]bool),
	}
}

// Process runs the full pipeline for one document and commits the
// resulting graph version. A failing stage moves the document to the
// failed state with the cause recorded.
func (s *PipelineService) Process(ctx context.Context, docID string) (*driving.PipelineResult, error) {
	if !s.begin(docID) {
		return nil, fmt.Errorf("%w: document %s is already being processed", domain.ErrInvalidInput, docID)
	}
	defer s.end(docID)

	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := processableStatus(doc.Status); err != nil {
		return nil, fmt.Errorf("document %s: %w", docID, err)
	}
	if err := s.transition(ctx, doc, domain.StatusProcessing); err != nil {
		return nil, err
	}

	result, err := s.run(ctx, doc)
	if err != nil {
		s.fail(ctx, doc, err)
		return nil, err
	}
	return result, nil
}

func (s *PipelineService) run(ctx context.Context, doc *domain.Document) (*driving.PipelineResult, error) {
	started := time.Now()

	// 1. Chunk the normalized text.
	chunks, err := s.chunker.Chunk(ctx, doc.ID, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}
	logger.Debug("Chunked %s into %d chunks with %s", doc.ID, len(chunks), s.chunker.Name())

	// 2. Classify the domain. Advisory: a failure falls back to the
	// generic domain rather than stopping the run.
	label, confidence, err := s.classifier.Classify(ctx, chunks)
	if err != nil {
		logger.Warn("Domain classification for %s failed, using %s: %v", doc.ID, domain.DomainGeneric, err)
		label, confidence = domain.DomainGeneric, 0
	}
	doc.Domain = label
	doc.DomainConfidence = confidence
	doc.UpdatedAt = time.Now()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	logger.Debug("Classified %s as %s (confidence %.2f)", doc.ID, label, confidence)

	// 3. Thin input parks the document on clarification questions until
	// they are answered or expire.
	clarifications, err := s.clarStore.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list clarifications: %w", err)
	}
	if s.needsClarification(doc, clarifications) {
		return s.park(ctx, doc, clarifications)
	}

	// 4. Retrieve worked examples. Degraded retrieval proceeds unaugmented.
	retrieval, err := s.retriever.Retrieve(ctx, chunks, s.settings.RetrievalTopK)
	if err != nil {
		logger.Warn("Example retrieval for %s failed, proceeding unaugmented: %v", doc.ID, err)
		retrieval = &domain.RetrievalResult{Degraded: true}
	}

	// 5. Build the next graph version.
	parent, err := s.graphStore.GetLatest(ctx, doc.ID)
	if err != nil && !errors.Is(err, domain.ErrNoGraph) {
		return nil, fmt.Errorf("load latest graph: %w", err)
	}
	graph, buildIssues, err := s.builder.Build(ctx, doc, chunks, retrieval.Examples,
		resolvedClarifications(clarifications), parent)
	if err != nil {
		return nil, err
	}

	// 6. Validate and commit.
	report := s.validator.Validate(ctx, graph, buildIssues)
	graph.Validation = report
	graph.ConfidenceScore = report.ConfidenceScore
	if err := s.graphStore.SaveGraph(ctx, graph); err != nil {
		return nil, fmt.Errorf("save graph: %w", err)
	}
	if err := s.graphStore.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	doc.LatestVersion = graph.Version
	if err := s.transition(ctx, doc, domain.StatusReadyForPreprocessing); err != nil {
		return nil, err
	}

	publish(s.bus, domain.EventProcessingCompleted, doc.ID, map[string]string{
		"graph_id": graph.GraphID,
		"version":  strconv.Itoa(graph.Version),
		"duration": time.Since(started).String(),
	})
	if report.Status == domain.ReportFail {
		publish(s.bus, domain.EventValidationFailed, doc.ID, map[string]string{
			"issue_ids": strings.Join(report.IssueIDs(), ","),
			"severity":  string(report.HighestSeverity()),
		})
	}

	logger.Info("Processed %s: graph %s v%d, validation %s, confidence %.2f",
		doc.ID, graph.GraphID, graph.Version, report.Status, report.ConfidenceScore)
	return &driving.PipelineResult{
		DocID:            doc.ID,
		GraphID:          graph.GraphID,
		Version:          graph.Version,
		ValidationStatus: string(report.Status),
	}, nil
}

// ProcessAll runs the pipeline over every submitted document, bounded
// by MaxParallelDocs. Per-document failures are recorded in the result
// rather than aborting the batch.
func (s *PipelineService) ProcessAll(ctx context.Context) ([]driving.PipelineResult, error) {
	docs, err := s.docStore.ListByStatus(ctx, domain.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("list submitted documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	limit := s.settings.MaxParallelDocs
	if limit <= 0 {
		limit = domain.DefaultPipelineSettings().MaxParallelDocs
	}

	results := make([]driving.PipelineResult, len(docs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range docs {
		g.Go(func() error {
			res, err := s.Process(ctx, docs[i].ID)
			if err != nil {
				results[i] = driving.PipelineResult{DocID: docs[i].ID, Err: err}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Status returns the pipeline state for a document.
func (s *PipelineService) Status(ctx context.Context, docID string) (*driving.PipelineStatus, error) {
	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	chunks, err := s.docStore.GetChunks(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	clarifications, err := s.clarStore.ListByDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("list clarifications: %w", err)
	}

	pending := 0
	for i := range clarifications {
		if clarifications[i].Status == domain.ClarificationPending {
			pending++
		}
	}

	return &driving.PipelineStatus{
		DocID:                 doc.ID,
		Status:                string(doc.Status),
		Domain:                doc.Domain,
		DomainConfidence:      doc.DomainConfidence,
		ChunkCount:            len(chunks),
		LatestVersion:         doc.LatestVersion,
		PendingClarifications: pending,
	}, nil
}

// needsClarification reports whether the run should park instead of
// building. Input at or above the clarification floor never parks;
// below it, the document parks until its clarification round resolves.
func (s *PipelineService) needsClarification(doc *domain.Document, clarifications []domain.Clarification) bool {
	if doc.UsableLength() >= s.settings.ClarificationMinChars {
		return false
	}
	for i := range clarifications {
		if !clarifications[i].Resolved() {
			return true
		}
	}
	return len(clarifications) == 0
}

func (s *PipelineService) park(ctx context.Context, doc *domain.Document, existing []domain.Clarification) (*driving.PipelineResult, error) {
	pending := 0
	for i := range existing {
		if existing[i].Status == domain.ClarificationPending {
			pending++
		}
	}
	if pending == 0 {
		drafts := s.builder.DraftClarifications(ctx, doc.ID, doc.Content)
		if err := s.clarStore.SaveClarifications(ctx, drafts); err != nil {
			return nil, fmt.Errorf("save clarifications: %w", err)
		}
		pending = len(drafts)
	}

	if err := s.transition(ctx, doc, domain.StatusAwaitingClarification); err != nil {
		return nil, err
	}
	publish(s.bus, domain.EventClarificationRequested, doc.ID, map[string]string{
		"document_id": doc.ID,
		"count":       strconv.Itoa(pending),
	})
	logger.Info("Parked %s on %d clarification questions", doc.ID, pending)
	return &driving.PipelineResult{DocID: doc.ID, AwaitingClarification: true}, nil
}

func (s *PipelineService) transition(ctx context.Context, doc *domain.Document, to domain.DocumentStatus) error {
	from := doc.Status
	doc.Status = to
	doc.UpdatedAt = time.Now()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if from != to {
		publish(s.bus, domain.EventStatusChanged, doc.ID, map[string]string{
			"from": string(from),
			"to":   string(to),
		})
	}
	return nil
}

func (s *PipelineService) fail(ctx context.Context, doc *domain.Document, cause error) {
	doc.FailureReason = cause.Error()
	if err := s.transition(ctx, doc, domain.StatusFailed); err != nil {
		logger.Error("Marking document %s failed: %v", doc.ID, err)
	}
	logger.Error("Processing %s failed: %v", doc.ID, cause)
}

func (s *PipelineService) begin(docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[docID] {
		return false
	}
	s.active[docID] = true
	return true
}

func (s *PipelineService) end(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, docID)
}

func processableStatus(status domain.DocumentStatus) error {
	switch status {
	case domain.StatusSubmitted, domain.StatusReadyForPreprocessing:
		return nil
	case domain.StatusProcessing:
		return fmt.Errorf("%w: already processing", domain.ErrInvalidInput)
	case domain.StatusAwaitingClarification:
		return domain.ErrAwaitingClarification
	default:
		return domain.ErrDocumentTerminal
	}
}

func resolvedClarifications(in []domain.Clarification) []domain.Clarification {
	var out []domain.Clarification
	for i := range in {
		if in[i].Resolved() {
			out = append(out, in[i])
		}
	}
	return out
}
