package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
)

// Ensure GraphService implements the interface.
var _ driving.GraphService = (*GraphService)(nil)

// GraphService exposes graph versions, section regeneration, diffs and
// on-demand validation.
type GraphService struct {
	docStore   driven.DocumentStore
	graphStore driven.GraphStore
	clarStore  driven.ClarificationStore
	retriever  driving.ExampleService
	builder    *GraphBuilder
	validator  *GraphValidator
	bus        driven.EventBus
	settings   domain.PipelineSettings

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewGraphService creates a new graph service.
func NewGraphService(
	docStore driven.DocumentStore,
	graphStore driven.GraphStore,
	clarStore driven.ClarificationStore,
	retriever driving.ExampleService,
	builder *GraphBuilder,
	validator *GraphValidator,
	bus driven.EventBus,
	settings domain.PipelineSettings,
) *GraphService {
	return &GraphService{
		docStore:   docStore,
		graphStore: graphStore,
		clarStore:  clarStore,
		retriever:  retriever,
		builder:    builder,
		validator:  validator,
		bus:        bus,
		settings:   settings,
		inFlight:   make(map[string]bool),
	}
}

// Get retrieves one graph version; version 0 means the latest.
func (s *GraphService) Get(ctx context.Context, docID string, version int) (*domain.RequirementGraph, error) {
	return s.load(ctx, docID, version)
}

// ListVersions returns the version chain for a document, ascending.
func (s *GraphService) ListVersions(ctx context.Context, docID string) ([]int, error) {
	return s.graphStore.ListVersions(ctx, docID)
}

// Regenerate rebuilds one section of the latest graph version under the
// given instructions and commits the result as version N+1. The rest of
// the graph is carried over; references into the reworked section are
// re-resolved.
func (s *GraphService) Regenerate(ctx context.Context, docID string, section domain.GraphSection, instructions string) (*domain.RequirementGraph, *domain.GraphDiff, error) {
	if !s.begin(docID) {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrRegenerationInFlight, docID)
	}
	defer s.end(docID)
	started := time.Now()

	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, nil, fmt.Errorf("document %s: %w", docID, domain.ErrDocumentTerminal)
	}

	prior, err := s.graphStore.GetLatest(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	chunks, err := s.docStore.GetChunks(ctx, docID)
	if err != nil {
		return nil, nil, fmt.Errorf("load chunks: %w", err)
	}
	clarifications, err := s.clarStore.ListByDocument(ctx, docID)
	if err != nil {
		return nil, nil, fmt.Errorf("list clarifications: %w", err)
	}

	retrieval, err := s.retriever.Retrieve(ctx, chunks, s.settings.RetrievalTopK)
	if err != nil {
		logger.Warn("Example retrieval for %s failed, regenerating unaugmented: %v", docID, err)
		retrieval = &domain.RetrievalResult{Degraded: true}
	}

	next, issues, err := s.builder.RebuildSection(ctx, doc, chunks, retrieval.Examples,
		resolvedClarifications(clarifications), prior, section, instructions)
	if err != nil {
		return nil, nil, err
	}

	report := s.validator.Validate(ctx, next, issues)
	next.Validation = report
	next.ConfidenceScore = report.ConfidenceScore
	if err := s.graphStore.SaveGraph(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("save graph: %w", err)
	}
	if err := s.graphStore.SaveReport(ctx, report); err != nil {
		return nil, nil, fmt.Errorf("save report: %w", err)
	}

	doc.LatestVersion = next.Version
	doc.UpdatedAt = time.Now()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, nil, fmt.Errorf("save document: %w", err)
	}

	publish(s.bus, domain.EventProcessingCompleted, docID, map[string]string{
		"graph_id": next.GraphID,
		"version":  strconv.Itoa(next.Version),
		"duration": time.Since(started).String(),
	})
	if report.Status == domain.ReportFail {
		publish(s.bus, domain.EventValidationFailed, docID, map[string]string{
			"issue_ids": strings.Join(report.IssueIDs(), ","),
			"severity":  string(report.HighestSeverity()),
		})
	}

	diff := domain.DiffSection(prior, next, section)
	logger.Info("Regenerated %s of %s: v%d -> v%d (%d added, %d removed, %d changed)",
		section, docID, prior.Version, next.Version,
		len(diff.Added), len(diff.Removed), len(diff.Changed))
	return next, diff, nil
}

// Validate re-runs validation on a stored graph version. Issues the
// builder recorded while assembling the version (dropped references,
// broken cycles) are carried over because they cannot be recomputed
// from the committed graph.
func (s *GraphService) Validate(ctx context.Context, docID string, version int) (*domain.ValidationReport, error) {
	graph, err := s.load(ctx, docID, version)
	if err != nil {
		return nil, err
	}

	report := s.validator.Validate(ctx, graph, carriedIssues(graph.Validation))
	if err := s.graphStore.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	if report.Status == domain.ReportFail {
		publish(s.bus, domain.EventValidationFailed, docID, map[string]string{
			"issue_ids": strings.Join(report.IssueIDs(), ","),
			"severity":  string(report.HighestSeverity()),
		})
	}
	logger.Info("Validated %s v%d: %s, confidence %.2f",
		docID, graph.Version, report.Status, report.ConfidenceScore)
	return report, nil
}

// Report returns the stored validation report; version 0 means the latest.
func (s *GraphService) Report(ctx context.Context, docID string, version int) (*domain.ValidationReport, error) {
	if version <= 0 {
		latest, err := s.graphStore.GetLatest(ctx, docID)
		if err != nil {
			return nil, err
		}
		version = latest.Version
	}
	return s.graphStore.GetReport(ctx, docID, version)
}

// Diff computes the per-section entity diff between two versions;
// version 0 means the latest.
func (s *GraphService) Diff(ctx context.Context, docID string, fromVersion, toVersion int) ([]domain.GraphDiff, error) {
	from, err := s.load(ctx, docID, fromVersion)
	if err != nil {
		return nil, err
	}
	to, err := s.load(ctx, docID, toVersion)
	if err != nil {
		return nil, err
	}
	return domain.DiffAll(from, to), nil
}

func (s *GraphService) load(ctx context.Context, docID string, version int) (*domain.RequirementGraph, error) {
	if version <= 0 {
		return s.graphStore.GetLatest(ctx, docID)
	}
	return s.graphStore.GetGraph(ctx, docID, version)
}

func (s *GraphService) begin(docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[docID] {
		return false
	}
	s.inFlight[docID] = true
	return true
}

func (s *GraphService) end(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, docID)
}

// carriedIssues extracts the assembly-time issues from a prior report:
// dropped references and cycle-breaking drops, which relate features
// rather than requirement statements.
func carriedIssues(prior *domain.ValidationReport) []domain.Issue {
	if prior == nil {
		return nil
	}
	var out []domain.Issue
	for _, issue := range prior.Issues {
		switch issue.Type {
		case domain.IssueDanglingReference:
			out = append(out, issue)
		case domain.IssueContradiction:
			if len(issue.RelatedEntities) > 0 && strings.HasPrefix(issue.RelatedEntities[0], "fea_") {
				out = append(out, issue)
			}
		}
	}
	return out
}
