package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages the document lifecycle and clarifications.
type DocumentService struct {
	docStore      driven.DocumentStore
	graphStore    driven.GraphStore
	clarStore     driven.ClarificationStore
	artifactStore driven.ArtifactStore
	bus           driven.EventBus
	settings      domain.PipelineSettings
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	graphStore driven.GraphStore,
	clarStore driven.ClarificationStore,
	artifactStore driven.ArtifactStore,
	bus driven.EventBus,
	settings domain.PipelineSettings,
) *DocumentService {
	return &DocumentService{
		docStore:      docStore,
		graphStore:    graphStore,
		clarStore:     clarStore,
		artifactStore: artifactStore,
		bus:           bus,
		settings:      settings,
	}
}

// Submit registers a new document from normalized text. Submissions
// below the usable-text floor are rejected before anything is stored.
func (s *DocumentService) Submit(ctx context.Context, name, content string) (*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "untitled"
	}

	now := time.Now()
	doc := &domain.Document{
		ID:          domain.DocumentID(name, content, now.UnixNano()),
		Name:        name,
		Content:     content,
		Status:      domain.StatusSubmitted,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	have := doc.UsableLength()
	if have < s.settings.MinInputChars {
		return nil, &domain.InsufficientInputError{Have: have, Need: s.settings.MinInputChars}
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	publish(s.bus, domain.EventDocumentSubmitted, doc.ID, map[string]string{"name": doc.Name})
	s.statusChanged(doc.ID, "", domain.StatusSubmitted)
	logger.Info("Submitted document %s (%s, %d usable chars)", doc.ID, doc.Name, have)
	return doc, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, docID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, docID)
}

// GetContent returns the stored normalized text of a document.
func (s *DocumentService) GetContent(ctx context.Context, docID string) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Cancel moves a non-terminal document to the cancelled state.
func (s *DocumentService) Cancel(ctx context.Context, docID string) error {
	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if doc.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel %s document %s", domain.ErrDocumentTerminal, doc.Status, docID)
	}

	from := doc.Status
	doc.Status = domain.StatusCancelled
	doc.UpdatedAt = time.Now()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	s.statusChanged(docID, from, domain.StatusCancelled)
	logger.Info("Cancelled document %s", docID)
	return nil
}

// Confirm accepts the latest graph version and marks the document ready
// for preprocessing.
func (s *DocumentService) Confirm(ctx context.Context, docID string) error {
	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if doc.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot confirm %s document %s", domain.ErrDocumentTerminal, doc.Status, docID)
	}

	latest, err := s.graphStore.GetLatest(ctx, docID)
	if err != nil {
		return err
	}

	from := doc.Status
	doc.ConfirmedVersion = latest.Version
	doc.Status = domain.StatusReadyForPreprocessing
	doc.UpdatedAt = time.Now()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	s.statusChanged(docID, from, domain.StatusReadyForPreprocessing)
	logger.Info("Confirmed document %s at version %d", docID, latest.Version)
	return nil
}

// Delete removes a document together with its clarifications, graph
// versions and export artifacts.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	if _, err := s.docStore.GetDocument(ctx, docID); err != nil {
		return err
	}

	if err := s.clarStore.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete clarifications: %w", err)
	}
	if err := s.artifactStore.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete artifacts: %w", err)
	}
	if err := s.graphStore.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete graphs: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Deleted document %s", docID)
	return nil
}

// Clarifications returns the clarification rounds for a document.
func (s *DocumentService) Clarifications(ctx context.Context, docID string) ([]domain.Clarification, error) {
	return s.clarStore.ListByDocument(ctx, docID)
}

// AnswerClarification records an answer for a pending clarification.
// Once every clarification for the document is resolved, the document
// returns to the submitted state and can be processed again.
func (s *DocumentService) AnswerClarification(ctx context.Context, docID, clarificationID, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is empty", domain.ErrInvalidInput)
	}

	c, err := s.clarStore.GetClarification(ctx, clarificationID)
	if err != nil {
		return err
	}
	if c.DocID != docID {
		return fmt.Errorf("%w: clarification %s does not belong to document %s",
			domain.ErrNotFound, clarificationID, docID)
	}
	if c.Status != domain.ClarificationPending {
		return fmt.Errorf("%w: clarification %s is already %s", domain.ErrInvalidInput, clarificationID, c.Status)
	}

	c.Answer = answer
	c.Status = domain.ClarificationAnswered
	c.AnsweredAt = time.Now()
	if err := s.clarStore.SaveClarifications(ctx, []domain.Clarification{*c}); err != nil {
		return fmt.Errorf("save clarification: %w", err)
	}

	logger.Debug("Recorded answer for clarification %s on %s", clarificationID, docID)
	return s.resumeIfResolved(ctx, docID)
}

// ExpireClarifications marks overdue pending clarifications expired and
// returns the affected document IDs. Documents whose clarifications are
// all resolved return to the submitted state for the next processing
// run, which proceeds on the recorded assumptions.
func (s *DocumentService) ExpireClarifications(ctx context.Context) ([]string, error) {
	overdue, err := s.clarStore.ListExpired(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list expired clarifications: %w", err)
	}
	if len(overdue) == 0 {
		return nil, nil
	}

	docIDs := make([]string, 0, len(overdue))
	seen := make(map[string]bool, len(overdue))
	for i := range overdue {
		overdue[i].Status = domain.ClarificationExpired
		if !seen[overdue[i].DocID] {
			seen[overdue[i].DocID] = true
			docIDs = append(docIDs, overdue[i].DocID)
		}
	}
	if err := s.clarStore.SaveClarifications(ctx, overdue); err != nil {
		return nil, fmt.Errorf("save expired clarifications: %w", err)
	}

	for _, id := range docIDs {
		if err := s.resumeIfResolved(ctx, id); err != nil {
			logger.Warn("Resume after clarification expiry failed for %s: %v", id, err)
		}
	}

	logger.Info("Expired %d clarifications across %d documents", len(overdue), len(docIDs))
	return docIDs, nil
}

// resumeIfResolved moves a parked document back to submitted once no
// clarification blocks it.
func (s *DocumentService) resumeIfResolved(ctx context.Context, docID string) error {
	doc, err := s.docStore.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if doc.Status != domain.StatusAwaitingClarification {
		return nil
	}

	items, err := s.clarStore.ListByDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("list clarifications: %w", err)
	}
	for i := range items {
		if !items[i].Resolved() {
			return nil
		}
	}

	doc.Status = domain.StatusSubmitted
	doc.UpdatedAt = time.Now()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	s.statusChanged(docID, domain.StatusAwaitingClarification, domain.StatusSubmitted)
	logger.Info("Clarifications for %s resolved, document ready to reprocess", docID)
	return nil
}

func (s *DocumentService) statusChanged(docID string, from, to domain.DocumentStatus) {
	if from == to {
		return
	}
	publish(s.bus, domain.EventStatusChanged, docID, map[string]string{
		"from": string(from),
		"to":   string(to),
	})
}
