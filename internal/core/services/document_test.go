package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

func TestSubmitStoresDocument(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()
	events, cancel := ts.bus.Subscribe()
	defer cancel()

	doc, err := ts.documents.Submit(ctx, "  coworking-brief.txt  ", fullBriefText)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.ID, "doc_"))
	assert.Equal(t, "coworking-brief.txt", doc.Name)
	assert.Equal(t, fullBriefText, doc.Content)
	assert.Equal(t, domain.StatusSubmitted, doc.Status)
	assert.False(t, doc.SubmittedAt.IsZero())

	stored, err := ts.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, stored.ID)

	published := drainEvents(events)
	submitted := eventsOfType(published, domain.EventDocumentSubmitted)
	require.Len(t, submitted, 1)
	assert.Equal(t, "coworking-brief.txt", submitted[0].Payload["name"])

	changes := eventsOfType(published, domain.EventStatusChanged)
	require.Len(t, changes, 1)
	assert.Equal(t, "", changes[0].Payload["from"])
	assert.Equal(t, string(domain.StatusSubmitted), changes[0].Payload["to"])
}

func TestSubmitDefaultsUntitledName(t *testing.T) {
	ts := newTestServices()

	doc, err := ts.documents.Submit(context.Background(), "   ", fullBriefText)
	require.NoError(t, err)
	assert.Equal(t, "untitled", doc.Name)
}

func TestSubmitRejectsThinInput(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"too short", "Build an app."},
		{"whitespace padding does not count", strings.Repeat(" \t\n", 200) + "tiny brief"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.documents.Submit(ctx, "thin.txt", tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInsufficientInput)

			var insufficient *domain.InsufficientInputError
			require.ErrorAs(t, err, &insufficient)
			assert.Equal(t, ts.settings.MinInputChars, insufficient.Need)
			assert.Less(t, insufficient.Have, insufficient.Need)
		})
	}

	// Nothing below the floor is ever stored.
	docs, err := ts.documents.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestGetContentAndList(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	first := submitDocument(t, ts, "first.txt", fullBriefText)
	second := submitDocument(t, ts, "second.txt", plainProseText)

	content, err := ts.documents.GetContent(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, plainProseText, content)

	docs, err := ts.documents.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids := []string{docs[0].ID, docs[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	_, err = ts.documents.Get(ctx, "doc_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = ts.documents.GetContent(ctx, "doc_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	doc := submitDocument(t, ts, "brief.txt", fullBriefText)
	require.NoError(t, ts.documents.Cancel(ctx, doc.ID))

	stored, err := ts.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	err = ts.documents.Cancel(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentTerminal)
	assert.Contains(t, err.Error(), "cannot cancel")

	assert.ErrorIs(t, ts.documents.Cancel(ctx, "doc_missing"), domain.ErrNotFound)
}

func TestConfirm(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	doc := submitDocument(t, ts, "brief.txt", fullBriefText)

	// Confirming before any version exists has nothing to accept.
	assert.ErrorIs(t, ts.documents.Confirm(ctx, doc.ID), domain.ErrNoGraph)

	processDocument(t, ts, doc.ID)
	require.NoError(t, ts.documents.Confirm(ctx, doc.ID))

	stored, err := ts.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ConfirmedVersion)
	assert.Equal(t, domain.StatusReadyForPreprocessing, stored.Status)

	require.NoError(t, ts.documents.Cancel(ctx, doc.ID))
	err = ts.documents.Confirm(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentTerminal)
	assert.Contains(t, err.Error(), "cannot confirm")
}

func TestDeleteCascades(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	doc := submitDocument(t, ts, "loyalty.txt", shortBriefText)
	parked, err := ts.pipeline.Process(ctx, doc.ID)
	require.NoError(t, err)
	require.True(t, parked.AwaitingClarification)

	clarifications, err := ts.clarStore.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	for _, c := range clarifications {
		require.NoError(t, ts.documents.AnswerClarification(ctx, doc.ID, c.ID, "answered"))
	}
	processDocument(t, ts, doc.ID)

	graph, err := ts.graphStore.GetLatest(ctx, doc.ID)
	require.NoError(t, err)
	_, err = ts.artifacts.SaveArtifact(ctx, &domain.ExportArtifact{
		ArtifactID: domain.ArtifactID(graph.GraphID, domain.ExportCSV),
		GraphID:    graph.GraphID,
		DocID:      doc.ID,
		Version:    graph.Version,
		Type:       domain.ExportCSV,
		Content:    []byte("csv"),
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, ts.documents.Delete(ctx, doc.ID))

	_, err = ts.documents.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	remaining, err := ts.clarStore.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	_, err = ts.graphStore.GetLatest(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNoGraph)
	artifacts, err := ts.artifacts.ListArtifacts(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, artifacts)

	assert.ErrorIs(t, ts.documents.Delete(ctx, "doc_missing"), domain.ErrNotFound)
}

func TestAnswerClarificationGuards(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	doc := submitDocument(t, ts, "loyalty.txt", shortBriefText)
	_, err := ts.pipeline.Process(ctx, doc.ID)
	require.NoError(t, err)

	clarifications, err := ts.clarStore.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, clarifications)
	target := clarifications[0]

	err = ts.documents.AnswerClarification(ctx, doc.ID, target.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "answer is empty")

	err = ts.documents.AnswerClarification(ctx, doc.ID, "clr_missing", "an answer")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = ts.documents.AnswerClarification(ctx, "doc_other", target.ID, "an answer")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "does not belong")

	require.NoError(t, ts.documents.AnswerClarification(ctx, doc.ID, target.ID, "an answer"))
	err = ts.documents.AnswerClarification(ctx, doc.ID, target.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "already answered")
}

func TestAnswerClarificationResumesWhenRoundResolves(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	doc := submitDocument(t, ts, "loyalty.txt", shortBriefText)
	_, err := ts.pipeline.Process(ctx, doc.ID)
	require.NoError(t, err)

	clarifications, err := ts.clarStore.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, clarifications, 4)

	events, cancel := ts.bus.Subscribe(domain.EventStatusChanged)
	defer cancel()

	// Answering all but one keeps the document parked.
	for _, c := range clarifications[:3] {
		require.NoError(t, ts.documents.AnswerClarification(ctx, doc.ID, c.ID, "a detailed answer"))
	}
	stored, err := ts.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingClarification, stored.Status)
	assert.Empty(t, drainEvents(events))

	require.NoError(t, ts.documents.AnswerClarification(ctx, doc.ID, clarifications[3].ID, "the last answer"))

	stored, err = ts.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, stored.Status)

	answered, err := ts.clarStore.GetClarification(ctx, clarifications[3].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClarificationAnswered, answered.Status)
	assert.Equal(t, "the last answer", answered.Answer)
	assert.False(t, answered.AnsweredAt.IsZero())

	changes := drainEvents(events)
	require.Len(t, changes, 1)
	assert.Equal(t, string(domain.StatusAwaitingClarification), changes[0].Payload["from"])
	assert.Equal(t, string(domain.StatusSubmitted), changes[0].Payload["to"])
}

func TestExpireClarifications(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	// Nothing overdue is a quiet no-op.
	affected, err := ts.documents.ExpireClarifications(ctx)
	require.NoError(t, err)
	assert.Nil(t, affected)

	doc := submitDocument(t, ts, "loyalty.txt", shortBriefText)
	_, err = ts.pipeline.Process(ctx, doc.ID)
	require.NoError(t, err)

	clarifications, err := ts.clarStore.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, clarifications, 4)

	// One question is already answered; the rest lapse.
	require.NoError(t, ts.documents.AnswerClarification(ctx, doc.ID, clarifications[0].ID, "answered in time"))
	overdue := clarifications[1:]
	for i := range overdue {
		overdue[i].ExpiresAt = time.Now().Add(-time.Minute)
	}
	require.NoError(t, ts.clarStore.SaveClarifications(ctx, overdue))

	affected, err = ts.documents.ExpireClarifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID}, affected)

	after, err := ts.clarStore.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	expired := 0
	for _, c := range after {
		if c.Status == domain.ClarificationExpired {
			expired++
		}
		assert.True(t, c.Resolved())
	}
	assert.Equal(t, 3, expired)

	// Expiry resolves the round, so the document resumes.
	stored, err := ts.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, stored.Status)
}

func TestExpireClarificationsLeavesUnparkedDocumentsAlone(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	doc := submitDocument(t, ts, "brief.txt", fullBriefText)
	seed := domain.Clarification{
		ID:        domain.ClarificationID(doc.ID, "Leftover question?"),
		DocID:     doc.ID,
		Question:  "Leftover question?",
		Status:    domain.ClarificationPending,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, ts.clarStore.SaveClarifications(ctx, []domain.Clarification{seed}))

	affected, err := ts.documents.ExpireClarifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID}, affected)

	stored, err := ts.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, stored.Status)
}
