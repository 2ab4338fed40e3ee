package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

func TestClarificationStore_SaveAndGet(t *testing.T) {
	store := NewClarificationStore()
	ctx := context.Background()

	c := domain.Clarification{
		ID:       "que-1",
		DocID:    "doc-1",
		Question: "Which payment providers must be supported?",
		Status:   domain.ClarificationPending,
		AskedAt:  time.Now(),
	}
	require.NoError(t, store.SaveClarifications(ctx, []domain.Clarification{c}))

	saved, err := store.GetClarification(ctx, "que-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", saved.DocID)
	assert.Equal(t, domain.ClarificationPending, saved.Status)
}

func TestClarificationStore_SaveClarifications_Upsert(t *testing.T) {
	store := NewClarificationStore()
	ctx := context.Background()

	c := domain.Clarification{ID: "que-1", DocID: "doc-1", Status: domain.ClarificationPending}
	require.NoError(t, store.SaveClarifications(ctx, []domain.Clarification{c}))

	c.Status = domain.ClarificationAnswered
	c.Answer = "Stripe only"
	require.NoError(t, store.SaveClarifications(ctx, []domain.Clarification{c}))

	saved, err := store.GetClarification(ctx, "que-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ClarificationAnswered, saved.Status)
	assert.Equal(t, "Stripe only", saved.Answer)
}

func TestClarificationStore_GetClarification_NotFound(t *testing.T) {
	store := NewClarificationStore()

	_, err := store.GetClarification(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClarificationStore_ListByDocument_AskOrder(t *testing.T) {
	store := NewClarificationStore()
	ctx := context.Background()

	base := time.Now()
	batch := []domain.Clarification{
		{ID: "que-late", DocID: "doc-1", AskedAt: base.Add(2 * time.Minute)},
		{ID: "que-first", DocID: "doc-1", AskedAt: base},
		{ID: "que-mid", DocID: "doc-1", AskedAt: base.Add(time.Minute)},
		{ID: "que-other", DocID: "doc-2", AskedAt: base},
	}
	require.NoError(t, store.SaveClarifications(ctx, batch))

	listed, err := store.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "que-first", listed[0].ID)
	assert.Equal(t, "que-mid", listed[1].ID)
	assert.Equal(t, "que-late", listed[2].ID)
}

func TestClarificationStore_ListExpired(t *testing.T) {
	store := NewClarificationStore()
	ctx := context.Background()

	now := time.Now()
	batch := []domain.Clarification{
		{ID: "que-due", DocID: "doc-1", Status: domain.ClarificationPending, ExpiresAt: now.Add(-time.Hour)},
		{ID: "que-fresh", DocID: "doc-1", Status: domain.ClarificationPending, ExpiresAt: now.Add(time.Hour)},
		{ID: "que-answered", DocID: "doc-1", Status: domain.ClarificationAnswered, ExpiresAt: now.Add(-time.Hour)},
	}
	require.NoError(t, store.SaveClarifications(ctx, batch))

	expired, err := store.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "que-due", expired[0].ID)
}

func TestClarificationStore_DeleteByDocument(t *testing.T) {
	store := NewClarificationStore()
	ctx := context.Background()

	batch := []domain.Clarification{
		{ID: "que-1", DocID: "doc-1"},
		{ID: "que-2", DocID: "doc-2"},
	}
	require.NoError(t, store.SaveClarifications(ctx, batch))

	require.NoError(t, store.DeleteByDocument(ctx, "doc-1"))

	_, err := store.GetClarification(ctx, "que-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	kept, err := store.GetClarification(ctx, "que-2")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", kept.DocID)
}

func TestClarificationStore_Concurrency(t *testing.T) {
	store := NewClarificationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "que-" + string(rune('A'+n%26))
			_ = store.SaveClarifications(ctx, []domain.Clarification{{ID: id, DocID: "doc-1"}})
			_, _ = store.ListByDocument(ctx, "doc-1")
		}(i)
	}
	wg.Wait()

	listed, err := store.ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, listed, 26)
}
