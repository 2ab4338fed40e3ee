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

func testGraph(docID string, version int) *domain.RequirementGraph {
	return &domain.RequirementGraph{
		GraphID:       domain.GraphVersionID(docID, version),
		DocID:         docID,
		Version:       version,
		ParentVersion: version - 1,
		Domain:        domain.DomainSaaS,
		Modules: []domain.Module{
			{ID: "mod_0000000000000001", Name: "Dispatch"},
		},
		CreatedAt: time.Now(),
	}
}

func TestGraphStore_SaveAndGet(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	graph := testGraph("doc-1", 1)
	require.NoError(t, store.SaveGraph(ctx, graph))

	saved, err := store.GetGraph(ctx, "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, graph.GraphID, saved.GraphID)
	require.Len(t, saved.Modules, 1)
	assert.Equal(t, "Dispatch", saved.Modules[0].Name)
}

func TestGraphStore_SaveGraph_DuplicateVersion(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 1)))

	err := store.SaveGraph(ctx, testGraph("doc-1", 1))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestGraphStore_GetGraph_NoGraph(t *testing.T) {
	store := NewGraphStore()

	_, err := store.GetGraph(context.Background(), "doc-1", 1)
	assert.ErrorIs(t, err, domain.ErrNoGraph)
}

func TestGraphStore_GetGraph_CloneIsolation(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 1)))

	first, err := store.GetGraph(ctx, "doc-1", 1)
	require.NoError(t, err)
	first.Modules[0].Name = "Tampered"

	second, err := store.GetGraph(ctx, "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Dispatch", second.Modules[0].Name)
}

func TestGraphStore_GetLatest(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 1)))
	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 3)))
	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 2)))

	latest, err := store.GetLatest(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Version)
}

func TestGraphStore_GetLatest_NoGraph(t *testing.T) {
	store := NewGraphStore()

	_, err := store.GetLatest(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrNoGraph)
}

func TestGraphStore_ListVersions_Ascending(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 3)))
	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 1)))
	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-1", 2)))

	versions, err := store.ListVersions(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, versions)
}

func TestGraphStore_ListVersions_Empty(t *testing.T) {
	store := NewGraphStore()

	versions, err := store.ListVersions(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestGraphStore_SaveReport_OverlaysOnLoad(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	graph := testGraph("doc-1", 1)
	require.NoError(t, store.SaveGraph(ctx, graph))

	report := &domain.ValidationReport{
		GraphID:         graph.GraphID,
		Version:         1,
		Status:          domain.ReportWarn,
		ConfidenceScore: 0.71,
		CheckedAt:       time.Now(),
	}
	require.NoError(t, store.SaveReport(ctx, report))

	loaded, err := store.GetGraph(ctx, "doc-1", 1)
	require.NoError(t, err)
	require.NotNil(t, loaded.Validation)
	assert.Equal(t, domain.ReportWarn, loaded.Validation.Status)
	assert.InDelta(t, 0.71, loaded.ConfidenceScore, 1e-9)
}

func TestGraphStore_SaveReport_ReplacesPrevious(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	graph := testGraph("doc-1", 1)
	require.NoError(t, store.SaveGraph(ctx, graph))

	_ = store.SaveReport(ctx, &domain.ValidationReport{GraphID: graph.GraphID, Version: 1, Status: domain.ReportFail})
	_ = store.SaveReport(ctx, &domain.ValidationReport{GraphID: graph.GraphID, Version: 1, Status: domain.ReportPass})

	report, err := store.GetReport(ctx, "doc-1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportPass, report.Status)
}

func TestGraphStore_GetReport_NotFound(t *testing.T) {
	store := NewGraphStore()

	_, err := store.GetReport(context.Background(), "doc-1", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGraphStore_DeleteByDocument(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	graph := testGraph("doc-1", 1)
	require.NoError(t, store.SaveGraph(ctx, graph))
	require.NoError(t, store.SaveReport(ctx, &domain.ValidationReport{GraphID: graph.GraphID, Version: 1}))
	require.NoError(t, store.SaveGraph(ctx, testGraph("doc-2", 1)))

	require.NoError(t, store.DeleteByDocument(ctx, "doc-1"))

	_, err := store.GetLatest(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNoGraph)
	_, err = store.GetReport(ctx, "doc-1", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	kept, err := store.GetLatest(ctx, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", kept.DocID)
}

func TestGraphStore_Concurrency(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(version int) {
			defer wg.Done()
			_ = store.SaveGraph(ctx, testGraph("doc-1", version+1))
			_, _ = store.GetLatest(ctx, "doc-1")
			_, _ = store.ListVersions(ctx, "doc-1")
		}(i)
	}
	wg.Wait()

	versions, err := store.ListVersions(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, versions, 50)
}
