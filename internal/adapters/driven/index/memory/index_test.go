package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

func record(id string, embedding []float32) domain.ExampleRecord {
	return domain.ExampleRecord{
		ExampleID:        id,
		Domain:           domain.DomainSaaS,
		TextExcerpt:      "excerpt " + id,
		StructuredOutput: `{"modules":[]}`,
		Embedding:        embedding,
		AddedAt:          time.Now(),
	}
}

func TestIndex_ImplementsInterface(t *testing.T) {
	var _ driven.ExampleIndex = NewIndex()
}

func TestIndex_Search_RanksBySimilarity(t *testing.T) {
	idx := NewIndex()
	err := idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_far", []float32{0, 1}),
		record("exm_near", []float32{1, 0}),
		record("exm_mid", []float32{0.6, 0.8}),
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3, 0.1)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "exm_near", hits[0].Example.ExampleID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "exm_mid", hits[1].Example.ExampleID)
	assert.InDelta(t, 0.6, hits[1].Similarity, 1e-6)
}

func TestIndex_Search_TieBrokenByID(t *testing.T) {
	idx := NewIndex()
	err := idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_b", []float32{1, 0}),
		record("exm_a", []float32{1, 0}),
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 2, 0)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "exm_a", hits[0].Example.ExampleID)
	assert.Equal(t, "exm_b", hits[1].Example.ExampleID)
}

func TestIndex_Search_LimitsToK(t *testing.T) {
	idx := NewIndex()
	err := idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_a", []float32{1, 0}),
		record("exm_b", []float32{0.9, 0.1}),
		record("exm_c", []float32{0.8, 0.2}),
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 2, 0)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "exm_a", hits[0].Example.ExampleID)
	assert.Equal(t, "exm_b", hits[1].Example.ExampleID)
}

func TestIndex_Search_DropsBelowMinSimilarity(t *testing.T) {
	idx := NewIndex()
	err := idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_near", []float32{1, 0}),
		record("exm_orthogonal", []float32{0, 1}),
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0.5)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "exm_near", hits[0].Example.ExampleID)
}

func TestIndex_Search_ZeroKAndEmptyQuery(t *testing.T) {
	idx := NewIndex()
	err := idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_a", []float32{1, 0}),
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, hits)

	hits, err = idx.Search(context.Background(), nil, 3, 0)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestIndex_Search_EmptyIndex(t *testing.T) {
	idx := NewIndex()

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Rebuild_SwapsSnapshot(t *testing.T) {
	idx := NewIndex()
	err := idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_old", []float32{1, 0}),
	})
	require.NoError(t, err)

	err = idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_new", []float32{1, 0}),
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "exm_new", hits[0].Example.ExampleID)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_Rebuild_DropsRecordsWithoutEmbedding(t *testing.T) {
	idx := NewIndex()
	err := idx.Rebuild(context.Background(), []domain.ExampleRecord{
		record("exm_with", []float32{1, 0}),
		record("exm_without", nil),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len())
}

func TestIndex_Len_Empty(t *testing.T) {
	assert.Equal(t, 0, NewIndex().Len())
}

func TestIndex_Concurrency(t *testing.T) {
	idx := NewIndex()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				records := make([]domain.ExampleRecord, 0, n%5+1)
				for j := 0; j <= n%5; j++ {
					records = append(records, record(fmt.Sprintf("exm_%03d", j), []float32{1, float32(j)}))
				}
				err := idx.Rebuild(context.Background(), records)
				assert.NoError(t, err)
			} else {
				_, err := idx.Search(context.Background(), []float32{1, 0}, 3, 0)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, idx.Len(), 1)
}
