package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

func TestEmbeddingService_ImplementsInterface(t *testing.T) {
	var _ driven.EmbeddingService = NewEmbeddingService(Config{})
}

func TestEmbeddingService_Embed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()

	first, err := svc.Embed(ctx, "The system must support user onboarding.")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "The system must support user onboarding.")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEmbeddingService_Embed_UnitLength(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	vec, err := svc.Embed(context.Background(), "orders ship within two days")
	require.NoError(t, err)
	require.Len(t, vec, DefaultDimensions)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestEmbeddingService_Embed_EmptyInput(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	vec, err := svc.Embed(context.Background(), "   \t\n")
	require.NoError(t, err)
	require.Len(t, vec, DefaultDimensions)

	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbeddingService_Embed_CaseAndPunctuationInsensitive(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()

	plain, err := svc.Embed(ctx, "checkout flow")
	require.NoError(t, err)
	shouty, err := svc.Embed(ctx, "Checkout, Flow!")
	require.NoError(t, err)

	assert.Equal(t, plain, shouty)
}

func TestEmbeddingService_Embed_DistinctTexts(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()

	a, err := svc.Embed(ctx, "patient records are encrypted at rest")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "the cart supports discount codes")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	single, err := svc.Embed(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[1])
}

func TestEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModelName, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestEmbeddingService_CustomDimensions(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 64, ModelName: "hash-64"})

	vec, err := svc.Embed(context.Background(), "short text")
	require.NoError(t, err)
	assert.Len(t, vec, 64)
	assert.Equal(t, "hash-64", svc.ModelName())
}
