// Package hash provides a deterministic offline embedding service.
//
// Texts are tokenized, each token is hashed into a fixed-size bucket, and
// the resulting bag-of-words vector is L2-normalized. The same text always
// produces the same vector, with no network and no model files, so the
// full pipeline runs offline and tests are reproducible.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 256
	DefaultModelName  = "hash-256"
)

// Config holds configuration for the hash embedding service.
type Config struct {
	// Dimensions is the embedding vector size (default: 256).
	Dimensions int

	// ModelName overrides the reported model name.
	ModelName string
}

// EmbeddingService generates deterministic token-hash embeddings.
type EmbeddingService struct {
	dimensions int
	modelName  string
}

// NewEmbeddingService creates a new hash embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModelName
	}

	return &EmbeddingService{
		dimensions: cfg.Dimensions,
		modelName:  cfg.ModelName,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		// Low bits pick the bucket, one higher bit picks the sign, so
		// frequent tokens cannot all pile onto the positive axis.
		bucket := int(sum % uint64(s.dimensions))
		if sum&(1<<63) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.modelName
}

// Ping always succeeds; there is no remote service to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize lowercases the text and splits it on anything that is not a
// letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales the vector to unit length in place. Zero vectors
// (empty or all-punctuation input) are left as-is.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	mag := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / mag)
	}
}
