package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/vectors"
)

// Ensure ExampleService implements the interface.
var _ driving.ExampleService = (*ExampleService)(nil)

// Query tags recorded on retrieval results.
const (
	queryTagRequirementRich = "requirement-rich"
	queryTagAllChunks       = "all"
)

// ExampleService manages the example corpus and serves few-shot retrieval.
type ExampleService struct {
	store    driven.ExampleStore
	index    driven.ExampleIndex
	embedder driven.EmbeddingService
	settings domain.PipelineSettings
}

// NewExampleService creates a new example service.
func NewExampleService(
	store driven.ExampleStore,
	index driven.ExampleIndex,
	embedder driven.EmbeddingService,
	settings domain.PipelineSettings,
) *ExampleService {
	return &ExampleService{
		store:    store,
		index:    index,
		embedder: embedder,
		settings: settings,
	}
}

// Add embeds and appends an example to the corpus, then reindexes.
func (s *ExampleService) Add(
	ctx context.Context, domainLabel, textExcerpt, structuredOutput string,
) (*domain.ExampleRecord, error) {
	textExcerpt = strings.TrimSpace(textExcerpt)
	structuredOutput = strings.TrimSpace(structuredOutput)
	if textExcerpt == "" {
		return nil, fmt.Errorf("%w: example text excerpt is empty", domain.ErrInvalidInput)
	}
	if structuredOutput == "" {
		return nil, fmt.Errorf("%w: example structured output is empty", domain.ErrInvalidInput)
	}
	if !json.Valid([]byte(structuredOutput)) {
		return nil, fmt.Errorf("%w: example structured output is not valid JSON", domain.ErrInvalidInput)
	}

	embedding, err := s.embedText(ctx, textExcerpt)
	if err != nil {
		return nil, fmt.Errorf("embed example: %w", err)
	}

	record := domain.ExampleRecord{
		ExampleID:        domain.ExampleID(domainLabel, textExcerpt),
		Domain:           domainLabel,
		TextExcerpt:      textExcerpt,
		StructuredOutput: structuredOutput,
		Embedding:        embedding,
		AddedAt:          time.Now(),
	}

	if err := s.store.Append(ctx, []domain.ExampleRecord{record}); err != nil {
		return nil, fmt.Errorf("append example: %w", err)
	}
	if err := s.Reindex(ctx); err != nil {
		return nil, fmt.Errorf("reindex after add: %w", err)
	}

	logger.Debug("Added example %s (domain=%s)", record.ExampleID, domainLabel)
	return &record, nil
}

// corpusExample is the on-disk corpus file entry format.
type corpusExample struct {
	Domain           string          `json:"domain"`
	TextExcerpt      string          `json:"text_excerpt"`
	StructuredOutput json.RawMessage `json:"structured_output"`
}

// AddFromFile loads one corpus JSON file and appends its examples.
// The file holds either a single example object or an array of them.
func (s *ExampleService) AddFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read corpus file: %w", err)
	}

	entries, err := parseCorpusFile(data)
	if err != nil {
		return 0, fmt.Errorf("parse corpus file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	records := make([]domain.ExampleRecord, 0, len(entries))
	now := time.Now()
	for i, entry := range entries {
		excerpt := strings.TrimSpace(entry.TextExcerpt)
		if excerpt == "" || len(entry.StructuredOutput) == 0 {
			return 0, fmt.Errorf("%w: corpus entry %d is missing text_excerpt or structured_output",
				domain.ErrInvalidInput, i)
		}

		embedding, err := s.embedText(ctx, excerpt)
		if err != nil {
			return 0, fmt.Errorf("embed corpus entry %d: %w", i, err)
		}

		records = append(records, domain.ExampleRecord{
			ExampleID:        domain.ExampleID(entry.Domain, excerpt),
			Domain:           entry.Domain,
			TextExcerpt:      excerpt,
			StructuredOutput: string(entry.StructuredOutput),
			Embedding:        embedding,
			AddedAt:          now,
		})
	}

	if err := s.store.Append(ctx, records); err != nil {
		return 0, fmt.Errorf("append corpus entries: %w", err)
	}
	if err := s.Reindex(ctx); err != nil {
		return 0, fmt.Errorf("reindex after corpus load: %w", err)
	}

	logger.Info("Loaded %d examples from %s", len(records), path)
	return len(records), nil
}

// parseCorpusFile accepts either a JSON array of examples or one object.
func parseCorpusFile(data []byte) ([]corpusExample, error) {
	var entries []corpusExample
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var single corpusExample
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []corpusExample{single}, nil
}

// List returns all stored examples ordered by example ID.
func (s *ExampleService) List(ctx context.Context) ([]domain.ExampleRecord, error) {
	return s.store.List(ctx)
}

// Count returns the number of stored examples.
func (s *ExampleService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// Reindex reloads the corpus from the store and rebuilds the index
// snapshot atomically. Searches racing the rebuild see the old snapshot
// until the swap.
func (s *ExampleService) Reindex(ctx context.Context) error {
	records, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list examples: %w", err)
	}
	if err := s.index.Rebuild(ctx, records); err != nil {
		return fmt.Errorf("rebuild example index: %w", err)
	}
	logger.Debug("Example index rebuilt: %d records", len(records))
	return nil
}

// Retrieve returns the top-k examples for a chunked document.
//
// The query vector is the mean of the requirement-rich chunk embeddings,
// falling back to the mean over all chunks when none are tagged. Zero
// hits above the similarity floor is not an error: the result is marked
// degraded and generation proceeds unaugmented.
func (s *ExampleService) Retrieve(
	ctx context.Context, chunks []domain.Chunk, k int,
) (*domain.RetrievalResult, error) {
	if k <= 0 {
		k = s.settings.RetrievalTopK
	}
	if k <= 0 {
		k = domain.DefaultPipelineSettings().RetrievalTopK
	}

	query, tag := retrievalQuery(chunks)
	if query == nil {
		logger.Warn("Retrieval degraded: no chunk embeddings to build a query from")
		return &domain.RetrievalResult{Degraded: true, QueryTag: tag}, nil
	}

	hits, err := s.index.Search(ctx, query, k, s.settings.MinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("search example index: %w", err)
	}

	if len(hits) == 0 {
		logger.Info("Retrieval degraded: no example above similarity floor %.2f", s.settings.MinSimilarity)
		return &domain.RetrievalResult{Degraded: true, QueryTag: tag}, nil
	}

	logger.Debug("Retrieved %d examples (query=%s, best=%.3f)", len(hits), tag, hits[0].Similarity)
	return &domain.RetrievalResult{Examples: hits, QueryTag: tag}, nil
}

// retrievalQuery builds the query vector from chunk embeddings,
// preferring requirement-rich chunks.
func retrievalQuery(chunks []domain.Chunk) ([]float32, string) {
	var rich [][]float32
	var all [][]float32
	for i := range chunks {
		if chunks[i].Embedding == nil {
			continue
		}
		all = append(all, chunks[i].Embedding)
		if chunks[i].HasTag(domain.ChunkTagRequirementRich) {
			rich = append(rich, chunks[i].Embedding)
		}
	}
	if len(rich) > 0 {
		return vectors.Mean(rich), queryTagRequirementRich
	}
	return vectors.Mean(all), queryTagAllChunks
}

// embedText embeds one text under the configured embedding timeout.
func (s *ExampleService) embedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := capabilityTimeout(ctx, s.settings.EmbedTimeout)
	defer cancel()
	return s.embedder.Embed(ctx, text)
}

// capabilityTimeout bounds one capability call. A non-positive duration
// leaves the context untouched.
func capabilityTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
