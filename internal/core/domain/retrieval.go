package domain

import "time"

// ExampleRecord is one (input, structured output) pair in the
// retrieval corpus. Records are append-only; re-adding the same
// example is an upsert keyed by ExampleID.
type ExampleRecord struct {
	// ExampleID is the stable identifier, also the deterministic
	// tie-breaker when similarities are equal.
	ExampleID string

	// Domain is the optional domain label of the example.
	Domain string

	// TextExcerpt is the input text excerpt, truncated for prompting.
	TextExcerpt string

	// StructuredOutput is the serialized structured scope this input
	// produced, injected verbatim into few-shot prompts.
	StructuredOutput string

	// Embedding is the vector over the input excerpt.
	Embedding []float32

	// AddedAt is when the record entered the corpus.
	AddedAt time.Time
}

// RetrievedExample is one ranked retrieval hit.
type RetrievedExample struct {
	Example    ExampleRecord
	Similarity float64
}

// RetrievalResult is the outcome of one retrieval query.
type RetrievalResult struct {
	// Examples are the hits, ordered by non-increasing similarity with
	// ties broken by ascending example ID.
	Examples []RetrievedExample

	// Degraded is true when no example met the similarity floor;
	// generation proceeds unaugmented.
	Degraded bool

	// QueryTag records which chunk population built the query vector.
	QueryTag string
}
