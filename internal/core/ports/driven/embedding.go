package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Embeddings drive semantic chunk splitting, domain classification, example
// retrieval, and near-duplicate detection. The hash embedder provides a
// deterministic offline implementation, so this service is always available
// even without a configured provider.
//
// Implementations may include:
//   - Gemini (gemini-embedding-001)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Hash (deterministic token-hash bag of words, offline)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 256, 768, 1536).
	// This is determined by the model and must match stored example vectors.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup and by settings validation.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
