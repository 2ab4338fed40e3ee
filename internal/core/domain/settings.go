package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a capability provider for embeddings or generation.
type AIProvider string

// Available providers.
const (
	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderHash is the deterministic offline embedder. No network,
	// identical vectors for identical text on every run.
	AIProviderHash AIProvider = "hash"

	// AIProviderHeuristic is the deterministic offline scope extractor.
	AIProviderHeuristic AIProvider = "heuristic"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderOllama, AIProviderHash, AIProviderHeuristic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without network access.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash || p == AIProviderHeuristic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderHash:
		return "Hash embedder (offline, deterministic)"
	case AIProviderHeuristic:
		return "Heuristic extractor (offline, deterministic)"
	default:
		return unknownDescription
	}
}

// GenerationStrategy selects how scope generation runs.
type GenerationStrategy string

const (
	// StrategyHeuristic always uses the offline rule-based extractor.
	StrategyHeuristic GenerationStrategy = "heuristic"

	// StrategyLLM always uses the configured generation provider and
	// fails when it is unavailable or keeps producing invalid output.
	StrategyLLM GenerationStrategy = "llm"

	// StrategyHybrid uses the generation provider and falls back to the
	// heuristic extractor when the provider is unconfigured or fails.
	StrategyHybrid GenerationStrategy = "hybrid"
)

// IsValid returns true if the strategy is recognised.
func (s GenerationStrategy) IsValid() bool {
	switch s {
	case StrategyHeuristic, StrategyLLM, StrategyHybrid:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or API-compatible hosts).
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings holds generation provider configuration.
type GenerationSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or API-compatible hosts).
	BaseURL string

	// APIKey is the API key (for Gemini/OpenAI).
	APIKey string

	// Strategy selects llm, heuristic or hybrid generation.
	Strategy GenerationStrategy
}

// IsConfigured returns true if the generation provider is set up.
func (g GenerationSettings) IsConfigured() bool {
	if !g.Provider.IsValid() {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// PipelineSettings holds the interpretation pipeline tunables.
type PipelineSettings struct {
	// SplitThreshold is the cosine distance between consecutive window
	// embeddings above which the chunker splits.
	SplitThreshold float64

	// WindowSentences is the sliding window width in sentences.
	WindowSentences int

	// MinChunkTokens merges smaller chunks into a neighbour.
	MinChunkTokens int

	// MaxChunkTokens hard-splits larger chunks.
	MaxChunkTokens int

	// RequirementTagThreshold is the similarity to the requirement
	// centroid above which a chunk is tagged requirement-rich.
	RequirementTagThreshold float64

	// DomainMarginThreshold is the normalized margin below which
	// classification falls back to generic.
	DomainMarginThreshold float64

	// MinInputChars is the usable-text floor below which submission is
	// rejected with insufficient input.
	MinInputChars int

	// ClarificationMinChars is the usable-text length below which
	// processing raises clarification questions before generating.
	ClarificationMinChars int

	// ClarificationTTL is how long clarifications stay open before
	// expiring and processing proceeds on assumptions.
	ClarificationTTL time.Duration

	// RetrievalTopK is how many examples retrieval returns.
	RetrievalTopK int

	// MinSimilarity is the retrieval similarity floor.
	MinSimilarity float64

	// DuplicateThreshold is the near-duplicate similarity floor.
	DuplicateThreshold float64

	// GenerationRetryBudget is the number of corrective re-prompts
	// allowed after a schema violation before the build fails.
	GenerationRetryBudget int

	// EmbedTimeout bounds one embedding call.
	EmbedTimeout time.Duration

	// GenerateTimeout bounds one generation call.
	GenerateTimeout time.Duration

	// BackoffBase is the initial retry backoff after a timeout.
	BackoffBase time.Duration

	// EmbedBatchSize is the number of texts per embedding batch call.
	EmbedBatchSize int

	// PromptTokenBudget caps the chunk text included in one prompt.
	PromptTokenBudget int

	// ExcerptMaxChars truncates example input excerpts in prompts.
	ExcerptMaxChars int

	// MaxParallelDocs bounds concurrent document processing.
	MaxParallelDocs int
}

// ExamplesBackend selects the example corpus persistence.
type ExamplesBackend string

const (
	ExamplesBackendSQLite   ExamplesBackend = "sqlite"
	ExamplesBackendPostgres ExamplesBackend = "postgres"
	ExamplesBackendMemory   ExamplesBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b ExamplesBackend) IsValid() bool {
	switch b {
	case ExamplesBackendSQLite, ExamplesBackendPostgres, ExamplesBackendMemory:
		return true
	default:
		return false
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// DBPath is the sqlite database file, empty for the default
	// location under the user data directory.
	DBPath string

	// ExamplesBackend selects where the example corpus lives.
	ExamplesBackend ExamplesBackend

	// PostgresDSN is the connection string for the postgres example
	// store, used only when ExamplesBackend is postgres.
	PostgresDSN string

	// CorpusDir is an optional directory of example JSON files watched
	// for changes and folded into the corpus.
	CorpusDir string

	// TaxonomyPath is an optional YAML file overriding the embedded
	// module taxonomy.
	TaxonomyPath string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Generation holds generation provider settings.
	Generation GenerationSettings

	// Pipeline holds interpretation tunables.
	Pipeline PipelineSettings

	// Storage holds persistence settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with working offline defaults.
// The hash embedder and hybrid strategy make the pipeline runnable
// with no provider configured; cloud providers are opt-in via the
// settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderHash,
			Model:    "hash-256",
		},
		Generation: GenerationSettings{
			Strategy: StrategyHybrid,
		},
		Pipeline: DefaultPipelineSettings(),
		Storage: StorageSettings{
			ExamplesBackend: ExamplesBackendSQLite,
		},
	}
}

// DefaultPipelineSettings returns the pipeline tunable defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		SplitThreshold:          0.35,
		WindowSentences:         3,
		MinChunkTokens:          48,
		MaxChunkTokens:          512,
		RequirementTagThreshold: 0.62,
		DomainMarginThreshold:   0.08,
		MinInputChars:           80,
		ClarificationMinChars:   500,
		ClarificationTTL:        24 * time.Hour,
		RetrievalTopK:           3,
		MinSimilarity:           0.25,
		DuplicateThreshold:      0.92,
		GenerationRetryBudget:   2,
		EmbedTimeout:            30 * time.Second,
		GenerateTimeout:         120 * time.Second,
		BackoffBase:             500 * time.Millisecond,
		EmbedBatchSize:          16,
		PromptTokenBudget:       6000,
		ExcerptMaxChars:         2000,
		MaxParallelDocs:         4,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderHash,
	}
}

// AllGenerationProviders returns providers that support generation.
func AllGenerationProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderHeuristic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-embedding-001",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
		AIProviderHash:   "hash-256",
	}
}

// DefaultGenerationModels returns default models for each generation provider.
func DefaultGenerationModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-2.0-flash",
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderOllama: "llama3.2",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models
		"gemini-embedding-001": 768,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// Offline hash embedder
		"hash-256": 256,
	}
}
