package services

import (
	"fmt"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"

	keyGenProvider = "generation.provider"
	keyGenModel    = "generation.model"
	keyGenBaseURL  = "generation.base_url"
	keyGenAPIKey   = "generation.api_key"
	keyGenStrategy = "generation.strategy"

	keyStorageDBPath    = "storage.db_path"
	keyStorageBackend   = "storage.examples_backend"
	keyStorageDSN       = "storage.postgres_dsn"
	keyStorageCorpusDir = "storage.corpus_dir"
	keyStorageTaxonomy  = "storage.taxonomy_path"

	pipelinePrefix = "pipeline."
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Generation: domain.GenerationSettings{
			Provider: s.getProvider(keyGenProvider, defaults.Generation.Provider),
			Model:    s.getString(keyGenModel, defaults.Generation.Model),
			BaseURL:  s.configStore.GetString(keyGenBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyGenAPIKey),
			Strategy: s.getStrategy(keyGenStrategy, defaults.Generation.Strategy),
		},
		Pipeline: s.getPipeline(defaults.Pipeline),
		Storage: domain.StorageSettings{
			DBPath:          s.configStore.GetString(keyStorageDBPath),
			ExamplesBackend: s.getBackend(keyStorageBackend, defaults.Storage.ExamplesBackend),
			PostgresDSN:     s.configStore.GetString(keyStorageDSN),
			CorpusDir:       s.configStore.GetString(keyStorageCorpusDir),
			TaxonomyPath:    s.configStore.GetString(keyStorageTaxonomy),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save generation settings
	if err := s.configStore.Set(keyGenProvider, settings.Generation.Provider.String()); err != nil {
		return fmt.Errorf("save generation provider: %w", err)
	}
	if err := s.configStore.Set(keyGenModel, settings.Generation.Model); err != nil {
		return fmt.Errorf("save generation model: %w", err)
	}
	if err := s.configStore.Set(keyGenBaseURL, settings.Generation.BaseURL); err != nil {
		return fmt.Errorf("save generation base_url: %w", err)
	}
	if settings.Generation.APIKey != "" {
		if err := s.configStore.Set(keyGenAPIKey, settings.Generation.APIKey); err != nil {
			return fmt.Errorf("save generation api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyGenStrategy, string(settings.Generation.Strategy)); err != nil {
		return fmt.Errorf("save generation strategy: %w", err)
	}

	// Save pipeline tunables
	if err := s.savePipeline(settings.Pipeline); err != nil {
		return err
	}

	// Save storage settings
	if err := s.configStore.Set(keyStorageDBPath, settings.Storage.DBPath); err != nil {
		return fmt.Errorf("save db_path: %w", err)
	}
	if err := s.configStore.Set(keyStorageBackend, string(settings.Storage.ExamplesBackend)); err != nil {
		return fmt.Errorf("save examples_backend: %w", err)
	}
	if err := s.configStore.Set(keyStorageDSN, settings.Storage.PostgresDSN); err != nil {
		return fmt.Errorf("save postgres_dsn: %w", err)
	}
	if err := s.configStore.Set(keyStorageCorpusDir, settings.Storage.CorpusDir); err != nil {
		return fmt.Errorf("save corpus_dir: %w", err)
	}
	if err := s.configStore.Set(keyStorageTaxonomy, settings.Storage.TaxonomyPath); err != nil {
		return fmt.Errorf("save taxonomy_path: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetGenerationProvider configures the generation provider.
func (s *SettingsService) SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid generation provider: %s", provider)
	}

	// Validate provider supports generation
	valid := false
	for _, p := range domain.AllGenerationProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support generation", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Generation.Model = model
	} else if defaultModel, ok := domain.DefaultGenerationModels()[provider]; ok {
		settings.Generation.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Generation.BaseURL == "" {
			settings.Generation.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Generation.BaseURL = ""
	}

	// Set API key
	settings.Generation.APIKey = apiKey

	return s.Save(settings)
}

// SetStrategy updates the generation strategy.
func (s *SettingsService) SetStrategy(strategy domain.GenerationStrategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("invalid generation strategy: %s", strategy)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.Strategy = strategy
	return s.Save(settings)
}

// Validate checks if current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Embeddings drive chunking and retrieval; the pipeline cannot run
	// without them
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %s is not configured", settings.Embedding.Provider)
	}

	if !settings.Generation.Strategy.IsValid() {
		return fmt.Errorf("invalid generation strategy: %s", settings.Generation.Strategy)
	}

	// The llm strategy has no fallback, so the provider must be usable
	if settings.Generation.Strategy == domain.StrategyLLM && !settings.Generation.IsConfigured() {
		return fmt.Errorf(
			"generation strategy %q requires a configured generation provider",
			settings.Generation.Strategy,
		)
	}

	if !settings.Storage.ExamplesBackend.IsValid() {
		return fmt.Errorf("invalid examples backend: %s", settings.Storage.ExamplesBackend)
	}
	if settings.Storage.ExamplesBackend == domain.ExamplesBackendPostgres && settings.Storage.PostgresDSN == "" {
		return fmt.Errorf("examples backend %q requires storage.postgres_dsn", settings.Storage.ExamplesBackend)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateGenerationConfig validates the current generation configuration by pinging the provider.
func (s *SettingsService) ValidateGenerationConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateGeneration(&settings.Generation)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get("scheduler.enabled"); exists {
		defaults.Enabled = s.configStore.GetBool("scheduler.enabled")
	}

	// Per-task config
	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDClarificationSweep: "clarification_sweep",
		domain.TaskIDExampleReindex:     "example_reindex",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]

		// Check enabled
		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Check interval (duration string like "45m", "1h")
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// getPipeline overlays configured pipeline tunables onto the defaults.
func (s *SettingsService) getPipeline(defaults domain.PipelineSettings) domain.PipelineSettings {
	p := defaults
	p.SplitThreshold = s.getFloat(pipelinePrefix+"split_threshold", defaults.SplitThreshold)
	p.WindowSentences = s.getInt(pipelinePrefix+"window_sentences", defaults.WindowSentences)
	p.MinChunkTokens = s.getInt(pipelinePrefix+"min_chunk_tokens", defaults.MinChunkTokens)
	p.MaxChunkTokens = s.getInt(pipelinePrefix+"max_chunk_tokens", defaults.MaxChunkTokens)
	p.RequirementTagThreshold = s.getFloat(pipelinePrefix+"requirement_tag_threshold", defaults.RequirementTagThreshold)
	p.DomainMarginThreshold = s.getFloat(pipelinePrefix+"domain_margin_threshold", defaults.DomainMarginThreshold)
	p.MinInputChars = s.getInt(pipelinePrefix+"min_input_chars", defaults.MinInputChars)
	p.ClarificationMinChars = s.getInt(pipelinePrefix+"clarification_min_chars", defaults.ClarificationMinChars)
	p.ClarificationTTL = s.getDuration(pipelinePrefix+"clarification_ttl", defaults.ClarificationTTL)
	p.RetrievalTopK = s.getInt(pipelinePrefix+"retrieval_top_k", defaults.RetrievalTopK)
	p.MinSimilarity = s.getFloat(pipelinePrefix+"min_similarity", defaults.MinSimilarity)
	p.DuplicateThreshold = s.getFloat(pipelinePrefix+"duplicate_threshold", defaults.DuplicateThreshold)
	p.GenerationRetryBudget = s.getInt(pipelinePrefix+"generation_retry_budget", defaults.GenerationRetryBudget)
	p.EmbedTimeout = s.getDuration(pipelinePrefix+"embed_timeout", defaults.EmbedTimeout)
	p.GenerateTimeout = s.getDuration(pipelinePrefix+"generate_timeout", defaults.GenerateTimeout)
	p.BackoffBase = s.getDuration(pipelinePrefix+"backoff_base", defaults.BackoffBase)
	p.EmbedBatchSize = s.getInt(pipelinePrefix+"embed_batch_size", defaults.EmbedBatchSize)
	p.PromptTokenBudget = s.getInt(pipelinePrefix+"prompt_token_budget", defaults.PromptTokenBudget)
	p.ExcerptMaxChars = s.getInt(pipelinePrefix+"excerpt_max_chars", defaults.ExcerptMaxChars)
	p.MaxParallelDocs = s.getInt(pipelinePrefix+"max_parallel_docs", defaults.MaxParallelDocs)
	return p
}

func (s *SettingsService) savePipeline(p domain.PipelineSettings) error {
	values := map[string]any{
		pipelinePrefix + "split_threshold":           p.SplitThreshold,
		pipelinePrefix + "window_sentences":          p.WindowSentences,
		pipelinePrefix + "min_chunk_tokens":          p.MinChunkTokens,
		pipelinePrefix + "max_chunk_tokens":          p.MaxChunkTokens,
		pipelinePrefix + "requirement_tag_threshold": p.RequirementTagThreshold,
		pipelinePrefix + "domain_margin_threshold":   p.DomainMarginThreshold,
		pipelinePrefix + "min_input_chars":           p.MinInputChars,
		pipelinePrefix + "clarification_min_chars":   p.ClarificationMinChars,
		pipelinePrefix + "clarification_ttl":         p.ClarificationTTL.String(),
		pipelinePrefix + "retrieval_top_k":           p.RetrievalTopK,
		pipelinePrefix + "min_similarity":            p.MinSimilarity,
		pipelinePrefix + "duplicate_threshold":       p.DuplicateThreshold,
		pipelinePrefix + "generation_retry_budget":   p.GenerationRetryBudget,
		pipelinePrefix + "embed_timeout":             p.EmbedTimeout.String(),
		pipelinePrefix + "generate_timeout":          p.GenerateTimeout.String(),
		pipelinePrefix + "backoff_base":              p.BackoffBase.String(),
		pipelinePrefix + "embed_batch_size":          p.EmbedBatchSize,
		pipelinePrefix + "prompt_token_budget":       p.PromptTokenBudget,
		pipelinePrefix + "excerpt_max_chars":         p.ExcerptMaxChars,
		pipelinePrefix + "max_parallel_docs":         p.MaxParallelDocs,
	}
	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStrategy(key string, defaultVal domain.GenerationStrategy) domain.GenerationStrategy {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	strategy := domain.GenerationStrategy(val)
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}

func (s *SettingsService) getBackend(key string, defaultVal domain.ExamplesBackend) domain.ExamplesBackend {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	backend := domain.ExamplesBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
