// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/embedding/gemini"
	hashembed "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/embedding/openai"
	geminigen "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/generation/gemini"
	heuristicgen "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/generation/heuristic"
	ollamagen "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/generation/ollama"
	openaigen "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/generation/openai"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/throttle"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Client-side request caps, pinned below the providers' published
// per-minute quotas. Local providers run unthrottled.
const (
	openaiRequestsPerMinute = 300
	geminiRequestsPerMinute = 120
)

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Generation       driven.GenerationService // Configured provider, nil when none is set up.
	Fallback         driven.GenerationService // Offline heuristic extractor, always present.
	Warnings         []string                 // Non-fatal issues that caused fallback.
	FellBack         bool                     // True if a dead provider degraded to offline mode.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.Generation != nil {
		r.Generation.Close()
	}
	if r.Fallback != nil {
		r.Fallback.Close()
	}
}

// InitAIServices creates the embedding and generation services for the
// configured providers, degrading to the offline deterministic adapters
// when a provider is unreachable. The pipeline never refuses to start
// over a dead cloud endpoint; it records a warning and keeps working.
func InitAIServices(settings domain.AppSettings) *InitResult {
	result := &InitResult{
		Fallback: heuristicgen.NewGenerationService(),
	}

	embedding, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s embedding unavailable, using offline hash embedder: %v", settings.Embedding.Provider, err))
		result.FellBack = true
	}
	if embedding == nil {
		embedding = hashembed.NewEmbeddingService(hashembed.Config{})
	}
	result.EmbeddingService = embedding

	if settings.Generation.Strategy == domain.StrategyHeuristic {
		return result
	}

	generation, err := CreateAndValidateGenerationService(&settings.Generation)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s generation unavailable, scope extraction degrades to heuristic rules: %v",
				settings.Generation.Provider, err))
		result.FellBack = true
	}
	result.Generation = generation
	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'orbit settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'orbit settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateGenerationService creates a generation service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateGenerationService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'orbit settings wizard' to fix",
			domain.ErrGenerationUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'orbit settings wizard' to fix",
			domain.ErrGenerationUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for use in the settings wizard to validate credentials on configuration.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateGenerationConfig validates a generation configuration by creating a service and pinging it.
// This is intended for use in the settings wizard to validate credentials on configuration.
func ValidateGenerationConfig(settings *domain.GenerationSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateGenerationService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return createGeminiEmbedding(settings)

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderHash:
		return createHashEmbedding(settings), nil

	case domain.AIProviderHeuristic:
		// The heuristic extractor generates scopes, it does not embed.
		return nil, fmt.Errorf("heuristic does not support embeddings, use gemini, openai, ollama or hash")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerationService creates the appropriate generation service based on settings.
// Returns nil if the provider is not configured.
func CreateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return createGeminiGeneration(settings)

	case domain.AIProviderOpenAI:
		return createOpenAIGeneration(settings)

	case domain.AIProviderOllama:
		return createOllamaGeneration(settings), nil

	case domain.AIProviderHeuristic:
		return heuristicgen.NewGenerationService(), nil

	case domain.AIProviderHash:
		// The hash embedder produces vectors, it does not generate text.
		return nil, fmt.Errorf("hash does not support generation, use gemini, openai, ollama or heuristic")

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", settings.Provider)
	}
}

// createGeminiEmbedding creates a Gemini embedding service.
func createGeminiEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
		APIKey:     settings.APIKey,
		Model:      settings.Model,
		Dimensions: dimensions,
		Throttle:   throttle.PerMinute(geminiRequestsPerMinute),
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
		Throttle:   throttle.PerMinute(openaiRequestsPerMinute),
	})
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createHashEmbedding creates the offline deterministic embedding service.
func createHashEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return hashembed.NewEmbeddingService(hashembed.Config{
		Dimensions: dimensions,
		ModelName:  settings.Model,
	})
}

// createGeminiGeneration creates a Gemini generation service.
func createGeminiGeneration(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	return geminigen.NewGenerationService(context.Background(), geminigen.Config{
		APIKey:   settings.APIKey,
		Model:    settings.Model,
		Throttle: throttle.PerMinute(geminiRequestsPerMinute),
	})
}

// createOpenAIGeneration creates an OpenAI generation service.
func createOpenAIGeneration(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	return openaigen.NewGenerationService(openaigen.Config{
		APIKey:   settings.APIKey,
		BaseURL:  settings.BaseURL,
		Model:    settings.Model,
		Throttle: throttle.PerMinute(openaiRequestsPerMinute),
	})
}

// createOllamaGeneration creates an Ollama generation service.
func createOllamaGeneration(settings *domain.GenerationSettings) driven.GenerationService {
	return ollamagen.NewGenerationService(ollamagen.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
