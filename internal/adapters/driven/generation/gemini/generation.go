// Package gemini provides a generation service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/throttle"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds configuration for the Gemini generation service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the generation model to use (default: gemini-2.0-flash).
	Model string

	// Throttle caps the outbound request rate. Nil means unlimited.
	Throttle *throttle.Limiter
}

// GenerationService produces completions using Gemini.
type GenerationService struct {
	client   *genai.Client
	model    string
	throttle *throttle.Limiter
}

// NewGenerationService creates a new Gemini generation service.
func NewGenerationService(ctx context.Context, cfg Config) (*GenerationService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GenerationService{
		client:   client,
		model:    cfg.Model,
		throttle: cfg.Throttle,
	}, nil
}

// Generate produces a completion from a prompt.
func (s *GenerationService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.throttle.Wait(ctx); err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: response contains no text")
	}
	return text, nil
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable with a minimal generation request.
func (s *GenerationService) Ping(ctx context.Context) error {
	config := &genai.GenerateContentConfig{MaxOutputTokens: 1}
	if _, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text("ping"), config); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return s.client.Close()
}
