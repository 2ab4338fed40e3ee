package driven

import "context"

// GenerationService produces structured text completions for graph building
// and clarification drafting.
//
// Implementations may include:
//   - Gemini (gemini-2.0-flash)
//   - OpenAI (gpt-4o-mini)
//   - Ollama (local models)
//   - Heuristic (deterministic rule-based extractor, offline)
type GenerationService interface {
	// Generate produces a completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup and by settings validation.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Graph building uses 0.1 so repeated runs stay close to deterministic.
	Temperature float64

	// SystemPrompt is prepended as a system instruction when the provider
	// supports a separate system role. Otherwise it is concatenated before
	// the prompt.
	SystemPrompt string
}
