package driven

// PromptStore provides access to generation prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptGraphSystem is the system prompt for graph extraction. It
	// states the exact JSON schema and extraction rules. No placeholders.
	PromptGraphSystem = "graph_system"

	// PromptGraphUser wraps the document chunks and few-shot examples.
	// The template expects %s (examples block) and %s (chunk text).
	PromptGraphUser = "graph_user"

	// PromptGraphCorrective re-prompts after a schema violation.
	// The template expects %s (violation summary) and %s (prior response).
	PromptGraphCorrective = "graph_corrective"

	// PromptClarification drafts clarification questions for short input.
	// The template expects %s (document text).
	PromptClarification = "clarification"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
