package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads generation prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for
// new files. The texts mirror the hardcoded service defaults so an untouched
// prompt directory changes nothing.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptGraphSystem: `You are a requirements analyst. You turn project documents into a structured scope.

Respond with a single JSON object and nothing else. No prose, no markdown fences.

The JSON object has exactly these keys:
{
  "executive_summary": "2-4 sentence summary of what is being built and why",
  "personas": [{"name": "", "description": "", "goals": [""], "source_chunks": [""]}],
  "modules": [{"name": "", "description": "", "source_chunks": [""]}],
  "features": [{"title": "", "description": "", "priority": "P1", "personas": [""], "modules": [""], "dependencies": [""], "notes": [""], "source_chunks": [""]}],
  "interactions": [{"feature": "", "actor": "", "action": "", "outcome": "", "source_chunks": [""]}],
  "functional_requirements": [{"text": "", "features": [""], "source_chunks": [""]}],
  "technical_requirements": [{"text": "", "features": [""], "source_chunks": [""]}],
  "non_functional_requirements": [{"text": "", "features": [""], "source_chunks": [""]}],
  "questions": [{"text": "", "category": "other", "suggested_answer": "", "source_chunks": [""]}]
}

Rules:
- Extract only what the document states or clearly implies. Never invent requirements.
- "priority" is P1, P2 or P3. P1 for must-have/critical/core capabilities, P3 for nice-to-have, P2 otherwise.
- "personas", "modules" and "dependencies" on a feature refer to persona names, module names and other feature titles from THIS response, spelled identically.
- "feature" on an interaction and "features" on a requirement refer to feature titles from this response.
- "category" on a question is one of: persona_coverage, feature_gaps, kpi_details, context, other.
- "source_chunks" lists the chunk identifiers (the [chk_...] markers in the input) the entry was derived from. Cite at least one wherever possible.
- Every feature should belong to at least one module. Group related capabilities under shared modules.
- Raise a question for anything the document leaves genuinely unclear, with your best assumption as suggested_answer.`,

	driven.PromptGraphUser: `%sInterpret the following project document. Each chunk is introduced by its identifier in square brackets.

%s

Respond with the JSON object only.`,

	driven.PromptGraphCorrective: `Your previous response was not a valid scope object:

%s

Previous response:
%s

Produce the corrected JSON object. Respond with the JSON object only, no prose, no markdown fences.`,

	driven.PromptClarification: `The following project description is too short to interpret confidently:

%s

Write 3 to 5 clarification questions that would most improve the interpretation. Respond with a JSON array and nothing else:
[{"question": "", "category": "persona_coverage|feature_gaps|kpi_details|context|other", "suggested_answer": "the assumption to proceed with if unanswered"}]`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.orbit/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".orbit", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Orbit Prompts

This directory contains customisable prompts used by Orbit's scope generation.

## Files

- ` + "`graph_system.txt`" + ` - System prompt stating the scope JSON schema and extraction rules
- ` + "`graph_user.txt`" + ` - Wraps the few-shot examples block and the chunked document text
- ` + "`graph_corrective.txt`" + ` - Re-prompts after a response that violated the schema
- ` + "`clarification.txt`" + ` - Drafts clarification questions for short input

## Customisation

Edit any file to customise generation behaviour. Changes take effect on the
next command.

## Format Placeholders

Some prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (e.g., the examples block, chunk text or prior response)

Ensure customised prompts maintain placeholders in the correct positions.
The system prompt takes no placeholders.
`
	return os.WriteFile(path, []byte(content), 0600)
}
