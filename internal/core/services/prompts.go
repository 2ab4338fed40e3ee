package services

// Default prompt templates used when no PromptStore is configured.
// The well-known names in ports/driven/prompts.go map onto these.

// defaultGraphSystemPrompt states the output contract for scope
// extraction. It is sent as the system instruction and contains no
// placeholders.
const defaultGraphSystemPrompt = `You are a requirements analyst. You turn project documents into a structured scope.

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
- Raise a question for anything the document leaves genuinely unclear, with your best assumption as suggested_answer.`

// defaultGraphUserPrompt wraps the few-shot examples block and the
// chunked document text.
const defaultGraphUserPrompt = `%sInterpret the following project document. Each chunk is introduced by its identifier in square brackets.

%s

Respond with the JSON object only.`

// defaultGraphCorrectivePrompt re-prompts after the previous response
// violated the schema.
const defaultGraphCorrectivePrompt = `Your previous response was not a valid scope object:

%s

Previous response:
%s

Produce the corrected JSON object. Respond with the JSON object only, no prose, no markdown fences.`

// defaultClarificationPrompt drafts clarification questions for thin input.
const defaultClarificationPrompt = `The following project description is too short to interpret confidently:

%s

Write 3 to 5 clarification questions that would most improve the interpretation. Respond with a JSON array and nothing else:
[{"question": "", "category": "persona_coverage|feature_gaps|kpi_details|context|other", "suggested_answer": "the assumption to proceed with if unanswered"}]`
