package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/tokens"
)

// Ensure GraphBuilder can take custom prompts.
var _ driven.PromptStoreAware = (*GraphBuilder)(nil)

// Generation temperatures. Scope extraction runs near-deterministic;
// clarification drafting gets a little room.
const (
	graphTemperature         = 0.1
	clarificationTemperature = 0.3
)

// GraphBuilder turns chunked documents into requirement graph versions.
//
// The primary generator is the configured LLM provider and may be nil.
// The fallback generator is the offline heuristic extractor. Which of
// the two runs is decided by the generation strategy.
type GraphBuilder struct {
	primary     driven.GenerationService
	fallback    driven.GenerationService
	taxonomy    driven.TaxonomyStore
	promptStore driven.PromptStore
	settings    domain.PipelineSettings
	strategy    domain.GenerationStrategy
	validate    *validator.Validate
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(
	primary driven.GenerationService,
	fallback driven.GenerationService,
	taxonomy driven.TaxonomyStore,
	settings domain.PipelineSettings,
	strategy domain.GenerationStrategy,
) *GraphBuilder {
	return &GraphBuilder{
		primary:  primary,
		fallback: fallback,
		taxonomy: taxonomy,
		settings: settings,
		strategy: strategy,
		validate: validator.New(),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (b *GraphBuilder) SetPromptStore(store driven.PromptStore) {
	b.promptStore = store
}

// loadPrompt loads a prompt from the store, falling back to the default.
func (b *GraphBuilder) loadPrompt(name, fallback string) string {
	if b.promptStore == nil {
		return fallback
	}
	prompt, err := b.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// Build generates and normalizes a new graph version for the document.
// The returned issues are normalization findings (dropped references,
// rejected cycle edges) for the validator to fold into its report.
//
// Build never mutates the parent. On failure the caller keeps the last
// good version; nothing partial is returned.
func (b *GraphBuilder) Build(
	ctx context.Context,
	doc *domain.Document,
	chunks []domain.Chunk,
	examples []domain.RetrievedExample,
	clarifications []domain.Clarification,
	parent *domain.RequirementGraph,
) (*domain.RequirementGraph, []domain.Issue, error) {
	draft, err := b.runGenerators(ctx, b.userPrompt(chunks, examples))
	if err != nil {
		return nil, nil, err
	}

	version, parentVersion := 1, 0
	if parent != nil {
		version = parent.Version + 1
		parentVersion = parent.Version
	}
	graph, issues := b.assemble(doc, chunks, draft, clarifications, version, parentVersion)
	return graph, issues, nil
}

// RebuildSection regenerates one section of the prior graph into version
// N+1. Every other section is carried over from a deep copy unchanged;
// only references into a replaced section are re-resolved, with drops
// recorded as dangling-reference issues.
func (b *GraphBuilder) RebuildSection(
	ctx context.Context,
	doc *domain.Document,
	chunks []domain.Chunk,
	examples []domain.RetrievedExample,
	clarifications []domain.Clarification,
	prior *domain.RequirementGraph,
	section domain.GraphSection,
	instructions string,
) (*domain.RequirementGraph, []domain.Issue, error) {
	prompt := b.userPrompt(chunks, examples)
	prompt += fmt.Sprintf("\n\nRework the %s section in particular; treat the rest of the scope as settled.", section)
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		prompt += "\n" + instructions
	}

	draft, err := b.runGenerators(ctx, prompt)
	if err != nil {
		return nil, nil, err
	}

	next := prior.Clone()
	next.Version = prior.Version + 1
	next.ParentVersion = prior.Version
	next.GraphID = domain.GraphVersionID(doc.ID, next.Version)
	next.CreatedAt = time.Now()
	next.Validation = nil
	next.ConfidenceScore = 0

	a := newGraphAssembler(doc.Domain, b.loadTaxonomy(), chunks)
	a.seedFromGraph(next, section)

	switch section {
	case domain.SectionSummary:
		next.ExecutiveSummary = strings.TrimSpace(draft.ExecutiveSummary)
	case domain.SectionPersonas:
		next.Personas = a.personas(draft.Personas)
	case domain.SectionModules:
		next.Modules = a.modules(draft.Modules)
	case domain.SectionFeatures:
		next.Features = a.features(draft.Features)
	case domain.SectionInteractions:
		next.Interactions = a.interactions(draft.Interactions)
	case domain.SectionFunctional:
		next.FunctionalRequirements = a.requirements(draft.Functional, domain.RequirementFunctional)
	case domain.SectionTechnical:
		next.TechnicalRequirements = a.requirements(draft.Technical, domain.RequirementTechnical)
	case domain.SectionNonFunctional:
		next.NonFunctionalRequirements = a.requirements(draft.NonFunctional, domain.RequirementNonFunctional)
	case domain.SectionQuestions:
		next.Questions = a.questions(draft.Questions, clarifications)
	}

	a.scrubReferences(next)
	if section == domain.SectionFeatures {
		a.breakDependencyCycles(next.Features)
	}
	return next, a.takeIssues(), nil
}

// runGenerators picks the generator order from the strategy and returns
// the first successfully parsed draft.
func (b *GraphBuilder) runGenerators(ctx context.Context, userPrompt string) (*graphDraft, error) {
	gens, err := b.generators()
	if err != nil {
		return nil, err
	}

	var draft *graphDraft
	var genErr error
	for i, gen := range gens {
		draft, genErr = b.generateDraft(ctx, gen, userPrompt)
		if genErr == nil {
			return draft, nil
		}
		if i < len(gens)-1 {
			logger.Warn("Generation via %s failed, falling back: %v", gen.ModelName(), genErr)
		}
	}
	if !errors.Is(genErr, domain.ErrGenerationFailure) {
		genErr = fmt.Errorf("%w: %w", domain.ErrGenerationFailure, genErr)
	}
	return nil, genErr
}

// generators resolves the strategy into an ordered candidate list.
func (b *GraphBuilder) generators() ([]driven.GenerationService, error) {
	switch b.strategy {
	case domain.StrategyLLM:
		if b.primary == nil {
			return nil, fmt.Errorf("%w: strategy %q requires a configured provider",
				domain.ErrGenerationUnavailable, b.strategy)
		}
		return []driven.GenerationService{b.primary}, nil
	case domain.StrategyHeuristic:
		if b.fallback == nil {
			return nil, fmt.Errorf("%w: no heuristic extractor wired", domain.ErrGenerationUnavailable)
		}
		return []driven.GenerationService{b.fallback}, nil
	default:
		if b.primary == nil {
			if b.fallback == nil {
				return nil, fmt.Errorf("%w: no generator wired", domain.ErrGenerationUnavailable)
			}
			return []driven.GenerationService{b.fallback}, nil
		}
		if b.fallback == nil {
			return []driven.GenerationService{b.primary}, nil
		}
		return []driven.GenerationService{b.primary, b.fallback}, nil
	}
}

// generateDraft runs one generator to a parsed draft, re-prompting with
// the violation text after invalid output until the corrective budget
// is spent.
func (b *GraphBuilder) generateDraft(
	ctx context.Context, gen driven.GenerationService, userPrompt string,
) (*graphDraft, error) {
	opts := driven.GenerateOptions{
		Temperature:  graphTemperature,
		SystemPrompt: b.loadPrompt(driven.PromptGraphSystem, defaultGraphSystemPrompt),
	}

	response, err := b.generate(ctx, gen, userPrompt, opts)
	if err != nil {
		return nil, err
	}

	draft, violations := b.parseDraft(response)
	for attempt := 1; draft == nil && attempt <= b.settings.GenerationRetryBudget; attempt++ {
		logger.Warn("Draft scope violates schema (corrective attempt %d/%d): %s",
			attempt, b.settings.GenerationRetryBudget, violations[0])
		corrective := fmt.Sprintf(
			b.loadPrompt(driven.PromptGraphCorrective, defaultGraphCorrectivePrompt),
			"- "+strings.Join(violations, "\n- "),
			response,
		)
		if response, err = b.generate(ctx, gen, corrective, opts); err != nil {
			return nil, err
		}
		draft, violations = b.parseDraft(response)
	}
	if draft == nil {
		return nil, &domain.SchemaViolationError{Violations: violations}
	}
	return draft, nil
}

// generate calls the generator under the configured timeout, retrying
// transient failures with exponential backoff.
func (b *GraphBuilder) generate(
	ctx context.Context, gen driven.GenerationService, prompt string, opts driven.GenerateOptions,
) (string, error) {
	backoff := b.settings.BackoffBase
	var lastErr error
	for attempt := 0; attempt <= b.settings.GenerationRetryBudget; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying generation in %v (attempt %d)", backoff, attempt+1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		callCtx, cancel := capabilityTimeout(ctx, b.settings.GenerateTimeout)
		response, err := gen.Generate(callCtx, prompt, opts)
		cancel()
		if err == nil {
			return response, nil
		}
		lastErr = err
		if !transientGenerationError(err) {
			return "", err
		}
	}
	return "", lastErr
}

// transientGenerationError reports whether a generation error is worth
// retrying inside the attempt budget.
func transientGenerationError(err error) bool {
	return errors.Is(err, domain.ErrGenerationTimeout) ||
		errors.Is(err, domain.ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}

// DraftClarifications produces clarification questions for input too
// thin to interpret confidently. Drafting is best-effort: when no
// provider is available or the provider output is unusable, a canned
// question set covers the standard gaps. Never fails.
func (b *GraphBuilder) DraftClarifications(ctx context.Context, docID, text string) []domain.Clarification {
	drafts := b.generateClarifications(ctx, text)
	if len(drafts) == 0 {
		drafts = defaultClarificationDrafts()
	}

	now := time.Now()
	out := make([]domain.Clarification, 0, len(drafts))
	seen := make(map[string]bool, len(drafts))
	for _, d := range drafts {
		question := strings.TrimSpace(d.Question)
		if question == "" {
			continue
		}
		id := domain.ClarificationID(docID, question)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, domain.Clarification{
			ID:              id,
			DocID:           docID,
			Question:        question,
			Category:        domain.ParseQuestionCategory(d.Category),
			SuggestedAnswer: strings.TrimSpace(d.SuggestedAnswer),
			Status:          domain.ClarificationPending,
			AskedAt:         now,
			ExpiresAt:       now.Add(b.settings.ClarificationTTL),
		})
	}
	return out
}

// clarificationDraft is the wire shape clarification drafting expects back.
type clarificationDraft struct {
	Question        string `json:"question"`
	Category        string `json:"category"`
	SuggestedAnswer string `json:"suggested_answer"`
}

// generateClarifications asks the primary provider for questions. The
// heuristic extractor cannot draft questions, so without a provider the
// caller falls back to the canned set.
func (b *GraphBuilder) generateClarifications(ctx context.Context, text string) []clarificationDraft {
	if b.primary == nil || b.strategy == domain.StrategyHeuristic {
		return nil
	}

	prompt := fmt.Sprintf(
		b.loadPrompt(driven.PromptClarification, defaultClarificationPrompt),
		domain.TrimExcerpt(text, b.settings.ExcerptMaxChars),
	)
	response, err := b.generate(ctx, b.primary, prompt, driven.GenerateOptions{Temperature: clarificationTemperature})
	if err != nil {
		logger.Warn("Clarification drafting failed, using canned questions: %v", err)
		return nil
	}

	payload := extractJSON(response, '[', ']')
	if payload == "" {
		return nil
	}
	var drafts []clarificationDraft
	if err := json.Unmarshal([]byte(payload), &drafts); err != nil {
		logger.Warn("Clarification drafting returned invalid JSON, using canned questions: %v", err)
		return nil
	}
	return drafts
}

// defaultClarificationDrafts covers the standard gaps in thin input.
func defaultClarificationDrafts() []clarificationDraft {
	return []clarificationDraft{
		{
			Question:        "Who are the primary users of the product, and what does each group need to accomplish?",
			Category:        string(domain.QuestionPersonaCoverage),
			SuggestedAnswer: "A single end-user persona covers all described functionality.",
		},
		{
			Question:        "Which capabilities are must-haves for the first release, and which can wait?",
			Category:        string(domain.QuestionFeatureGaps),
			SuggestedAnswer: "All described capabilities are in scope for the first release at normal priority.",
		},
		{
			Question:        "What measurable outcomes would make this project a success?",
			Category:        string(domain.QuestionKPIDetails),
			SuggestedAnswer: "No quantitative targets; success is functional completeness.",
		},
		{
			Question:        "Are there existing systems, platforms or constraints this must integrate with or run on?",
			Category:        string(domain.QuestionContext),
			SuggestedAnswer: "A standalone web application with no mandated integrations.",
		},
	}
}

// userPrompt assembles the generation user prompt from the few-shot
// examples block and the chunked document text.
func (b *GraphBuilder) userPrompt(chunks []domain.Chunk, examples []domain.RetrievedExample) string {
	template := b.loadPrompt(driven.PromptGraphUser, defaultGraphUserPrompt)
	return fmt.Sprintf(template, b.examplesBlock(examples), b.chunksBlock(chunks))
}

// examplesBlock renders retrieved examples as worked input/output pairs.
// Empty retrieval renders nothing and generation proceeds unaugmented.
func (b *GraphBuilder) examplesBlock(examples []domain.RetrievedExample) string {
	if len(examples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Worked examples from similar projects:\n\n")
	for i, ex := range examples {
		fmt.Fprintf(&sb, "### Example %d (%s)\nInput:\n%s\n\nOutput:\n%s\n\n",
			i+1,
			ex.Example.Domain,
			domain.TrimExcerpt(ex.Example.TextExcerpt, b.settings.ExcerptMaxChars),
			prettyJSON(ex.Example.StructuredOutput),
		)
	}
	return sb.String()
}

// chunksBlock renders chunks under the prompt token budget, requirement-
// rich chunks first so budget pressure sheds boilerplate before scope.
func (b *GraphBuilder) chunksBlock(chunks []domain.Chunk) string {
	ordered := make([]domain.Chunk, 0, len(chunks))
	var rest []domain.Chunk
	for _, c := range chunks {
		if c.HasTag(domain.ChunkTagRequirementRich) {
			ordered = append(ordered, c)
		} else {
			rest = append(rest, c)
		}
	}
	ordered = append(ordered, rest...)

	budget := b.settings.PromptTokenBudget
	used := 0
	var sb strings.Builder
	for i, c := range ordered {
		cost := tokens.Count(c.Text)
		if budget > 0 && used+cost > budget {
			if sb.Len() == 0 {
				fmt.Fprintf(&sb, "[%s] %s\n\n", c.ID, tokens.Truncate(c.Text, budget))
			}
			logger.Debug("Prompt token budget %d reached, omitting %d of %d chunks",
				budget, len(ordered)-i, len(ordered))
			break
		}
		fmt.Fprintf(&sb, "[%s] %s\n\n", c.ID, c.Text)
		used += cost
	}
	return strings.TrimRight(sb.String(), "\n")
}

// graphDraft is the shape generation must return. References between
// entries are by name or title, resolved to IDs during normalization.
type graphDraft struct {
	ExecutiveSummary string             `json:"executive_summary"`
	Personas         []personaDraft     `json:"personas" validate:"dive"`
	Modules          []moduleDraft      `json:"modules" validate:"dive"`
	Features         []featureDraft     `json:"features" validate:"dive"`
	Interactions     []interactionDraft `json:"interactions" validate:"dive"`
	Functional       []requirementDraft `json:"functional_requirements" validate:"dive"`
	Technical        []requirementDraft `json:"technical_requirements" validate:"dive"`
	NonFunctional    []requirementDraft `json:"non_functional_requirements" validate:"dive"`
	Questions        []questionDraft    `json:"questions" validate:"dive"`
}

type personaDraft struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Goals        []string `json:"goals"`
	SourceChunks []string `json:"source_chunks"`
}

type moduleDraft struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	SourceChunks []string `json:"source_chunks"`
}

type featureDraft struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Priority     string   `json:"priority" validate:"omitempty,oneof=P1 P2 P3"`
	Personas     []string `json:"personas"`
	Modules      []string `json:"modules"`
	Dependencies []string `json:"dependencies"`
	Notes        []string `json:"notes"`
	SourceChunks []string `json:"source_chunks"`
}

type interactionDraft struct {
	Feature      string   `json:"feature"`
	Actor        string   `json:"actor" validate:"required"`
	Action       string   `json:"action" validate:"required"`
	Outcome      string   `json:"outcome"`
	SourceChunks []string `json:"source_chunks"`
}

type requirementDraft struct {
	Text         string   `json:"text" validate:"required"`
	Features     []string `json:"features"`
	SourceChunks []string `json:"source_chunks"`
}

type questionDraft struct {
	Text            string   `json:"text" validate:"required"`
	Category        string   `json:"category"`
	SuggestedAnswer string   `json:"suggested_answer"`
	SourceChunks    []string `json:"source_chunks"`
}

// parseDraft extracts and checks the draft from a raw response. On
// success violations is nil; on any violation the draft is nil and
// violations carries the text for the corrective re-prompt.
func (b *GraphBuilder) parseDraft(response string) (*graphDraft, []string) {
	payload := extractJSON(response, '{', '}')
	if payload == "" {
		return nil, []string{"response contains no JSON object"}
	}

	var draft graphDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return nil, []string{fmt.Sprintf("response is not valid JSON: %v", err)}
	}

	var violations []string
	if err := b.validate.Struct(&draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				violations = append(violations, fmt.Sprintf("%s failed on '%s' tag", fe.Namespace(), fe.Tag()))
			}
		} else {
			violations = append(violations, err.Error())
		}
	}
	if len(draft.Modules) == 0 && len(draft.Features) == 0 &&
		len(draft.Functional)+len(draft.Technical)+len(draft.NonFunctional) == 0 {
		violations = append(violations, "scope is empty: no modules, features or requirements")
	}
	if len(violations) > 0 {
		return nil, violations
	}
	return &draft, nil
}

// extractJSON returns the first balanced JSON value delimited by opener
// and closer in s, after stripping markdown code fences. String-aware so
// braces inside values do not unbalance the scan.
func extractJSON(s string, opener, closer byte) string {
	s = stripCodeFences(s)
	start := strings.IndexByte(s, opener)
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// stripCodeFences unwraps a fenced response like ```json ... ```.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// prettyJSON indents a JSON document for prompt readability, returning
// the input unchanged when it does not parse.
func prettyJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

// loadTaxonomy loads the module taxonomy, falling back to the embedded
// default when no store is wired or loading fails.
func (b *GraphBuilder) loadTaxonomy() *domain.Taxonomy {
	if b.taxonomy == nil {
		return domain.DefaultTaxonomy()
	}
	tax, err := b.taxonomy.Load()
	if err != nil || tax == nil {
		logger.Warn("Taxonomy load failed, using embedded default: %v", err)
		return domain.DefaultTaxonomy()
	}
	return tax
}
