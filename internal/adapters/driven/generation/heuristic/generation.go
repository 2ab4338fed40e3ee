// Package heuristic provides a deterministic offline generation service.
//
// Instead of calling a model it recovers the chunked document text from
// the prompt (each chunk is a single prompt line introduced by its
// [chk_...] marker) and extracts a scope with line and keyword rules.
// The response is a JSON object in the same shape remote providers
// return, so the graph builder treats it like any other generator.
// Identical prompts produce identical output.
package heuristic

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Name is the reported model name.
const Name = "heuristic"

// Extraction caps. Rule-based extraction degrades on long documents, so
// the noisier categories are capped rather than exhaustive.
const (
	maxFunctional    = 8
	maxTechnical     = 5
	maxNonFunctional = 5
	maxQuestions     = 5
	maxNameRunes     = 80
)

var (
	chunkLineRe    = regexp.MustCompile(`^\[(chk_[0-9a-f]{16})\]\s*(.*)$`)
	moduleLabelRe  = regexp.MustCompile(`(?i)^(?:module|page|area|section)\s*[:\-]\s*(.+)$`)
	personaLabelRe = regexp.MustCompile(`(?i)^personas?\s*[:\-]\s*(.+)$`)
	personaNounRe  = regexp.MustCompile(`(?i)\b(user|customer|admin|manager|operator)\b`)
	functionalRe   = regexp.MustCompile(`(?i)\b(should|must|allow|enable)\b`)
	priorityHighRe = regexp.MustCompile(`(?i)\b(must|critical|core)\b`)
	priorityLowRe  = regexp.MustCompile(`(?i)\b(nice[ -]to[ -]have|optional|could)\b`)
	featureWordRe  = regexp.MustCompile(`(?i)\b(feature|workflow|screen|page|module)\b`)
	storyRe        = regexp.MustCompile(`(?i)^as an? ([^,]+),\s*(?:i|we|they) (?:want|need)(?: to)?\s+(.+)$`)
	actionVerbRe   = regexp.MustCompile(`(?i)\b(allow|enable|user|workflow|step)\b`)
	bulletPrefixRe = regexp.MustCompile(`^(?:[-*•]+|\d{1,3}[.)])\s+`)
	bulletSplitRe  = regexp.MustCompile(`\s+[-*•]\s+`)
)

var technicalWords = []string{"api", "integration", "database", "encryption", "authentication", "infrastructure"}

var nonFunctionalWords = []string{"performance", "scalability", "uptime", "latency", "security", "compliance"}

// GenerationService extracts scopes with deterministic rules.
type GenerationService struct{}

// NewGenerationService creates a new heuristic generation service.
func NewGenerationService() *GenerationService {
	return &GenerationService{}
}

// Generate parses the chunk lines out of the prompt and returns the
// extracted scope as JSON. Options are ignored: there is no temperature
// to set on a rule engine.
func (s *GenerationService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	segments := chunkSegments(prompt)
	if len(segments) == 0 {
		return "", fmt.Errorf("heuristic: prompt carries no chunked document text")
	}

	draft := extract(segments)
	out, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("heuristic: marshal scope: %w", err)
	}
	return string(out), nil
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return Name
}

// Ping always succeeds; there is no remote service to reach.
func (s *GenerationService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}

// segment is one chunk of document text recovered from the prompt.
type segment struct {
	ChunkID string
	Text    string
}

// chunkSegments picks the chunk lines out of the prompt. Chunk text never
// contains a newline, so every chunk is exactly one line and all other
// lines are prompt scaffolding.
func chunkSegments(prompt string) []segment {
	var out []segment
	for _, line := range strings.Split(prompt, "\n") {
		m := chunkLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if text := strings.TrimSpace(m[2]); text != "" {
			out = append(out, segment{ChunkID: m[1], Text: text})
		}
	}
	return out
}

// unit is one extractable span: a sentence or a bullet item, with the
// bullet marker stripped but remembered.
type unit struct {
	Text    string
	ChunkID string
	Bullet  bool
}

// units splits a segment into sentences and bullet items.
func units(seg segment) []unit {
	var out []unit
	for _, sent := range splitSentences(seg.Text) {
		for i, part := range bulletSplitRe.Split(sent, -1) {
			part = strings.TrimSpace(part)
			bullet := i > 0 || bulletPrefixRe.MatchString(part)
			cleaned := strings.TrimSpace(bulletPrefixRe.ReplaceAllString(part, ""))
			if cleaned == "" {
				continue
			}
			out = append(out, unit{Text: cleaned, ChunkID: seg.ChunkID, Bullet: bullet})
		}
	}
	return out
}

// splitSentences breaks text at terminal punctuation followed by space.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
			i++
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// scopeDraft is the response shape, matching what the builder parses.
type scopeDraft struct {
	ExecutiveSummary string             `json:"executive_summary"`
	Personas         []personaDraft     `json:"personas"`
	Modules          []moduleDraft      `json:"modules"`
	Features         []featureDraft     `json:"features"`
	Interactions     []interactionDraft `json:"interactions"`
	Functional       []requirementDraft `json:"functional_requirements"`
	Technical        []requirementDraft `json:"technical_requirements"`
	NonFunctional    []requirementDraft `json:"non_functional_requirements"`
	Questions        []questionDraft    `json:"questions"`
}

type personaDraft struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Goals        []string `json:"goals"`
	SourceChunks []string `json:"source_chunks"`
}

type moduleDraft struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	SourceChunks []string `json:"source_chunks"`
}

type featureDraft struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Priority     string   `json:"priority"`
	Personas     []string `json:"personas"`
	Modules      []string `json:"modules"`
	Dependencies []string `json:"dependencies"`
	Notes        []string `json:"notes"`
	SourceChunks []string `json:"source_chunks"`
}

type interactionDraft struct {
	Feature      string   `json:"feature"`
	Actor        string   `json:"actor"`
	Action       string   `json:"action"`
	Outcome      string   `json:"outcome"`
	SourceChunks []string `json:"source_chunks"`
}

type requirementDraft struct {
	Text         string   `json:"text"`
	Features     []string `json:"features"`
	SourceChunks []string `json:"source_chunks"`
}

type questionDraft struct {
	Text            string   `json:"text"`
	Category        string   `json:"category"`
	SuggestedAnswer string   `json:"suggested_answer"`
	SourceChunks    []string `json:"source_chunks"`
}

// extractor accumulates scope entries in document order.
type extractor struct {
	draft scopeDraft

	moduleIdx  map[string]int
	featureIdx map[string]int
	personaIdx map[string]int

	currentModule string
	lastFeature   string

	seenInteraction map[string]bool
	seenRequirement map[string]bool
	seenQuestion    map[string]bool

	sentences []string
}

const defaultModule = "General"

func extract(segments []segment) *scopeDraft {
	e := &extractor{
		moduleIdx:       map[string]int{},
		featureIdx:      map[string]int{},
		personaIdx:      map[string]int{},
		seenInteraction: map[string]bool{},
		seenRequirement: map[string]bool{},
		seenQuestion:    map[string]bool{},
		currentModule:   defaultModule,
	}

	for _, seg := range segments {
		for _, u := range units(seg) {
			e.sentences = append(e.sentences, u.Text)
			e.observe(u)
		}
	}

	e.draft.ExecutiveSummary = strings.Join(firstN(e.sentences, 2), " ")
	if len(e.draft.Personas) == 0 && len(e.sentences) > 0 {
		e.inferPersona(segments[0].ChunkID)
	}
	return &e.draft
}

// observe runs every rule against one unit. A unit can contribute to
// several categories: a must-have bullet is a feature and a functional
// requirement at once.
func (e *extractor) observe(u unit) {
	if m := personaLabelRe.FindStringSubmatch(u.Text); m != nil {
		e.addPersona(titleCase(m[1]), "", u.ChunkID)
		return
	}
	if m := moduleLabelRe.FindStringSubmatch(u.Text); m != nil {
		e.setModule(titleCase(m[1]), u.ChunkID)
		return
	}
	if allCapsHeading(u.Text) {
		e.setModule(titleCase(strings.ToLower(u.Text)), u.ChunkID)
		return
	}
	if !u.Bullet && looksLikeHeading(u.Text) {
		e.setModule(strings.TrimRight(u.Text, ":"), u.ChunkID)
		return
	}

	if strings.HasSuffix(u.Text, "?") {
		e.addQuestion(u)
		return
	}

	if m := storyRe.FindStringSubmatch(u.Text); m != nil {
		e.observeStory(u, m)
	} else if personaNounRe.MatchString(u.Text) {
		name, desc, ok := strings.Cut(u.Text, ":")
		if ok && len(strings.Fields(name)) <= 4 {
			e.addPersona(titleCase(name), strings.TrimSpace(desc), u.ChunkID)
		}
	}

	if u.Bullet || featureWordRe.MatchString(u.Text) {
		e.addFeature(u)
	} else if e.lastFeature != "" {
		e.extendFeature(u)
	}

	if functionalRe.MatchString(u.Text) {
		e.addRequirement(&e.draft.Functional, u, maxFunctional)
	}
	if containsAny(u.Text, technicalWords) {
		e.addRequirement(&e.draft.Technical, u, maxTechnical)
	}
	if containsAny(u.Text, nonFunctionalWords) {
		e.addRequirement(&e.draft.NonFunctional, u, maxNonFunctional)
	}
}

// observeStory turns a user story into a persona and an interaction.
func (e *extractor) observeStory(u unit, m []string) {
	actor := titleCase(strings.TrimSpace(m[1]))
	action := strings.TrimRight(strings.TrimSpace(m[2]), ".")
	outcome := ""
	if i := strings.Index(strings.ToLower(action), " so that "); i >= 0 {
		outcome = strings.TrimSpace(action[i+len(" so that "):])
		action = strings.TrimSpace(action[:i])
	}
	if actor == "" || action == "" {
		return
	}
	e.addPersona(actor, "", u.ChunkID)
	e.addInteraction(interactionDraft{
		Feature:      e.lastFeature,
		Actor:        actor,
		Action:       action,
		Outcome:      outcome,
		SourceChunks: []string{u.ChunkID},
	})
}

func (e *extractor) setModule(name, chunkID string) {
	name = truncateName(name)
	if name == "" {
		return
	}
	e.currentModule = name
	e.lastFeature = ""
	if i, ok := e.moduleIdx[strings.ToLower(name)]; ok {
		e.draft.Modules[i].SourceChunks = appendUnique(e.draft.Modules[i].SourceChunks, chunkID)
		return
	}
	e.moduleIdx[strings.ToLower(name)] = len(e.draft.Modules)
	e.draft.Modules = append(e.draft.Modules, moduleDraft{
		Name:         name,
		SourceChunks: []string{chunkID},
	})
}

// ensureModule registers the current module on first feature assignment.
// The synthetic default module only materializes when something lands in
// it, so documents with their own headings never see "General".
func (e *extractor) ensureModule(chunkID string) string {
	if _, ok := e.moduleIdx[strings.ToLower(e.currentModule)]; !ok {
		e.moduleIdx[strings.ToLower(e.currentModule)] = len(e.draft.Modules)
		e.draft.Modules = append(e.draft.Modules, moduleDraft{
			Name:         e.currentModule,
			SourceChunks: []string{chunkID},
		})
	}
	return e.currentModule
}

func (e *extractor) addFeature(u unit) {
	title := truncateName(featureTitle(u.Text))
	if title == "" {
		return
	}
	module := e.ensureModule(u.ChunkID)
	key := strings.ToLower(title)
	if i, ok := e.featureIdx[key]; ok {
		f := &e.draft.Features[i]
		f.Notes = appendUnique(f.Notes, u.Text)
		f.SourceChunks = appendUnique(f.SourceChunks, u.ChunkID)
		e.lastFeature = f.Title
		return
	}

	e.featureIdx[key] = len(e.draft.Features)
	e.draft.Features = append(e.draft.Features, featureDraft{
		Title:        title,
		Description:  u.Text,
		Priority:     priorityOf(u.Text),
		Modules:      []string{module},
		Notes:        []string{u.Text},
		SourceChunks: []string{u.ChunkID},
	})
	e.lastFeature = title
	if actionVerbRe.MatchString(u.Text) {
		e.addInteraction(interactionDraft{
			Feature:      title,
			Actor:        "User",
			Action:       strings.TrimRight(u.Text, "."),
			SourceChunks: []string{u.ChunkID},
		})
	}
}

// extendFeature folds a plain sentence into the feature it follows.
func (e *extractor) extendFeature(u unit) {
	i, ok := e.featureIdx[strings.ToLower(e.lastFeature)]
	if !ok {
		return
	}
	f := &e.draft.Features[i]
	f.Notes = appendUnique(f.Notes, u.Text)
	f.SourceChunks = appendUnique(f.SourceChunks, u.ChunkID)
	if f.Priority != "P1" && priorityHighRe.MatchString(u.Text) {
		f.Priority = "P1"
	}
	if actionVerbRe.MatchString(u.Text) {
		e.addInteraction(interactionDraft{
			Feature:      f.Title,
			Actor:        "User",
			Action:       strings.TrimRight(u.Text, "."),
			SourceChunks: []string{u.ChunkID},
		})
	}
}

func (e *extractor) addPersona(name, description, chunkID string) {
	name = truncateName(name)
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	if i, ok := e.personaIdx[key]; ok {
		p := &e.draft.Personas[i]
		if description != "" && !strings.Contains(p.Description, description) {
			p.Description = strings.TrimSpace(p.Description + " " + description)
		}
		p.SourceChunks = appendUnique(p.SourceChunks, chunkID)
		return
	}
	e.personaIdx[key] = len(e.draft.Personas)
	e.draft.Personas = append(e.draft.Personas, personaDraft{
		Name:         name,
		Description:  description,
		SourceChunks: []string{chunkID},
	})
}

// inferPersona falls back to whoever the first sentence says the product
// is for.
func (e *extractor) inferPersona(chunkID string) {
	name := "Primary Persona"
	first := e.sentences[0]
	if i := strings.LastIndex(strings.ToLower(first), " for "); i >= 0 {
		if inferred := titleCase(strings.TrimRight(first[i+len(" for "):], ".!?")); inferred != "" {
			name = inferred
		}
	}
	e.addPersona(name, "", chunkID)
}

func (e *extractor) addInteraction(d interactionDraft) {
	key := strings.ToLower(d.Feature + "\x1f" + d.Actor + "\x1f" + d.Action)
	if e.seenInteraction[key] {
		return
	}
	e.seenInteraction[key] = true
	e.draft.Interactions = append(e.draft.Interactions, d)
}

func (e *extractor) addRequirement(dst *[]requirementDraft, u unit, limit int) {
	if len(*dst) >= limit || e.seenRequirement[strings.ToLower(u.Text)] {
		return
	}
	e.seenRequirement[strings.ToLower(u.Text)] = true
	var features []string
	if e.lastFeature != "" {
		features = []string{e.lastFeature}
	}
	*dst = append(*dst, requirementDraft{
		Text:         u.Text,
		Features:     features,
		SourceChunks: []string{u.ChunkID},
	})
}

func (e *extractor) addQuestion(u unit) {
	if len(e.draft.Questions) >= maxQuestions || e.seenQuestion[strings.ToLower(u.Text)] {
		return
	}
	e.seenQuestion[strings.ToLower(u.Text)] = true
	e.draft.Questions = append(e.draft.Questions, questionDraft{
		Text:         u.Text,
		Category:     questionCategory(u.Text),
		SourceChunks: []string{u.ChunkID},
	})
}

// featureTitle cuts the feature name out of a bullet: the part before a
// colon or dash, else the whole text.
func featureTitle(text string) string {
	if name, _, ok := strings.Cut(text, ":"); ok {
		return titleCase(name)
	}
	if name, _, ok := strings.Cut(text, " - "); ok {
		return titleCase(name)
	}
	return titleCase(strings.TrimRight(text, "."))
}

// allCapsHeading reports whether the unit is a short shouted heading
// such as "PAYMENTS" or "ADMIN AREA".
func allCapsHeading(text string) bool {
	if text != strings.ToUpper(text) || len(strings.Fields(text)) > 4 {
		return false
	}
	return strings.IndexFunc(text, unicode.IsLetter) >= 0
}

// looksLikeHeading reports whether a unit reads as a section heading:
// short, no terminal period, mostly capitalized words.
func looksLikeHeading(text string) bool {
	if text == "" || strings.HasSuffix(text, ".") || strings.HasSuffix(text, "?") {
		return false
	}
	words := strings.Fields(text)
	if len(words) < 2 || len(words) > 10 {
		return false
	}
	capitalized := 0
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsUpper(r) {
			capitalized++
		}
	}
	return float64(capitalized)/float64(len(words)) >= 0.6
}

func priorityOf(text string) string {
	switch {
	case priorityHighRe.MatchString(text):
		return "P1"
	case priorityLowRe.MatchString(text):
		return "P3"
	default:
		return "P2"
	}
}

func questionCategory(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, []string{"who", "persona", "audience", "role"}):
		return "persona_coverage"
	case containsAny(lower, []string{"kpi", "metric", "measure", "target"}):
		return "kpi_details"
	case containsAny(lower, []string{"integrate", "platform", "existing", "stack", "deadline", "budget"}):
		return "context"
	case containsAny(lower, []string{"feature", "scope", "include"}):
		return "feature_gaps"
	default:
		return "other"
	}
}

func containsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// titleCase uppercases the first letter of every word.
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func truncateName(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > maxNameRunes {
		return strings.TrimSpace(string(runes[:maxNameRunes]))
	}
	return s
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

func firstN(list []string, n int) []string {
	if len(list) < n {
		return list
	}
	return list[:n]
}
