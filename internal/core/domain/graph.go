package domain

import (
	"fmt"
	"time"
)

// Priority ranks a feature for delivery. P1 sorts before P2 before P3.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Rank returns the sort weight of the priority, lower first.
// Unknown values rank after P3 so they never jump the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityP1:
		return 0
	case PriorityP2:
		return 1
	case PriorityP3:
		return 2
	}
	return 3
}

// ParsePriority normalizes a priority string, defaulting to P2.
func ParsePriority(s string) Priority {
	switch s {
	case "P1", "p1", "1":
		return PriorityP1
	case "P3", "p3", "3":
		return PriorityP3
	default:
		return PriorityP2
	}
}

// RequirementKind distinguishes the three requirement lists.
type RequirementKind string

const (
	RequirementFunctional    RequirementKind = "functional"
	RequirementTechnical     RequirementKind = "technical"
	RequirementNonFunctional RequirementKind = "non_functional"
)

// QuestionCategory classifies an open question by what it would unblock.
type QuestionCategory string

const (
	QuestionPersonaCoverage QuestionCategory = "persona_coverage"
	QuestionFeatureGaps     QuestionCategory = "feature_gaps"
	QuestionKPIDetails      QuestionCategory = "kpi_details"
	QuestionContext         QuestionCategory = "context"
	QuestionOther           QuestionCategory = "other"
)

// ParseQuestionCategory maps free-form category strings onto the known
// set, falling back to QuestionOther.
func ParseQuestionCategory(s string) QuestionCategory {
	switch QuestionCategory(s) {
	case QuestionPersonaCoverage, QuestionFeatureGaps, QuestionKPIDetails, QuestionContext:
		return QuestionCategory(s)
	}
	return QuestionOther
}

// QuestionStatus tracks whether an open question has been resolved.
type QuestionStatus string

const (
	QuestionOpen      QuestionStatus = "open"
	QuestionAnswered  QuestionStatus = "answered"
	QuestionDismissed QuestionStatus = "dismissed"
)

// Persona is a user archetype extracted from the source text.
type Persona struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Goals        []string `json:"goals,omitempty"`
	SourceChunks []string `json:"source_chunks,omitempty"`
}

// Module is a coarse product area grouping features.
// Module order in the graph is insertion order and is load-bearing:
// exports iterate modules in this order.
type Module struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	SourceChunks []string `json:"source_chunks,omitempty"`
}

// Feature is a unit of product capability.
type Feature struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Priority     Priority `json:"priority"`
	Personas     []string `json:"personas,omitempty"`
	Modules      []string `json:"modules,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Notes        []string `json:"notes,omitempty"`
	SourceChunks []string `json:"source_chunks,omitempty"`
}

// Interaction describes one actor/action/outcome flow attached to a feature.
type Interaction struct {
	ID           string   `json:"id"`
	FeatureID    string   `json:"feature_id,omitempty"`
	Actor        string   `json:"actor"`
	Action       string   `json:"action"`
	Outcome      string   `json:"outcome,omitempty"`
	SourceChunks []string `json:"source_chunks,omitempty"`
}

// Requirement is a single functional, technical or non-functional statement.
type Requirement struct {
	ID           string          `json:"id"`
	Kind         RequirementKind `json:"kind"`
	Text         string          `json:"text"`
	Features     []string        `json:"features,omitempty"`
	SourceChunks []string        `json:"source_chunks,omitempty"`
}

// Question is an open question surfaced during interpretation.
// Answer is only ever filled from an explicit caller answer; the
// pipeline never promotes SuggestedAnswer into Answer on its own.
type Question struct {
	ID              string           `json:"id"`
	Text            string           `json:"text"`
	Category        QuestionCategory `json:"category"`
	Status          QuestionStatus   `json:"status"`
	Answer          string           `json:"answer,omitempty"`
	SuggestedAnswer string           `json:"suggested_answer,omitempty"`
	SourceChunks    []string         `json:"source_chunks,omitempty"`
}

// RequirementGraph is one immutable version of the structured
// interpretation of a document. Versions are strictly increasing per
// document; each version's parent is the prior version (0 for v1).
type RequirementGraph struct {
	GraphID          string `json:"graph_id"`
	DocID            string `json:"doc_id"`
	Version          int    `json:"version"`
	ParentVersion    int    `json:"parent_version"`
	Domain           string `json:"domain"`
	ExecutiveSummary string `json:"executive_summary,omitempty"`

	Personas                  []Persona     `json:"personas"`
	Modules                   []Module      `json:"modules"`
	Features                  []Feature     `json:"features"`
	Interactions              []Interaction `json:"interactions"`
	FunctionalRequirements    []Requirement `json:"functional_requirements"`
	TechnicalRequirements     []Requirement `json:"technical_requirements"`
	NonFunctionalRequirements []Requirement `json:"non_functional_requirements"`
	Questions                 []Question    `json:"questions"`

	ConfidenceScore float64           `json:"confidence_score"`
	Validation      *ValidationReport `json:"validation,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// FindPersona returns the persona with the given ID, or nil.
func (g *RequirementGraph) FindPersona(id string) *Persona {
	for i := range g.Personas {
		if g.Personas[i].ID == id {
			return &g.Personas[i]
		}
	}
	return nil
}

// FindModule returns the module with the given ID, or nil.
func (g *RequirementGraph) FindModule(id string) *Module {
	for i := range g.Modules {
		if g.Modules[i].ID == id {
			return &g.Modules[i]
		}
	}
	return nil
}

// FindFeature returns the feature with the given ID, or nil.
func (g *RequirementGraph) FindFeature(id string) *Feature {
	for i := range g.Features {
		if g.Features[i].ID == id {
			return &g.Features[i]
		}
	}
	return nil
}

// FindQuestion returns the question with the given ID, or nil.
func (g *RequirementGraph) FindQuestion(id string) *Question {
	for i := range g.Questions {
		if g.Questions[i].ID == id {
			return &g.Questions[i]
		}
	}
	return nil
}

// AllRequirements returns functional, technical and non-functional
// requirements as one slice, in that order.
func (g *RequirementGraph) AllRequirements() []Requirement {
	out := make([]Requirement, 0,
		len(g.FunctionalRequirements)+len(g.TechnicalRequirements)+len(g.NonFunctionalRequirements))
	out = append(out, g.FunctionalRequirements...)
	out = append(out, g.TechnicalRequirements...)
	out = append(out, g.NonFunctionalRequirements...)
	return out
}

// Clone returns a deep copy of the graph. Regeneration works on a
// clone so committed versions are never mutated.
func (g *RequirementGraph) Clone() *RequirementGraph {
	out := *g
	out.Personas = clonePersonas(g.Personas)
	out.Modules = cloneModules(g.Modules)
	out.Features = cloneFeatures(g.Features)
	out.Interactions = cloneInteractions(g.Interactions)
	out.FunctionalRequirements = cloneRequirements(g.FunctionalRequirements)
	out.TechnicalRequirements = cloneRequirements(g.TechnicalRequirements)
	out.NonFunctionalRequirements = cloneRequirements(g.NonFunctionalRequirements)
	out.Questions = cloneQuestions(g.Questions)
	if g.Validation != nil {
		v := g.Validation.Clone()
		out.Validation = v
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func clonePersonas(in []Persona) []Persona {
	if in == nil {
		return nil
	}
	out := make([]Persona, len(in))
	for i, p := range in {
		p.Goals = cloneStrings(p.Goals)
		p.SourceChunks = cloneStrings(p.SourceChunks)
		out[i] = p
	}
	return out
}

func cloneModules(in []Module) []Module {
	if in == nil {
		return nil
	}
	out := make([]Module, len(in))
	for i, m := range in {
		m.SourceChunks = cloneStrings(m.SourceChunks)
		out[i] = m
	}
	return out
}

func cloneFeatures(in []Feature) []Feature {
	if in == nil {
		return nil
	}
	out := make([]Feature, len(in))
	for i, f := range in {
		f.Personas = cloneStrings(f.Personas)
		f.Modules = cloneStrings(f.Modules)
		f.Dependencies = cloneStrings(f.Dependencies)
		f.Notes = cloneStrings(f.Notes)
		f.SourceChunks = cloneStrings(f.SourceChunks)
		out[i] = f
	}
	return out
}

func cloneInteractions(in []Interaction) []Interaction {
	if in == nil {
		return nil
	}
	out := make([]Interaction, len(in))
	for i, x := range in {
		x.SourceChunks = cloneStrings(x.SourceChunks)
		out[i] = x
	}
	return out
}

func cloneRequirements(in []Requirement) []Requirement {
	if in == nil {
		return nil
	}
	out := make([]Requirement, len(in))
	for i, r := range in {
		r.Features = cloneStrings(r.Features)
		r.SourceChunks = cloneStrings(r.SourceChunks)
		out[i] = r
	}
	return out
}

func cloneQuestions(in []Question) []Question {
	if in == nil {
		return nil
	}
	out := make([]Question, len(in))
	for i, q := range in {
		q.SourceChunks = cloneStrings(q.SourceChunks)
		out[i] = q
	}
	return out
}

// GraphSection names one regenerable subsection of the graph.
type GraphSection string

const (
	SectionSummary       GraphSection = "summary"
	SectionPersonas      GraphSection = "personas"
	SectionModules       GraphSection = "modules"
	SectionFeatures      GraphSection = "features"
	SectionInteractions  GraphSection = "interactions"
	SectionFunctional    GraphSection = "functional"
	SectionTechnical     GraphSection = "technical"
	SectionNonFunctional GraphSection = "non_functional"
	SectionQuestions     GraphSection = "questions"
)

// GraphSections lists all regenerable sections in canonical order.
func GraphSections() []GraphSection {
	return []GraphSection{
		SectionSummary, SectionPersonas, SectionModules, SectionFeatures,
		SectionInteractions, SectionFunctional, SectionTechnical,
		SectionNonFunctional, SectionQuestions,
	}
}

// ParseGraphSection validates a section name.
func ParseGraphSection(s string) (GraphSection, error) {
	for _, sec := range GraphSections() {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: unknown section %q", ErrInvalidInput, s)
}
