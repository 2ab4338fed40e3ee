package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// assemble normalizes a parsed draft into a graph version: content-
// addressed IDs, name references resolved to entity IDs, module names
// canonicalized, dependency cycles broken.
func (b *GraphBuilder) assemble(
	doc *domain.Document,
	chunks []domain.Chunk,
	draft *graphDraft,
	clarifications []domain.Clarification,
	version, parentVersion int,
) (*domain.RequirementGraph, []domain.Issue) {
	a := newGraphAssembler(doc.Domain, b.loadTaxonomy(), chunks)

	g := &domain.RequirementGraph{
		GraphID:          domain.GraphVersionID(doc.ID, version),
		DocID:            doc.ID,
		Version:          version,
		ParentVersion:    parentVersion,
		Domain:           doc.Domain,
		ExecutiveSummary: strings.TrimSpace(draft.ExecutiveSummary),
		CreatedAt:        time.Now(),
	}
	g.Personas = a.personas(draft.Personas)
	g.Modules = a.modules(draft.Modules)
	g.Features = a.features(draft.Features)
	g.Interactions = a.interactions(draft.Interactions)
	g.FunctionalRequirements = a.requirements(draft.Functional, domain.RequirementFunctional)
	g.TechnicalRequirements = a.requirements(draft.Technical, domain.RequirementTechnical)
	g.NonFunctionalRequirements = a.requirements(draft.NonFunctional, domain.RequirementNonFunctional)
	g.Questions = a.questions(draft.Questions, clarifications)
	a.breakDependencyCycles(g.Features)

	return g, a.takeIssues()
}

// graphAssembler carries the normalization state for one graph: the
// known chunk IDs, name-to-ID resolution maps, ID collision counters
// and the issues produced along the way.
type graphAssembler struct {
	domainLabel string
	taxonomy    *domain.Taxonomy
	chunkIDs    map[string]bool
	idCounts    map[string]int
	issues      []domain.Issue

	personaIDs map[string]string
	moduleIDs  map[string]string
	featureIDs map[string]string
}

func newGraphAssembler(domainLabel string, tax *domain.Taxonomy, chunks []domain.Chunk) *graphAssembler {
	chunkIDs := make(map[string]bool, len(chunks))
	for i := range chunks {
		chunkIDs[chunks[i].ID] = true
	}
	return &graphAssembler{
		domainLabel: domainLabel,
		taxonomy:    tax,
		chunkIDs:    chunkIDs,
		idCounts:    make(map[string]int),
		personaIDs:  make(map[string]string),
		moduleIDs:   make(map[string]string),
		featureIDs:  make(map[string]string),
	}
}

// seedFromGraph fills the name resolution maps from an existing graph,
// skipping the section about to be replaced. Section rebuilds resolve
// cross-section references against the carried-over entities.
func (a *graphAssembler) seedFromGraph(g *domain.RequirementGraph, replacing domain.GraphSection) {
	if replacing != domain.SectionPersonas {
		for i := range g.Personas {
			a.noteName(a.personaIDs, g.Personas[i].Name, g.Personas[i].ID)
		}
	}
	if replacing != domain.SectionModules {
		for i := range g.Modules {
			a.noteName(a.moduleIDs, g.Modules[i].Name, g.Modules[i].ID)
		}
	}
	if replacing != domain.SectionFeatures {
		for i := range g.Features {
			a.noteName(a.featureIDs, g.Features[i].Title, g.Features[i].ID)
		}
	}
}

func (a *graphAssembler) takeIssues() []domain.Issue {
	return a.issues
}

func (a *graphAssembler) personas(drafts []personaDraft) []domain.Persona {
	out := make([]domain.Persona, 0, len(drafts))
	for _, d := range drafts {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		src := a.knownChunks(d.SourceChunks)
		id := a.entityID(domain.KindPersona, name, firstID(src))
		a.noteName(a.personaIDs, name, id)
		out = append(out, domain.Persona{
			ID:           id,
			Name:         name,
			Description:  strings.TrimSpace(d.Description),
			Goals:        cleanList(d.Goals),
			SourceChunks: src,
		})
	}
	return out
}

// modules canonicalizes names against the domain taxonomy. Draft
// modules landing on the same canonical name merge into one module,
// pooling their source chunks.
func (a *graphAssembler) modules(drafts []moduleDraft) []domain.Module {
	out := make([]domain.Module, 0, len(drafts))
	pos := make(map[string]int, len(drafts))
	for _, d := range drafts {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		canon := a.taxonomy.Canonicalize(a.domainLabel, name)
		key := domain.NormalizeEntityName(canon)
		src := a.knownChunks(d.SourceChunks)

		if i, ok := pos[key]; ok {
			out[i].SourceChunks = appendMissing(out[i].SourceChunks, src)
			if out[i].Description == "" {
				out[i].Description = strings.TrimSpace(d.Description)
			}
			continue
		}

		id := a.entityID(domain.KindModule, canon, firstID(src))
		pos[key] = len(out)
		a.moduleIDs[key] = id
		out = append(out, domain.Module{
			ID:           id,
			Name:         canon,
			Description:  strings.TrimSpace(d.Description),
			SourceChunks: src,
		})
	}
	return out
}

func (a *graphAssembler) features(drafts []featureDraft) []domain.Feature {
	out := make([]domain.Feature, 0, len(drafts))
	kept := make([]featureDraft, 0, len(drafts))
	for _, d := range drafts {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			continue
		}
		src := a.knownChunks(d.SourceChunks)
		id := a.entityID(domain.KindFeature, title, firstID(src))
		a.noteName(a.featureIDs, title, id)

		f := domain.Feature{
			ID:           id,
			Title:        title,
			Description:  strings.TrimSpace(d.Description),
			Priority:     domain.ParsePriority(d.Priority),
			Notes:        cleanList(d.Notes),
			SourceChunks: src,
		}
		f.Personas = a.resolveRefs(d.Personas, a.personaIDs, id)
		f.Modules = a.resolveModules(d.Modules, id)
		out = append(out, f)
		kept = append(kept, d)
	}

	// Dependencies resolve in a second pass so forward references to
	// features declared later in the draft still land.
	for i := range out {
		out[i].Dependencies = a.resolveRefs(kept[i].Dependencies, a.featureIDs, out[i].ID)
	}
	return out
}

func (a *graphAssembler) interactions(drafts []interactionDraft) []domain.Interaction {
	out := make([]domain.Interaction, 0, len(drafts))
	for _, d := range drafts {
		actor := strings.TrimSpace(d.Actor)
		action := strings.TrimSpace(d.Action)
		if actor == "" || action == "" {
			continue
		}
		outcome := strings.TrimSpace(d.Outcome)
		src := a.knownChunks(d.SourceChunks)
		id := a.entityID(domain.KindInteraction, actor+" "+action+" "+outcome, firstID(src))

		x := domain.Interaction{
			ID:           id,
			Actor:        actor,
			Action:       action,
			Outcome:      outcome,
			SourceChunks: src,
		}
		if key := domain.NormalizeEntityName(d.Feature); key != "" {
			if fid, ok := a.featureIDs[key]; ok {
				x.FeatureID = fid
			} else {
				a.danglingRef(id, d.Feature)
			}
		}
		out = append(out, x)
	}
	return out
}

func (a *graphAssembler) requirements(drafts []requirementDraft, kind domain.RequirementKind) []domain.Requirement {
	out := make([]domain.Requirement, 0, len(drafts))
	for _, d := range drafts {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		src := a.knownChunks(d.SourceChunks)
		id := a.entityID(domain.KindRequirement, text, firstID(src))
		r := domain.Requirement{
			ID:           id,
			Kind:         kind,
			Text:         text,
			SourceChunks: src,
		}
		r.Features = a.resolveRefs(d.Features, a.featureIDs, id)
		out = append(out, r)
	}
	return out
}

// questions materializes clarifications first, then generated questions
// deduplicated against them by normalized text. A clarification with a
// caller answer becomes an answered question; an expired one stays open
// carrying its recorded assumption as the suggested answer.
func (a *graphAssembler) questions(drafts []questionDraft, clarifications []domain.Clarification) []domain.Question {
	out := make([]domain.Question, 0, len(drafts)+len(clarifications))
	seen := make(map[string]bool, len(drafts)+len(clarifications))

	for i := range clarifications {
		c := &clarifications[i]
		key := domain.NormalizeEntityName(c.Question)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		q := domain.Question{
			ID:              a.entityID(domain.KindQuestion, c.Question, ""),
			Text:            c.Question,
			Category:        c.Category,
			Status:          domain.QuestionOpen,
			SuggestedAnswer: c.SuggestedAnswer,
		}
		if c.Status == domain.ClarificationAnswered && c.Answer != "" {
			q.Status = domain.QuestionAnswered
			q.Answer = c.Answer
		}
		out = append(out, q)
	}

	for _, d := range drafts {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		key := domain.NormalizeEntityName(text)
		if seen[key] {
			continue
		}
		seen[key] = true

		src := a.knownChunks(d.SourceChunks)
		out = append(out, domain.Question{
			ID:              a.entityID(domain.KindQuestion, text, firstID(src)),
			Text:            text,
			Category:        domain.ParseQuestionCategory(d.Category),
			Status:          domain.QuestionOpen,
			SuggestedAnswer: strings.TrimSpace(d.SuggestedAnswer),
			SourceChunks:    src,
		})
	}
	return out
}

// breakDependencyCycles walks feature dependencies depth-first with
// three colors. An edge onto a grey node would close a cycle: the edge
// is dropped and recorded as a contradiction issue. Visiting follows
// insertion order, so which edge of a cycle loses is deterministic.
func (a *graphAssembler) breakDependencyCycles(features []domain.Feature) {
	const (
		white = iota
		grey
		black
	)
	index := make(map[string]int, len(features))
	for i := range features {
		index[features[i].ID] = i
	}
	color := make(map[string]int, len(features))

	var visit func(id string)
	visit = func(id string) {
		color[id] = grey
		f := &features[index[id]]
		kept := f.Dependencies[:0]
		for _, dep := range f.Dependencies {
			j, ok := index[dep]
			if !ok {
				continue
			}
			switch color[dep] {
			case grey:
				a.cycleIssue(f, &features[j])
				continue
			case white:
				visit(dep)
			}
			kept = append(kept, dep)
		}
		f.Dependencies = kept
		color[id] = black
	}

	for i := range features {
		if color[features[i].ID] == white {
			visit(features[i].ID)
		}
	}
}

// scrubReferences drops references to entity IDs no longer present in
// the graph. Only section rebuilds need this: replacing a section can
// orphan references held by the carried-over sections.
func (a *graphAssembler) scrubReferences(g *domain.RequirementGraph) {
	personas := make(map[string]bool, len(g.Personas))
	for i := range g.Personas {
		personas[g.Personas[i].ID] = true
	}
	modules := make(map[string]bool, len(g.Modules))
	for i := range g.Modules {
		modules[g.Modules[i].ID] = true
	}
	features := make(map[string]bool, len(g.Features))
	for i := range g.Features {
		features[g.Features[i].ID] = true
	}

	for i := range g.Features {
		f := &g.Features[i]
		f.Personas = a.keepKnown(f.Personas, personas, f.ID)
		f.Modules = a.keepKnown(f.Modules, modules, f.ID)
		f.Dependencies = a.keepKnown(f.Dependencies, features, f.ID)
	}
	for i := range g.Interactions {
		x := &g.Interactions[i]
		if x.FeatureID != "" && !features[x.FeatureID] {
			a.danglingRef(x.ID, x.FeatureID)
			x.FeatureID = ""
		}
	}
	for _, reqs := range [][]domain.Requirement{
		g.FunctionalRequirements, g.TechnicalRequirements, g.NonFunctionalRequirements,
	} {
		for i := range reqs {
			reqs[i].Features = a.keepKnown(reqs[i].Features, features, reqs[i].ID)
		}
	}
}

func (a *graphAssembler) keepKnown(refs []string, known map[string]bool, ownerID string) []string {
	kept := refs[:0]
	for _, id := range refs {
		if !known[id] {
			a.danglingRef(ownerID, id)
			continue
		}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// entityID derives the content-addressed ID, suffixing -2, -3 and so on
// when the same derivation repeats within this graph.
func (a *graphAssembler) entityID(kind domain.EntityKind, name, firstChunk string) string {
	id := domain.EntityID(kind, name, firstChunk)
	a.idCounts[id]++
	if n := a.idCounts[id]; n > 1 {
		return fmt.Sprintf("%s-%d", id, n)
	}
	return id
}

// resolveRefs maps entity names onto IDs, dropping unresolvable names
// with a dangling-reference issue and deduplicating the result.
func (a *graphAssembler) resolveRefs(names []string, ids map[string]string, ownerID string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := domain.NormalizeEntityName(name)
		if key == "" {
			continue
		}
		id, ok := ids[key]
		if !ok {
			a.danglingRef(ownerID, name)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// resolveModules canonicalizes each referenced name before resolving,
// so a feature referring to a synonym still lands on the module.
func (a *graphAssembler) resolveModules(names []string, ownerID string) []string {
	canon := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		canon = append(canon, a.taxonomy.Canonicalize(a.domainLabel, name))
	}
	return a.resolveRefs(canon, a.moduleIDs, ownerID)
}

// knownChunks keeps the source chunk IDs that exist in this document,
// deduplicated, preserving order. Unknown markers are dropped quietly.
func (a *graphAssembler) knownChunks(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] || !a.chunkIDs[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *graphAssembler) noteName(ids map[string]string, name, id string) {
	key := domain.NormalizeEntityName(name)
	if key != "" && ids[key] == "" {
		ids[key] = id
	}
}

func (a *graphAssembler) danglingRef(ownerID, ref string) {
	a.issues = append(a.issues, domain.Issue{
		IssueID:         domain.IssueID(domain.IssueDanglingReference, ownerID, domain.NormalizeEntityName(ref)),
		Type:            domain.IssueDanglingReference,
		Severity:        domain.SeverityLow,
		Summary:         fmt.Sprintf("Dropped reference to unknown entity %q", ref),
		RelatedEntities: []string{ownerID},
		Recommendation:  "Add the missing entity or regenerate the referencing section.",
	})
}

func (a *graphAssembler) cycleIssue(from, to *domain.Feature) {
	a.issues = append(a.issues, domain.Issue{
		IssueID:         domain.IssueID(domain.IssueContradiction, from.ID, to.ID),
		Type:            domain.IssueContradiction,
		Severity:        domain.SeverityHigh,
		Summary:         fmt.Sprintf("Dependency from %q to %q closes a cycle and was dropped", from.Title, to.Title),
		RelatedEntities: []string{from.ID, to.ID},
		Recommendation:  "Break the cycle by removing or inverting one of the dependencies.",
	})
}

func firstID(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func appendMissing(dst, add []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range add {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}
