package domain

// ChangedEntity pairs the before and after of one modified entity.
type ChangedEntity struct {
	ID     string `json:"id"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// GraphDiff records what a regeneration changed between two versions.
// Entries are entity IDs; Changed carries a short textual before/after
// for each modified entity.
type GraphDiff struct {
	DocID       string          `json:"doc_id"`
	FromVersion int             `json:"from_version"`
	ToVersion   int             `json:"to_version"`
	Section     GraphSection    `json:"section"`
	Added       []string        `json:"added"`
	Removed     []string        `json:"removed"`
	Changed     []ChangedEntity `json:"changed"`
}

// Empty reports whether the regeneration produced no visible change.
func (d *GraphDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffSection compares one section of two graph versions at the entity
// level. Entities are matched by ID; a matched entity whose rendered
// text differs is reported as changed.
func DiffSection(from, to *RequirementGraph, section GraphSection) *GraphDiff {
	d := &GraphDiff{
		DocID:       to.DocID,
		FromVersion: from.Version,
		ToVersion:   to.Version,
		Section:     section,
		Added:       []string{},
		Removed:     []string{},
		Changed:     []ChangedEntity{},
	}

	if section == SectionSummary {
		if from.ExecutiveSummary != to.ExecutiveSummary {
			d.Changed = append(d.Changed, ChangedEntity{
				ID:     "summary",
				Before: from.ExecutiveSummary,
				After:  to.ExecutiveSummary,
			})
		}
		return d
	}

	before := sectionEntities(from, section)
	after := sectionEntities(to, section)

	beforeByID := make(map[string]string, len(before))
	for _, e := range before {
		beforeByID[e.id] = e.text
	}
	afterIDs := make(map[string]bool, len(after))

	for _, e := range after {
		afterIDs[e.id] = true
		prev, ok := beforeByID[e.id]
		if !ok {
			d.Added = append(d.Added, e.id)
			continue
		}
		if prev != e.text {
			d.Changed = append(d.Changed, ChangedEntity{ID: e.id, Before: prev, After: e.text})
		}
	}
	for _, e := range before {
		if !afterIDs[e.id] {
			d.Removed = append(d.Removed, e.id)
		}
	}
	return d
}

// DiffAll diffs every section of two graph versions, returning only
// sections with visible changes, in canonical section order.
func DiffAll(from, to *RequirementGraph) []GraphDiff {
	var out []GraphDiff
	for _, sec := range GraphSections() {
		if d := DiffSection(from, to, sec); !d.Empty() {
			out = append(out, *d)
		}
	}
	return out
}

// diffEntity is one entity's identity and rendered text for diffing.
type diffEntity struct {
	id   string
	text string
}

// sectionEntities renders the entities of one graph section into
// comparable (id, text) pairs, in graph order.
func sectionEntities(g *RequirementGraph, section GraphSection) []diffEntity {
	var out []diffEntity
	switch section {
	case SectionPersonas:
		for _, p := range g.Personas {
			out = append(out, diffEntity{p.ID, p.Name + ": " + p.Description})
		}
	case SectionModules:
		for _, m := range g.Modules {
			out = append(out, diffEntity{m.ID, m.Name + ": " + m.Description})
		}
	case SectionFeatures:
		for _, f := range g.Features {
			out = append(out, diffEntity{f.ID, string(f.Priority) + " " + f.Title + ": " + f.Description})
		}
	case SectionInteractions:
		for _, x := range g.Interactions {
			out = append(out, diffEntity{x.ID, x.Actor + " " + x.Action + " -> " + x.Outcome})
		}
	case SectionFunctional:
		for _, r := range g.FunctionalRequirements {
			out = append(out, diffEntity{r.ID, r.Text})
		}
	case SectionTechnical:
		for _, r := range g.TechnicalRequirements {
			out = append(out, diffEntity{r.ID, r.Text})
		}
	case SectionNonFunctional:
		for _, r := range g.NonFunctionalRequirements {
			out = append(out, diffEntity{r.ID, r.Text})
		}
	case SectionQuestions:
		for _, q := range g.Questions {
			out = append(out, diffEntity{q.ID, string(q.Status) + " " + q.Text})
		}
	}
	return out
}
