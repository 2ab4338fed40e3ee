package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/vectors"
)

// GraphValidator checks a graph version for coverage gaps, orphans,
// near-duplicates and contradictions. Validation describes the graph
// and never mutates it, and it never fails: when the embedder is down,
// the embedding-based checks are skipped with a warning.
type GraphValidator struct {
	embedder driven.EmbeddingService
	settings domain.PipelineSettings
}

// NewGraphValidator creates a new graph validator.
func NewGraphValidator(embedder driven.EmbeddingService, settings domain.PipelineSettings) *GraphValidator {
	return &GraphValidator{
		embedder: embedder,
		settings: settings,
	}
}

// Validate runs every check over the graph and folds in extra issues
// recorded earlier in the pipeline (dropped references, rejected cycle
// edges). Issues are deduplicated by ID and ordered by severity, so
// re-validating an unchanged graph yields an identical report.
func (v *GraphValidator) Validate(
	ctx context.Context, graph *domain.RequirementGraph, extra []domain.Issue,
) *domain.ValidationReport {
	var issues []domain.Issue
	issues = append(issues, v.personaCoverageIssues(graph)...)
	issues = append(issues, v.orphanFeatureIssues(graph)...)
	issues = append(issues, v.duplicateIssues(ctx, "Features", featureCandidates(graph))...)
	issues = append(issues, v.duplicateIssues(ctx, "Requirements", requirementCandidates(graph))...)
	issues = append(issues, v.contradictionIssues(graph)...)
	issues = append(issues, extra...)

	issues = dedupeIssues(issues)
	sort.Slice(issues, func(i, j int) bool {
		ri, rj := severityRank(issues[i].Severity), severityRank(issues[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return issues[i].IssueID < issues[j].IssueID
	})
	if issues == nil {
		issues = []domain.Issue{}
	}

	score := confidenceScore(graph, issues)
	return &domain.ValidationReport{
		GraphID:         graph.GraphID,
		Version:         graph.Version,
		Issues:          issues,
		ConfidenceScore: score,
		Status:          reportStatus(issues, score),
		CheckedAt:       time.Now(),
	}
}

// personaCoverageIssues flags personas no feature serves and features
// serving no persona. Skipped entirely when the graph has no personas.
func (v *GraphValidator) personaCoverageIssues(g *domain.RequirementGraph) []domain.Issue {
	if len(g.Personas) == 0 {
		return nil
	}

	referenced := make(map[string]bool)
	for i := range g.Features {
		for _, pid := range g.Features[i].Personas {
			referenced[pid] = true
		}
	}

	var issues []domain.Issue
	for i := range g.Personas {
		p := &g.Personas[i]
		if referenced[p.ID] {
			continue
		}
		issues = append(issues, domain.Issue{
			IssueID:         domain.IssueID(domain.IssuePersonaUncovered, p.ID),
			Type:            domain.IssuePersonaUncovered,
			Severity:        domain.SeverityMedium,
			Summary:         fmt.Sprintf("Persona %q is referenced by no feature", p.Name),
			RelatedEntities: []string{p.ID},
			Recommendation:  "Map at least one feature to the persona or remove it.",
		})
	}
	for i := range g.Features {
		f := &g.Features[i]
		if len(f.Personas) > 0 {
			continue
		}
		issues = append(issues, domain.Issue{
			IssueID:         domain.IssueID(domain.IssuePersonaUncovered, f.ID),
			Type:            domain.IssuePersonaUncovered,
			Severity:        domain.SeverityMedium,
			Summary:         fmt.Sprintf("Feature %q references no persona", f.Title),
			RelatedEntities: []string{f.ID},
			Recommendation:  "Attach the personas this feature serves.",
		})
	}
	return issues
}

func (v *GraphValidator) orphanFeatureIssues(g *domain.RequirementGraph) []domain.Issue {
	var issues []domain.Issue
	for i := range g.Features {
		f := &g.Features[i]
		if len(f.Modules) > 0 {
			continue
		}
		issues = append(issues, domain.Issue{
			IssueID:         domain.IssueID(domain.IssueOrphanFeature, f.ID),
			Type:            domain.IssueOrphanFeature,
			Severity:        domain.SeverityHigh,
			Summary:         fmt.Sprintf("Feature %q is mapped to no module", f.Title),
			RelatedEntities: []string{f.ID},
			Recommendation:  "Assign the feature to a module.",
		})
	}
	return issues
}

// dupCandidate is one entry in a near-duplicate scan.
type dupCandidate struct {
	id    string
	text  string
	label string
}

func featureCandidates(g *domain.RequirementGraph) []dupCandidate {
	out := make([]dupCandidate, 0, len(g.Features))
	for i := range g.Features {
		f := &g.Features[i]
		out = append(out, dupCandidate{id: f.ID, text: f.Title, label: f.Title})
	}
	return out
}

func requirementCandidates(g *domain.RequirementGraph) []dupCandidate {
	reqs := g.AllRequirements()
	out := make([]dupCandidate, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, dupCandidate{id: r.ID, text: r.Text, label: domain.TrimExcerpt(r.Text, 60)})
	}
	return out
}

// duplicateIssues embeds the candidate texts and flags pairs whose
// cosine similarity reaches the duplicate threshold. An embedding
// failure skips the check rather than failing validation.
func (v *GraphValidator) duplicateIssues(ctx context.Context, noun string, items []dupCandidate) []domain.Issue {
	if len(items) < 2 || v.embedder == nil {
		return nil
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.text
	}
	vecs, err := v.embedAll(ctx, texts)
	if err != nil {
		logger.Warn("Near-duplicate detection over %s skipped: %v", strings.ToLower(noun), err)
		return nil
	}

	var issues []domain.Issue
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sim := vectors.Cosine(vecs[i], vecs[j])
			if sim < v.settings.DuplicateThreshold {
				continue
			}
			issues = append(issues, domain.Issue{
				IssueID:  domain.IssueID(domain.IssueDuplicate, items[i].id, items[j].id),
				Type:     domain.IssueDuplicate,
				Severity: domain.SeverityMedium,
				Summary: fmt.Sprintf("%s %q and %q are near-duplicates (similarity %.2f)",
					noun, items[i].label, items[j].label, sim),
				RelatedEntities: []string{items[i].id, items[j].id},
				Recommendation:  "Merge the duplicates into one entry.",
			})
		}
	}
	return issues
}

// embedAll embeds texts in configured batch sizes under the embed timeout.
func (v *GraphValidator) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	batch := v.settings.EmbedBatchSize
	if batch <= 0 {
		batch = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batch {
		end := min(start+batch, len(texts))
		callCtx, cancel := capabilityTimeout(ctx, v.settings.EmbedTimeout)
		vecs, err := v.embedder.EmbedBatch(callCtx, texts[start:end])
		cancel()
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// contradictionIssues pairs requirements that share a normalized subject
// key with opposite polarity: "must"/"must not", "shall"/"shall not",
// "always"/"never".
func (v *GraphValidator) contradictionIssues(g *domain.RequirementGraph) []domain.Issue {
	type statement struct {
		id       string
		text     string
		negative bool
	}

	var issues []domain.Issue
	seen := make(map[string][]statement)
	for _, r := range g.AllRequirements() {
		key, negative, ok := contradictionKey(r.Text)
		if !ok || key == "" {
			continue
		}
		cur := statement{id: r.ID, text: r.Text, negative: negative}
		for _, prev := range seen[key] {
			if prev.negative == cur.negative {
				continue
			}
			issues = append(issues, domain.Issue{
				IssueID:  domain.IssueID(domain.IssueContradiction, prev.id, cur.id),
				Type:     domain.IssueContradiction,
				Severity: domain.SeverityHigh,
				Summary: fmt.Sprintf("Requirements %q and %q contradict each other",
					domain.TrimExcerpt(prev.text, 60), domain.TrimExcerpt(cur.text, 60)),
				RelatedEntities: []string{prev.id, cur.id},
				Recommendation:  "Decide which statement stands and remove the other.",
			})
		}
		seen[key] = append(seen[key], cur)
	}
	return issues
}

// contradictionKey strips the first polarity marker from a requirement
// and returns the normalized remainder as the subject key. Requirements
// without a marker take no part in contradiction detection.
func contradictionKey(text string) (key string, negative, ok bool) {
	padded := " " + strings.ToLower(text) + " "
	for _, p := range []struct{ neg, pos string }{
		{" must not ", " must "},
		{" shall not ", " shall "},
		{" never ", " always "},
	} {
		if strings.Contains(padded, p.neg) {
			return domain.NormalizeEntityName(strings.Replace(padded, p.neg, " ", 1)), true, true
		}
		if strings.Contains(padded, p.pos) {
			return domain.NormalizeEntityName(strings.Replace(padded, p.pos, " ", 1)), false, true
		}
	}
	return "", false, false
}

// confidenceScore applies the per-severity penalties, floors at zero,
// and scales by the fraction of requirements carrying at least one
// source chunk reference.
func confidenceScore(g *domain.RequirementGraph, issues []domain.Issue) float64 {
	score := 1.0
	for _, is := range issues {
		score -= is.Severity.Penalty()
	}
	if score < 0 {
		score = 0
	}

	reqs := g.AllRequirements()
	if len(reqs) == 0 {
		return score
	}
	covered := 0
	for _, r := range reqs {
		if len(r.SourceChunks) > 0 {
			covered++
		}
	}
	return score * (float64(covered) / float64(len(reqs)))
}

func reportStatus(issues []domain.Issue, score float64) domain.ReportStatus {
	medium := false
	for _, is := range issues {
		switch is.Severity {
		case domain.SeverityHigh:
			return domain.ReportFail
		case domain.SeverityMedium:
			medium = true
		}
	}
	if medium || score < domain.WarnScoreThreshold {
		return domain.ReportWarn
	}
	return domain.ReportPass
}

func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityHigh:
		return 0
	case domain.SeverityMedium:
		return 1
	case domain.SeverityLow:
		return 2
	}
	return 3
}

func dedupeIssues(issues []domain.Issue) []domain.Issue {
	out := issues[:0]
	seen := make(map[string]bool, len(issues))
	for _, is := range issues {
		if seen[is.IssueID] {
			continue
		}
		seen[is.IssueID] = true
		out = append(out, is)
	}
	return out
}
