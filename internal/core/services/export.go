package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService projects graph versions into tabular artifacts.
//
// The projection is a pure function of the graph version; rendering into
// a container format never changes the rows or the checksum. Artifacts
// are immutable: re-exporting a version returns the stored artifact.
type ExportService struct {
	graphStore    driven.GraphStore
	artifactStore driven.ArtifactStore
	renderers     map[domain.ExportType]driven.ExportRenderer
	bus           driven.EventBus
}

// NewExportService creates a new export service.
func NewExportService(
	graphStore driven.GraphStore,
	artifactStore driven.ArtifactStore,
	renderers []driven.ExportRenderer,
	bus driven.EventBus,
) *ExportService {
	byType := make(map[domain.ExportType]driven.ExportRenderer, len(renderers))
	for _, r := range renderers {
		byType[r.Type()] = r
	}
	return &ExportService{
		graphStore:    graphStore,
		artifactStore: artifactStore,
		renderers:     byType,
		bus:           bus,
	}
}

// Export produces the artifact for a graph version and format.
func (s *ExportService) Export(
	ctx context.Context, docID string, version int, typ domain.ExportType,
) (*domain.ExportArtifact, error) {
	renderer, ok := s.renderers[typ]
	if !ok {
		return nil, fmt.Errorf("%w: no renderer for export type %q", domain.ErrInvalidInput, typ)
	}

	graph, err := s.loadGraph(ctx, docID, version)
	if err != nil {
		return nil, err
	}

	// 1. Reuse the stored artifact when this version was exported before.
	existing, err := s.artifactStore.GetArtifact(ctx, graph.GraphID, typ)
	if err == nil {
		logger.Debug("Export %s/%s already exists, returning stored artifact", graph.GraphID, typ)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("look up artifact: %w", err)
	}

	// 2. Project and render.
	rows := projectRows(graph)
	content, err := renderer.Render(graph, rows)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", typ, err)
	}

	// 3. Store. A concurrent export of the same version wins quietly:
	// the store hands back whichever artifact landed first.
	artifact := &domain.ExportArtifact{
		ArtifactID: domain.ArtifactID(graph.GraphID, typ),
		GraphID:    graph.GraphID,
		DocID:      graph.DocID,
		Version:    graph.Version,
		Type:       typ,
		Rows:       rows,
		Content:    content,
		Checksum:   rowsChecksum(rows),
		CreatedAt:  time.Now(),
	}
	stored, err := s.artifactStore.SaveArtifact(ctx, artifact)
	if err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	publish(s.bus, domain.EventExportReady, graph.DocID, map[string]string{
		"artifact_id": stored.ArtifactID,
		"type":        string(typ),
	})
	logger.Info("Exported %s v%d as %s (%d rows)", graph.DocID, graph.Version, typ, len(rows))
	return stored, nil
}

// Rows projects a graph version into ordered export rows.
func (s *ExportService) Rows(ctx context.Context, docID string, version int) ([]domain.ExportRow, error) {
	graph, err := s.loadGraph(ctx, docID, version)
	if err != nil {
		return nil, err
	}
	return projectRows(graph), nil
}

// ListArtifacts returns stored artifacts for a document, newest first.
func (s *ExportService) ListArtifacts(ctx context.Context, docID string) ([]domain.ExportArtifact, error) {
	return s.artifactStore.ListArtifacts(ctx, docID)
}

func (s *ExportService) loadGraph(ctx context.Context, docID string, version int) (*domain.RequirementGraph, error) {
	if version <= 0 {
		return s.graphStore.GetLatest(ctx, docID)
	}
	return s.graphStore.GetGraph(ctx, docID, version)
}

// projectRows flattens a graph version into export rows: modules in
// insertion order, features within a module by priority then insertion
// order, features without a module under the synthetic Unassigned
// module last. A feature mapped to several modules appears under each.
func projectRows(g *domain.RequirementGraph) []domain.ExportRow {
	byFeature := make(map[string][]*domain.Interaction)
	for i := range g.Interactions {
		x := &g.Interactions[i]
		if x.FeatureID == "" {
			continue
		}
		byFeature[x.FeatureID] = append(byFeature[x.FeatureID], x)
	}

	rows := make([]domain.ExportRow, 0, len(g.Features))
	for i := range g.Modules {
		m := &g.Modules[i]
		for _, f := range moduleFeatures(g, m.ID) {
			rows = append(rows, projectRow(g, m.Name, f, byFeature))
		}
	}
	for _, f := range unassignedFeatures(g) {
		rows = append(rows, projectRow(g, domain.UnassignedModule, f, byFeature))
	}
	return rows
}

func moduleFeatures(g *domain.RequirementGraph, moduleID string) []*domain.Feature {
	var out []*domain.Feature
	for i := range g.Features {
		f := &g.Features[i]
		for _, mid := range f.Modules {
			if mid == moduleID {
				out = append(out, f)
				break
			}
		}
	}
	sortByPriority(out)
	return out
}

func unassignedFeatures(g *domain.RequirementGraph) []*domain.Feature {
	var out []*domain.Feature
	for i := range g.Features {
		if len(g.Features[i].Modules) == 0 {
			out = append(out, &g.Features[i])
		}
	}
	sortByPriority(out)
	return out
}

// sortByPriority orders P1 before P2 before P3, stable so insertion
// order breaks ties.
func sortByPriority(feats []*domain.Feature) {
	sort.SliceStable(feats, func(i, j int) bool {
		return feats[i].Priority.Rank() < feats[j].Priority.Rank()
	})
}

func projectRow(
	g *domain.RequirementGraph,
	moduleName string,
	f *domain.Feature,
	byFeature map[string][]*domain.Interaction,
) domain.ExportRow {
	var inter []string
	for _, x := range byFeature[f.ID] {
		s := x.Actor + " " + x.Action
		if x.Outcome != "" {
			s += " → " + x.Outcome
		}
		inter = append(inter, s)
	}

	// Answers come only from answered questions; open questions carry
	// their recorded assumption inline so expired clarifications still
	// surface, without ever being presented as answers.
	var questions, answers []string
	for i := range g.Questions {
		q := &g.Questions[i]
		if !questionTouchesFeature(q, f) {
			continue
		}
		switch q.Status {
		case domain.QuestionAnswered:
			if q.Answer != "" {
				answers = append(answers, q.Answer)
			}
		case domain.QuestionOpen:
			text := q.Text
			if q.SuggestedAnswer != "" {
				text += " (assumption: " + q.SuggestedAnswer + ")"
			}
			questions = append(questions, text)
		}
	}

	return domain.ExportRow{
		Module:       moduleName,
		Feature:      f.Title,
		Interactions: strings.Join(inter, "; "),
		Notes:        strings.Join(f.Notes, "; "),
		Questions:    strings.Join(questions, "; "),
		Answers:      strings.Join(answers, "; "),
	}
}

// questionTouchesFeature associates a question with a feature when they
// share a source chunk or the question mentions the feature title.
func questionTouchesFeature(q *domain.Question, f *domain.Feature) bool {
	for _, qc := range q.SourceChunks {
		for _, fc := range f.SourceChunks {
			if qc == fc {
				return true
			}
		}
	}
	title := domain.NormalizeEntityName(f.Title)
	return title != "" && strings.Contains(domain.NormalizeEntityName(q.Text), title)
}

// rowsChecksum hashes the canonical row serialization: cells joined by
// the unit separator, rows joined by newline. The checksum is a property
// of the projection, shared by every container format of the version.
func rowsChecksum(rows []domain.ExportRow) string {
	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(row.Cells(), "\x1f"))
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
