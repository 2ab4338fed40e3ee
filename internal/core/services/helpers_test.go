package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/config/file"
	hashembed "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/embedding/hash"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/events"
	heuristicgen "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/generation/heuristic"
	memoryindex "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/index/memory"
	memorystore "github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/storage/memory"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/chunkers/semantic"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/classifiers/centroid"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
)

// fullBriefText clears the clarification floor and carries enough
// requirement language to process straight to a committed graph version.
const fullBriefText = `The operator runs three co-working sites and wants one member portal.
Members must be able to sign up, pick a plan and book desks or meeting
rooms from a live floor map. The system must charge the stored card
when a booking is confirmed and must email a receipt straight away.
Site managers need an occupancy dashboard covering all three sites,
with per-room utilisation and a weekly CSV export. Day passes should be
sold to walk-ins from a front-desk kiosk without creating a full
account. The portal must integrate with the existing door controller so
a confirmed booking unlocks the right room. Cancellations should
release the slot immediately and refund automatically when made more
than twelve hours ahead. All booking and payment events must be kept in
an audit log for seven years.`

// shortBriefText clears the submission floor but not the clarification
// floor, so processing parks it on clarification questions.
const shortBriefText = `We want a loyalty card app for our coffee shop. Customers should get a
stamp per visit and a free drink after their tenth stamp. Push offers
can come later.`

// plainProseText clears the clarification floor but contains no
// requirement language at all, so the extractor produces an empty scope
// and the build stage fails.
const plainProseText = `The town hall meeting covered the plans for the riverside walking
trail. Residents talked about the history of the old mill and the
families that worked there. The committee shared photographs from the
archive and passed around maps of the original street layout. Several
neighbours brought baked goods and coffee for the visitors. The evening
ended with a short slideshow about the restoration of the clock tower.
Attendance was higher than at any gathering last spring. Organisers
thanked the volunteers who set up chairs and cleaned the hall
afterwards. Minutes from the discussion will be posted on the community
board next week.`

// --- Test fixture ---

// testServices wires the core services onto memory adapters with the
// deterministic hash embedder and the heuristic extractor, so full
// pipeline runs are offline and reproducible.
type testServices struct {
	settings   domain.PipelineSettings
	docStore   *memorystore.DocumentStore
	graphStore *memorystore.GraphStore
	clarStore  *memorystore.ClarificationStore
	artifacts  *memorystore.ArtifactStore
	bus        *events.Bus

	documents *DocumentService
	pipeline  *PipelineService
	graphs    *GraphService
	examples  *ExampleService
}

func newTestServices() *testServices {
	settings := domain.DefaultPipelineSettings()
	embedder := hashembed.NewEmbeddingService(hashembed.Config{})
	bus := events.NewBus(events.Config{})

	docStore := memorystore.NewDocumentStore()
	graphStore := memorystore.NewGraphStore()
	clarStore := memorystore.NewClarificationStore()
	artifacts := memorystore.NewArtifactStore()

	chunker := semantic.New(embedder, semantic.WithMinInputChars(settings.MinInputChars))
	classifier := centroid.New(embedder)
	builder := NewGraphBuilder(nil, heuristicgen.NewGenerationService(),
		file.NewTaxonomyStore(""), settings, domain.StrategyHeuristic)
	validator := NewGraphValidator(embedder, settings)
	examples := NewExampleService(memorystore.NewExampleStore(), memoryindex.NewIndex(), embedder, settings)

	ts := &testServices{
		settings:   settings,
		docStore:   docStore,
		graphStore: graphStore,
		clarStore:  clarStore,
		artifacts:  artifacts,
		bus:        bus,
		examples:   examples,
	}
	ts.documents = NewDocumentService(docStore, graphStore, clarStore, artifacts, bus, settings)
	ts.pipeline = NewPipelineService(docStore, graphStore, clarStore, chunker, classifier,
		examples, builder, validator, bus, settings)
	ts.graphs = NewGraphService(docStore, graphStore, clarStore, examples, builder, validator, bus, settings)
	return ts
}

// --- Test helpers ---

// submitDocument stores a fresh document in the submitted state.
func submitDocument(t *testing.T, ts *testServices, name, content string) *domain.Document {
	t.Helper()
	doc, err := ts.documents.Submit(context.Background(), name, content)
	require.NoError(t, err)
	return doc
}

// processDocument runs the pipeline to a committed graph version.
func processDocument(t *testing.T, ts *testServices, docID string) *driving.PipelineResult {
	t.Helper()
	result, err := ts.pipeline.Process(context.Background(), docID)
	require.NoError(t, err)
	require.False(t, result.AwaitingClarification)
	return result
}

// drainEvents empties a subscription channel without blocking.
func drainEvents(ch <-chan domain.Event) []domain.Event {
	var out []domain.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func eventsOfType(list []domain.Event, typ domain.EventType) []domain.Event {
	var out []domain.Event
	for _, e := range list {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// --- Mock implementations ---

// stubEmbedder returns scripted vectors keyed by substring match, so
// similarity between chosen texts is under test control.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	lower := strings.ToLower(text)
	for key, vec := range s.vectors {
		if strings.Contains(lower, key) {
			return vec, nil
		}
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return 3 }

func (s *stubEmbedder) ModelName() string { return "stub" }

func (s *stubEmbedder) Ping(_ context.Context) error { return nil }

func (s *stubEmbedder) Close() error { return nil }
