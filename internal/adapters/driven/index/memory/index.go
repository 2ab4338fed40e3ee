// Package memory provides an in-memory example index.
//
// The index holds an immutable snapshot of the corpus behind an atomic
// pointer. Rebuild swaps the whole snapshot; searches never lock and see
// either the old corpus or the new one, never partial state. Ranking is
// a brute-force cosine scan, which stays well under a millisecond for
// the corpus sizes a single project accumulates.
package memory

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/vectors"
)

// Ensure Index implements the interface.
var _ driven.ExampleIndex = (*Index)(nil)

// Index provides similarity search over an atomically swapped corpus
// snapshot.
type Index struct {
	snapshot atomic.Pointer[snapshot]
}

// snapshot is one immutable generation of the corpus.
type snapshot struct {
	records []domain.ExampleRecord
}

// NewIndex creates an empty example index.
func NewIndex() *Index {
	idx := &Index{}
	idx.snapshot.Store(&snapshot{})
	return idx
}

// Search returns up to k examples ranked by cosine similarity to the
// query vector, descending, ties broken by example ID ascending.
// Results below minSimilarity are dropped.
func (idx *Index) Search(_ context.Context, query []float32, k int, minSimilarity float64) ([]domain.RetrievedExample, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	snap := idx.snapshot.Load()
	hits := make([]domain.RetrievedExample, 0, len(snap.records))
	for _, rec := range snap.records {
		sim := vectors.Cosine(query, rec.Embedding)
		if sim < minSimilarity {
			continue
		}
		hits = append(hits, domain.RetrievedExample{Example: rec, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Example.ExampleID < hits[j].Example.ExampleID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Rebuild constructs a fresh snapshot from the given records and swaps
// it in atomically. Records without an embedding cannot be ranked and
// are left out.
func (idx *Index) Rebuild(_ context.Context, records []domain.ExampleRecord) error {
	next := &snapshot{records: make([]domain.ExampleRecord, 0, len(records))}
	for _, rec := range records {
		if len(rec.Embedding) == 0 {
			continue
		}
		next.records = append(next.records, rec)
	}
	idx.snapshot.Store(next)
	return nil
}

// Len returns the number of examples in the current snapshot.
func (idx *Index) Len() int {
	return len(idx.snapshot.Load().records)
}
