package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Default configuration values.
const (
	DefaultDimensions = 256
	DefaultIVFLists   = 100
)

// Config holds configuration for the Postgres example store.
type Config struct {
	// ConnString is the Postgres connection string.
	ConnString string

	// Dimensions is the embedding vector size; the examples table is
	// created with this dimension (default: 256, the offline embedder).
	Dimensions int
}

// Store is a Postgres-backed example corpus with pgvector similarity
// search. Unlike its SQLite counterpart it holds only the example
// corpus; document and graph state stay local.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int

	// indexed counts rows with an embedding, kept current so the index
	// wrapper can answer Len without a query.
	indexed atomic.Int64
}

// NewStore connects to Postgres, ensures the vector extension and
// examples schema exist, and primes the indexed-row count.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ConnString == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	pool, err := pgxpool.New(ctx, cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &Store{pool: pool, dimensions: cfg.Dimensions}
	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := s.refreshIndexed(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("counting indexed examples: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// ExampleStore returns the example corpus interface.
func (s *Store) ExampleStore() driven.ExampleStore {
	return &exampleStore{store: s}
}

// ExampleIndex returns the similarity search interface.
func (s *Store) ExampleIndex() driven.ExampleIndex {
	return &exampleIndex{store: s}
}

// createSchema ensures the vector extension, the examples table and its
// indexes exist. The embedding column dimension is fixed at creation;
// switching embedding providers with a different dimension needs a new
// table.
func (s *Store) createSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS examples (
		example_id        TEXT PRIMARY KEY,
		domain            TEXT NOT NULL DEFAULT '',
		text_excerpt      TEXT NOT NULL,
		structured_output TEXT NOT NULL,
		embedding         vector(%d),
		added_at          TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_examples_domain ON examples(domain);

	CREATE INDEX IF NOT EXISTS idx_examples_embedding ON examples
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);
	`, s.dimensions, DefaultIVFLists)

	_, err := s.pool.Exec(ctx, query)
	return err
}

// refreshIndexed recounts the rows visible to similarity search.
func (s *Store) refreshIndexed(ctx context.Context) error {
	var n int64
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM examples WHERE embedding IS NOT NULL",
	).Scan(&n)
	if err != nil {
		return err
	}
	s.indexed.Store(n)
	return nil
}

// ==================== Example Store ====================

// exampleStore implements driven.ExampleStore backed by Postgres.
type exampleStore struct {
	store *Store
}

var _ driven.ExampleStore = (*exampleStore)(nil)

// Append stores new example records. Records with an already-known
// example ID are skipped, keeping the corpus append-only.
func (e *exampleStore) Append(ctx context.Context, records []domain.ExampleRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := e.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var added int64
	for _, rec := range records {
		ct, err := tx.Exec(ctx, `
			INSERT INTO examples (example_id, domain, text_excerpt, structured_output, embedding, added_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (example_id) DO NOTHING
		`, rec.ExampleID, rec.Domain, rec.TextExcerpt, rec.StructuredOutput,
			toVector(rec.Embedding), rec.AddedAt.UTC())
		if err != nil {
			return fmt.Errorf("saving example: %w", err)
		}
		if ct.RowsAffected() > 0 && len(rec.Embedding) > 0 {
			added++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	e.store.indexed.Add(added)
	return nil
}

// List returns all example records ordered by example ID ascending.
func (e *exampleStore) List(ctx context.Context) ([]domain.ExampleRecord, error) {
	rows, err := e.store.pool.Query(ctx, `
		SELECT example_id, domain, text_excerpt, structured_output, embedding, added_at
		FROM examples ORDER BY example_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing examples: %w", err)
	}
	defer rows.Close()

	return scanExamples(rows)
}

// ListByDomain returns records for one domain label, ordered by example ID.
func (e *exampleStore) ListByDomain(ctx context.Context, domainLabel string) ([]domain.ExampleRecord, error) {
	rows, err := e.store.pool.Query(ctx, `
		SELECT example_id, domain, text_excerpt, structured_output, embedding, added_at
		FROM examples WHERE domain = $1 ORDER BY example_id
	`, domainLabel)
	if err != nil {
		return nil, fmt.Errorf("listing examples: %w", err)
	}
	defer rows.Close()

	return scanExamples(rows)
}

// Get retrieves a record by example ID.
func (e *exampleStore) Get(ctx context.Context, exampleID string) (*domain.ExampleRecord, error) {
	row := e.store.pool.QueryRow(ctx, `
		SELECT example_id, domain, text_excerpt, structured_output, embedding, added_at
		FROM examples WHERE example_id = $1
	`, exampleID)

	rec, err := scanExample(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("example %s: %w", exampleID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting example: %w", err)
	}
	return rec, nil
}

// Count returns the number of stored examples.
func (e *exampleStore) Count(ctx context.Context) (int, error) {
	var count int
	err := e.store.pool.QueryRow(ctx, "SELECT COUNT(*) FROM examples").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting examples: %w", err)
	}
	return count, nil
}

// Close is a no-op; the unified store owns the connection pool.
func (e *exampleStore) Close() error {
	return nil
}

// ==================== Example Index ====================

// exampleIndex implements driven.ExampleIndex with pgvector cosine
// search. The table itself is the snapshot; rows without an embedding
// are invisible to search.
type exampleIndex struct {
	store *Store
}

var _ driven.ExampleIndex = (*exampleIndex)(nil)

// Search returns up to k examples ranked by cosine similarity to the
// query vector, descending, ties broken by example ID ascending.
// Results below minSimilarity are dropped.
func (i *exampleIndex) Search(ctx context.Context, query []float32, k int, minSimilarity float64) ([]domain.RetrievedExample, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(query)
	rows, err := i.store.pool.Query(ctx, `
		SELECT example_id, domain, text_excerpt, structured_output, embedding, added_at,
		       1 - (embedding <=> $1) AS similarity
		FROM examples
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1, example_id
		LIMIT $2
	`, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching examples: %w", err)
	}
	defer rows.Close()

	var hits []domain.RetrievedExample //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			rec       domain.ExampleRecord
			embedding pgvector.Vector
			addedAt   time.Time
			sim       float64
		)
		err := rows.Scan(&rec.ExampleID, &rec.Domain, &rec.TextExcerpt,
			&rec.StructuredOutput, &embedding, &addedAt, &sim)
		if err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		if sim < minSimilarity {
			continue
		}
		rec.Embedding = embedding.Slice()
		rec.AddedAt = addedAt.UTC()
		hits = append(hits, domain.RetrievedExample{Example: rec, Similarity: sim})
	}
	return hits, rows.Err()
}

// Rebuild refreshes the table from the given records in one
// transaction. Known rows get their text and embedding re-written,
// new rows are inserted; searches concurrent with the rebuild see the
// table before or after the commit, never in between.
func (i *exampleIndex) Rebuild(ctx context.Context, records []domain.ExampleRecord) error {
	tx, err := i.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, rec := range records {
		_, err := tx.Exec(ctx, `
			INSERT INTO examples (example_id, domain, text_excerpt, structured_output, embedding, added_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (example_id) DO UPDATE SET
				domain = EXCLUDED.domain,
				text_excerpt = EXCLUDED.text_excerpt,
				structured_output = EXCLUDED.structured_output,
				embedding = EXCLUDED.embedding
		`, rec.ExampleID, rec.Domain, rec.TextExcerpt, rec.StructuredOutput,
			toVector(rec.Embedding), rec.AddedAt.UTC())
		if err != nil {
			return fmt.Errorf("reindexing example: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return i.store.refreshIndexed(ctx)
}

// Len returns the number of examples visible to similarity search.
func (i *exampleIndex) Len() int {
	return int(i.store.indexed.Load())
}

// ==================== Helper Functions ====================

// toVector converts an embedding to a pgvector value, nil when the
// record carries no embedding so the column stays NULL.
func toVector(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

// scanExample scans a single example row.
func scanExample(row pgx.Row) (*domain.ExampleRecord, error) {
	var (
		rec       domain.ExampleRecord
		embedding *pgvector.Vector
		addedAt   time.Time
	)
	err := row.Scan(&rec.ExampleID, &rec.Domain, &rec.TextExcerpt,
		&rec.StructuredOutput, &embedding, &addedAt)
	if err != nil {
		return nil, err
	}
	if embedding != nil {
		rec.Embedding = embedding.Slice()
	}
	rec.AddedAt = addedAt.UTC()
	return &rec, nil
}

// scanExamples scans multiple example rows.
func scanExamples(rows pgx.Rows) ([]domain.ExampleRecord, error) {
	var records []domain.ExampleRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			rec       domain.ExampleRecord
			embedding *pgvector.Vector
			addedAt   time.Time
		)
		err := rows.Scan(&rec.ExampleID, &rec.Domain, &rec.TextExcerpt,
			&rec.StructuredOutput, &embedding, &addedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning example: %w", err)
		}
		if embedding != nil {
			rec.Embedding = embedding.Slice()
		}
		rec.AddedAt = addedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
