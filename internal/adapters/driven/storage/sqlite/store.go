package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the persistence port interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the SQLite database at dbPath, creating the file and
// its parent directory if needed. If dbPath is empty, defaults to
// ~/.orbit/data/orbit.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".orbit", "data", "orbit.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// GraphStore returns a GraphStore interface backed by this store.
func (s *Store) GraphStore() driven.GraphStore {
	return &graphStore{store: s}
}

// ArtifactStore returns an ArtifactStore interface backed by this store.
func (s *Store) ArtifactStore() driven.ArtifactStore {
	return &artifactStore{store: s}
}

// ClarificationStore returns a ClarificationStore interface backed by this store.
func (s *Store) ClarificationStore() driven.ClarificationStore {
	return &clarificationStore{store: s}
}

// ExampleStore returns an ExampleStore interface backed by this store.
func (s *Store) ExampleStore() driven.ExampleStore {
	return &exampleStore{store: s}
}

// ScheduleStore returns a ScheduleStore interface backed by this store.
func (s *Store) ScheduleStore() driven.ScheduleStore {
	return &scheduleStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document. Timestamps are stored as
// given; the lifecycle service owns the clock.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, name, content, status, domain, domain_confidence,
			 latest_version, confirmed_version, failure_reason, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			content = excluded.content,
			status = excluded.status,
			domain = excluded.domain,
			domain_confidence = excluded.domain_confidence,
			latest_version = excluded.latest_version,
			confirmed_version = excluded.confirmed_version,
			failure_reason = excluded.failure_reason,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Name, doc.Content, string(doc.Status), doc.Domain, doc.DomainConfidence,
		doc.LatestVersion, doc.ConfirmedVersion, doc.FailureReason, doc.SubmittedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document, replacing any existing set.
func (s *documentStore) SaveChunks(ctx context.Context, docID string, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", docID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, sequence, text, source_offset, source_length, embedding, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunk := &chunks[i]
		tagsJSON, err := json.Marshal(chunk.Tags)
		if err != nil {
			return fmt.Errorf("marshalling chunk tags: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, docID, chunk.Sequence, chunk.Text,
			chunk.Source.Offset, chunk.Source.Length, embeddingBlob, string(tagsJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, content, status, domain, domain_confidence,
		       latest_version, confirmed_version, failure_reason, submitted_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, err
}

// GetChunks retrieves all chunks for a document in sequence order.
func (s *documentStore) GetChunks(ctx context.Context, docID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, sequence, text, source_offset, source_length, embedding, tags
		FROM chunks WHERE document_id = ?
		ORDER BY sequence
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// ListDocuments returns all documents ordered by submission time
// descending, ID as tie-breaker so listings are stable.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, content, status, domain, domain_confidence,
		       latest_version, confirmed_version, failure_reason, submitted_at, updated_at
		FROM documents
		ORDER BY submitted_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ListByStatus returns documents in the given status.
func (s *documentStore) ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, content, status, domain, domain_confidence,
		       latest_version, confirmed_version, failure_reason, submitted_at, updated_at
		FROM documents WHERE status = ?
		ORDER BY submitted_at DESC, id
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// DeleteDocument removes a document; its chunks go with it through the
// foreign key cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Graph Store ====================

// graphStore implements driven.GraphStore.
type graphStore struct {
	store *Store
}

var _ driven.GraphStore = (*graphStore)(nil)

// SaveGraph stores a new graph version. Committed versions are
// immutable, so a conflicting insert reports ErrAlreadyExists instead
// of updating.
func (s *graphStore) SaveGraph(ctx context.Context, graph *domain.RequirementGraph) error {
	payload, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("marshalling graph: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO graphs (graph_id, document_id, version, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, graph.GraphID, graph.DocID, graph.Version, string(payload), graph.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	if inserted == 0 {
		return fmt.Errorf("graph %s v%d: %w", graph.DocID, graph.Version, domain.ErrAlreadyExists)
	}
	return nil
}

// GetGraph retrieves one version of a document's graph. A report saved
// after the graph overrides the embedded validation state.
func (s *graphStore) GetGraph(ctx context.Context, docID string, version int) (*domain.RequirementGraph, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT payload FROM graphs WHERE document_id = ? AND version = ?
	`, docID, version)

	graph, err := scanGraph(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("graph %s v%d: %w", docID, version, domain.ErrNoGraph)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachReport(ctx, graph); err != nil {
		return nil, err
	}
	return graph, nil
}

// GetLatest retrieves the highest version of a document's graph.
func (s *graphStore) GetLatest(ctx context.Context, docID string) (*domain.RequirementGraph, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT payload FROM graphs WHERE document_id = ?
		ORDER BY version DESC LIMIT 1
	`, docID)

	graph, err := scanGraph(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("document %s: %w", docID, domain.ErrNoGraph)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachReport(ctx, graph); err != nil {
		return nil, err
	}
	return graph, nil
}

// ListVersions returns version numbers for a document, ascending.
func (s *graphStore) ListVersions(ctx context.Context, docID string) ([]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT version FROM graphs WHERE document_id = ? ORDER BY version
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var versions []int //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}

	return versions, nil
}

// SaveReport stores the validation report for a graph version.
// Re-validating replaces the prior report for that version.
func (s *graphStore) SaveReport(ctx context.Context, report *domain.ValidationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO validation_reports (graph_id, payload, checked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(graph_id) DO UPDATE SET
			payload = excluded.payload,
			checked_at = excluded.checked_at
	`, report.GraphID, string(payload), report.CheckedAt)

	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// GetReport retrieves the validation report for a graph version.
func (s *graphStore) GetReport(ctx context.Context, docID string, version int) (*domain.ValidationReport, error) {
	report, err := s.reportByGraphID(ctx, domain.GraphVersionID(docID, version))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("report %s v%d: %w", docID, version, domain.ErrNotFound)
	}
	return report, err
}

// DeleteByDocument removes every graph version and report for a document.
func (s *graphStore) DeleteByDocument(ctx context.Context, docID string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM validation_reports
		WHERE graph_id IN (SELECT graph_id FROM graphs WHERE document_id = ?)
	`, docID); err != nil {
		return fmt.Errorf("deleting reports: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM graphs WHERE document_id = ?", docID); err != nil {
		return fmt.Errorf("deleting graphs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// reportByGraphID loads a validation report by its graph identifier.
func (s *graphStore) reportByGraphID(ctx context.Context, graphID string) (*domain.ValidationReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT payload FROM validation_reports WHERE graph_id = ?
	`, graphID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	var report domain.ValidationReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}

	return &report, nil
}

// attachReport overlays the stored validation report, when one exists,
// onto a loaded graph.
func (s *graphStore) attachReport(ctx context.Context, graph *domain.RequirementGraph) error {
	report, err := s.reportByGraphID(ctx, graph.GraphID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	graph.Validation = report
	graph.ConfidenceScore = report.ConfidenceScore
	return nil
}

// ==================== Artifact Store ====================

// artifactStore implements driven.ArtifactStore.
type artifactStore struct {
	store *Store
}

var _ driven.ArtifactStore = (*artifactStore)(nil)

// SaveArtifact stores an artifact. Saving a second artifact for the
// same (graph, type) pair leaves the stored one in place and returns it.
func (s *artifactStore) SaveArtifact(ctx context.Context, artifact *domain.ExportArtifact) (*domain.ExportArtifact, error) {
	rowsJSON, err := json.Marshal(artifact.Rows)
	if err != nil {
		return nil, fmt.Errorf("marshalling rows: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO artifacts
			(artifact_id, graph_id, document_id, version, type, rows_json, content, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, artifact.ArtifactID, artifact.GraphID, artifact.DocID, artifact.Version,
		string(artifact.Type), string(rowsJSON), artifact.Content, artifact.Checksum, artifact.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving artifact: %w", err)
	}

	// Read back so a conflicting save returns the stored artifact.
	row := s.store.db.QueryRowContext(ctx, `
		SELECT artifact_id, graph_id, document_id, version, type, rows_json, content, checksum, created_at
		FROM artifacts WHERE artifact_id = ?
	`, artifact.ArtifactID)

	return scanArtifact(row)
}

// GetArtifact retrieves the artifact for a graph version and type.
func (s *artifactStore) GetArtifact(ctx context.Context, graphID string, typ domain.ExportType) (*domain.ExportArtifact, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT artifact_id, graph_id, document_id, version, type, rows_json, content, checksum, created_at
		FROM artifacts WHERE artifact_id = ?
	`, domain.ArtifactID(graphID, typ))

	artifact, err := scanArtifact(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("artifact %s/%s: %w", graphID, typ, domain.ErrNotFound)
	}
	return artifact, err
}

// ListArtifacts returns artifacts for a document, newest first.
func (s *artifactStore) ListArtifacts(ctx context.Context, docID string) ([]domain.ExportArtifact, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT artifact_id, graph_id, document_id, version, type, rows_json, content, checksum, created_at
		FROM artifacts WHERE document_id = ?
		ORDER BY created_at DESC, artifact_id
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.ExportArtifact //nolint:prealloc // size unknown from query
	for rows.Next() {
		artifact, err := scanArtifactRows(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, *artifact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}

	return artifacts, nil
}

// DeleteByDocument removes all artifacts for a document.
func (s *artifactStore) DeleteByDocument(ctx context.Context, docID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM artifacts WHERE document_id = ?", docID)
	if err != nil {
		return fmt.Errorf("deleting artifacts: %w", err)
	}
	return nil
}

// ==================== Clarification Store ====================

// clarificationStore implements driven.ClarificationStore.
type clarificationStore struct {
	store *Store
}

var _ driven.ClarificationStore = (*clarificationStore)(nil)

// SaveClarifications stores or updates clarification entries. The
// question and its ask time are fixed at creation; only the answer
// lifecycle fields change on update.
func (s *clarificationStore) SaveClarifications(ctx context.Context, items []domain.Clarification) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clarifications
			(id, document_id, question, category, suggested_answer, answer, status, asked_at, answered_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			suggested_answer = excluded.suggested_answer,
			answer = excluded.answer,
			status = excluded.status,
			answered_at = excluded.answered_at,
			expires_at = excluded.expires_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range items {
		item := &items[i]
		if _, err := stmt.ExecContext(ctx, item.ID, item.DocID, item.Question, string(item.Category),
			item.SuggestedAnswer, item.Answer, string(item.Status), item.AskedAt,
			formatNullableTime(item.AnsweredAt), item.ExpiresAt); err != nil {
			return fmt.Errorf("saving clarification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetClarification retrieves one entry by ID.
func (s *clarificationStore) GetClarification(ctx context.Context, id string) (*domain.Clarification, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, question, category, suggested_answer, answer, status, asked_at, answered_at, expires_at
		FROM clarifications WHERE id = ?
	`, id)

	item, err := scanClarification(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("clarification %s: %w", id, domain.ErrNotFound)
	}
	return item, err
}

// ListByDocument returns all clarifications for a document in ask order.
func (s *clarificationStore) ListByDocument(ctx context.Context, docID string) ([]domain.Clarification, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, question, category, suggested_answer, answer, status, asked_at, answered_at, expires_at
		FROM clarifications WHERE document_id = ?
		ORDER BY asked_at, id
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying clarifications: %w", err)
	}
	defer rows.Close()

	return scanClarifications(rows)
}

// ListExpired returns pending clarifications whose expiry is at or
// before the given time.
func (s *clarificationStore) ListExpired(ctx context.Context, now time.Time) ([]domain.Clarification, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, question, category, suggested_answer, answer, status, asked_at, answered_at, expires_at
		FROM clarifications
		WHERE status = ? AND expires_at <= ?
		ORDER BY id
	`, string(domain.ClarificationPending), now)
	if err != nil {
		return nil, fmt.Errorf("querying expired clarifications: %w", err)
	}
	defer rows.Close()

	return scanClarifications(rows)
}

// DeleteByDocument removes all clarifications for a document.
func (s *clarificationStore) DeleteByDocument(ctx context.Context, docID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM clarifications WHERE document_id = ?", docID)
	if err != nil {
		return fmt.Errorf("deleting clarifications: %w", err)
	}
	return nil
}

// ==================== Example Store ====================

// exampleStore implements driven.ExampleStore.
type exampleStore struct {
	store *Store
}

var _ driven.ExampleStore = (*exampleStore)(nil)

// Append stores new example records. Records whose example ID is
// already present are skipped, keeping the corpus append-only.
func (s *exampleStore) Append(ctx context.Context, records []domain.ExampleRecord) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO examples (example_id, domain, text_excerpt, structured_output, embedding, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		record := &records[i]
		embeddingBlob := float32SliceToBytes(record.Embedding)

		if _, err := stmt.ExecContext(ctx, record.ExampleID, record.Domain, record.TextExcerpt,
			record.StructuredOutput, embeddingBlob, record.AddedAt); err != nil {
			return fmt.Errorf("saving example: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns all example records ordered by example ID ascending.
func (s *exampleStore) List(ctx context.Context) ([]domain.ExampleRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT example_id, domain, text_excerpt, structured_output, embedding, added_at
		FROM examples
		ORDER BY example_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying examples: %w", err)
	}
	defer rows.Close()

	return scanExamples(rows)
}

// ListByDomain returns records for one domain label, ordered by example ID.
func (s *exampleStore) ListByDomain(ctx context.Context, domainLabel string) ([]domain.ExampleRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT example_id, domain, text_excerpt, structured_output, embedding, added_at
		FROM examples WHERE domain = ?
		ORDER BY example_id
	`, domainLabel)
	if err != nil {
		return nil, fmt.Errorf("querying examples: %w", err)
	}
	defer rows.Close()

	return scanExamples(rows)
}

// Get retrieves a record by example ID.
func (s *exampleStore) Get(ctx context.Context, exampleID string) (*domain.ExampleRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT example_id, domain, text_excerpt, structured_output, embedding, added_at
		FROM examples WHERE example_id = ?
	`, exampleID)

	record, err := scanExample(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("example %s: %w", exampleID, domain.ErrNotFound)
	}
	return record, err
}

// Count returns the number of stored examples.
func (s *exampleStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM examples").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting examples: %w", err)
	}
	return count, nil
}

// Close is a no-op; the unified store owns the database connection.
func (s *exampleStore) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a little-endian byte
// slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var status string

	if err := row.Scan(&doc.ID, &doc.Name, &doc.Content, &status, &doc.Domain, &doc.DomainConfidence,
		&doc.LatestVersion, &doc.ConfirmedVersion, &doc.FailureReason, &doc.SubmittedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

// scanDocuments scans multiple document rows.
func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var status string

		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Content, &status, &doc.Domain, &doc.DomainConfidence,
			&doc.LatestVersion, &doc.ConfirmedVersion, &doc.FailureReason, &doc.SubmittedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc.Status = domain.DocumentStatus(status)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var tagsJSON string

	if err := rows.Scan(&chunk.ID, &chunk.DocID, &chunk.Sequence, &chunk.Text,
		&chunk.Source.Offset, &chunk.Source.Length, &embeddingBlob, &tagsJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &chunk.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk tags: %w", err)
		}
	}

	return &chunk, nil
}

// scanGraph scans a graph payload from *sql.Row.
func scanGraph(row *sql.Row) (*domain.RequirementGraph, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning graph: %w", err)
	}

	var graph domain.RequirementGraph
	if err := json.Unmarshal([]byte(payload), &graph); err != nil {
		return nil, fmt.Errorf("unmarshaling graph: %w", err)
	}

	return &graph, nil
}

// scanArtifact scans a single artifact row.
func scanArtifact(row *sql.Row) (*domain.ExportArtifact, error) {
	var artifact domain.ExportArtifact
	var typ, rowsJSON string

	if err := row.Scan(&artifact.ArtifactID, &artifact.GraphID, &artifact.DocID, &artifact.Version,
		&typ, &rowsJSON, &artifact.Content, &artifact.Checksum, &artifact.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning artifact: %w", err)
	}

	artifact.Type = domain.ExportType(typ)
	if err := json.Unmarshal([]byte(rowsJSON), &artifact.Rows); err != nil {
		return nil, fmt.Errorf("unmarshaling artifact rows: %w", err)
	}

	return &artifact, nil
}

// scanArtifactRows scans an artifact from *sql.Rows.
func scanArtifactRows(rows *sql.Rows) (*domain.ExportArtifact, error) {
	var artifact domain.ExportArtifact
	var typ, rowsJSON string

	if err := rows.Scan(&artifact.ArtifactID, &artifact.GraphID, &artifact.DocID, &artifact.Version,
		&typ, &rowsJSON, &artifact.Content, &artifact.Checksum, &artifact.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning artifact: %w", err)
	}

	artifact.Type = domain.ExportType(typ)
	if err := json.Unmarshal([]byte(rowsJSON), &artifact.Rows); err != nil {
		return nil, fmt.Errorf("unmarshaling artifact rows: %w", err)
	}

	return &artifact, nil
}

// scanClarification scans a single clarification row.
func scanClarification(row *sql.Row) (*domain.Clarification, error) {
	var item domain.Clarification
	var category, status string
	var answeredAt sql.NullString

	if err := row.Scan(&item.ID, &item.DocID, &item.Question, &category, &item.SuggestedAnswer,
		&item.Answer, &status, &item.AskedAt, &answeredAt, &item.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning clarification: %w", err)
	}

	item.Category = domain.QuestionCategory(category)
	item.Status = domain.ClarificationStatus(status)
	item.AnsweredAt = parseNullableTime(answeredAt)

	return &item, nil
}

// scanClarifications scans multiple clarification rows.
func scanClarifications(rows *sql.Rows) ([]domain.Clarification, error) {
	var items []domain.Clarification //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.Clarification
		var category, status string
		var answeredAt sql.NullString

		if err := rows.Scan(&item.ID, &item.DocID, &item.Question, &category, &item.SuggestedAnswer,
			&item.Answer, &status, &item.AskedAt, &answeredAt, &item.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning clarification: %w", err)
		}

		item.Category = domain.QuestionCategory(category)
		item.Status = domain.ClarificationStatus(status)
		item.AnsweredAt = parseNullableTime(answeredAt)

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clarifications: %w", err)
	}

	return items, nil
}

// scanExample scans a single example row.
func scanExample(row *sql.Row) (*domain.ExampleRecord, error) {
	var record domain.ExampleRecord
	var embeddingBlob []byte

	if err := row.Scan(&record.ExampleID, &record.Domain, &record.TextExcerpt,
		&record.StructuredOutput, &embeddingBlob, &record.AddedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning example: %w", err)
	}

	record.Embedding = bytesToFloat32Slice(embeddingBlob)
	return &record, nil
}

// scanExamples scans multiple example rows.
func scanExamples(rows *sql.Rows) ([]domain.ExampleRecord, error) {
	var records []domain.ExampleRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.ExampleRecord
		var embeddingBlob []byte

		if err := rows.Scan(&record.ExampleID, &record.Domain, &record.TextExcerpt,
			&record.StructuredOutput, &embeddingBlob, &record.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning example: %w", err)
		}

		record.Embedding = bytesToFloat32Slice(embeddingBlob)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating examples: %w", err)
	}

	return records, nil
}
