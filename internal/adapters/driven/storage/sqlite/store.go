package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/familiar-labs/knowledge-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.KnowledgeStore = (*Store)(nil)

// Store is the SQLite-backed knowledge store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if necessary) the knowledge store in the
// given data directory. If dataDir is empty, defaults to
// ~/.familiar/knowledge/knowledge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".familiar", "knowledge")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating knowledge directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// WAL keeps readers working while an import transaction is open.
	// foreign_keys must be set per connection, hence the DSN pragma.
	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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

// migrate runs all pending migrations. Safe to call against an
// existing store: applied versions are recorded and the DDL itself is
// IF NOT EXISTS.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
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

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Import ====================

// IsSourceImported reports whether a document with the given dedup key
// is already recorded.
func (s *Store) IsSourceImported(ctx context.Context, sourcePath string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE source_path = ?", sourcePath).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking source path: %w", err)
	}
	return count > 0, nil
}

// ImportedSourcePaths returns the set of all recorded dedup keys.
func (s *Store) ImportedSourcePaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source_path FROM documents WHERE source_path IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("querying source paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning source path: %w", err)
		}
		paths[p] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source paths: %w", err)
	}

	return paths, nil
}

// InsertDocumentWithChunks atomically persists a document and one chunk
// per fragment. The FTS triggers add the matching index entries inside
// the same transaction, so either everything is durable or nothing is.
func (s *Store) InsertDocumentWithChunks(ctx context.Context, doc *domain.Document, fragments []string) error {
	if doc == nil || doc.ID == "" || len(fragments) == 0 {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, filename, import_date, source_type, source_path, source_mod_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Filename, timeToUnix(doc.ImportDate), string(doc.SourceType),
		nullString(doc.SourcePath), nullUnix(doc.SourceModDate))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, text, vector) VALUES (?, ?, ?, NULL)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk statement: %w", err)
	}
	defer stmt.Close()

	// Insertion order fixes rowid order, which all reads preserve.
	for _, text := range fragments {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), doc.ID, text); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Embedding backfill ====================

// CountUnembedded returns how many chunks still lack a vector.
func (s *Store) CountUnembedded(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE vector IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unembedded chunks: %w", err)
	}
	return count, nil
}

// SelectUnembedded returns up to limit chunks missing a vector in
// insertion order.
func (s *Store) SelectUnembedded(ctx context.Context, limit int) ([]domain.ChunkRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text FROM chunks WHERE vector IS NULL ORDER BY rowid LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unembedded chunks: %w", err)
	}
	defer rows.Close()

	var refs []domain.ChunkRef //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ref domain.ChunkRef
		if err := rows.Scan(&ref.ID, &ref.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return refs, nil
}

// WriteVector stores a chunk's embedding. The dimensionality check runs
// before any mutation: a mismatched vector never truncates, pads, or
// partially writes.
func (s *Store) WriteVector(ctx context.Context, chunkID string, vector []float32) error {
	if len(vector) == 0 {
		return domain.ErrInvalidInput
	}

	dim, err := s.VectorDimension(ctx)
	if err != nil {
		return err
	}
	if dim != 0 && dim != len(vector) {
		return fmt.Errorf("%w: store has %d, got %d", domain.ErrDimensionMismatch, dim, len(vector))
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE chunks SET vector = ? WHERE id = ?", float32SliceToBytes(vector), chunkID)
	if err != nil {
		return fmt.Errorf("writing vector: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking vector write: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// VectorDimension returns the store's established embedding
// dimensionality, or 0 when no vector has been written yet.
func (s *Store) VectorDimension(ctx context.Context) (int, error) {
	var bytes sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT length(vector) FROM chunks WHERE vector IS NOT NULL LIMIT 1").Scan(&bytes)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying vector dimension: %w", err)
	}
	return int(bytes.Int64) / 4, nil
}

// ==================== Documents and chunks ====================

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, import_date, source_type, source_path, source_mod_date
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, import_date, source_type, source_path, source_mod_date
		FROM documents ORDER BY import_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var sourceType string
		var sourcePath sql.NullString
		var importDate float64
		var modDate sql.NullFloat64
		if err := rows.Scan(&doc.ID, &doc.Filename, &importDate,
			&sourceType, &sourcePath, &modDate); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.SourceType = domain.SourceType(sourceType)
		doc.SourcePath = sourcePath.String
		doc.ImportDate = unixToTime(importDate)
		if modDate.Valid {
			doc.SourceModDate = unixToTime(modDate.Float64)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// GetChunks retrieves all chunks for a document in insertion order.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, text, vector
		FROM chunks WHERE document_id = ?
		ORDER BY rowid
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DeleteDocument removes a document. The foreign key cascades to its
// chunks and the delete trigger removes their FTS entries, all in one
// implicit transaction.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SearchChunks runs an FTS5 match over chunk text. Results come back
// in chunk insertion order; ranking is deliberately absent.
func (s *Store) SearchChunks(ctx context.Context, query string, limit int) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.text, c.vector
		FROM chunks_fts f
		JOIN chunks c ON c.rowid = f.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY c.rowid
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// Totals returns the number of documents and chunks in the store.
func (s *Store) Totals(ctx context.Context) (int, int, error) {
	var docs, chunks int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents").Scan(&docs); err != nil {
		return 0, 0, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks").Scan(&chunks); err != nil {
		return 0, 0, fmt.Errorf("counting chunks: %w", err)
	}
	return docs, chunks, nil
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

// bytesToFloat32Slice converts a stored byte slice back to []float32.
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

// timeToUnix converts a time to Unix seconds with sub-second precision,
// the REAL representation the schema uses.
func timeToUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// unixToTime converts Unix seconds back to a time.
func unixToTime(sec float64) time.Time {
	return time.Unix(0, int64(sec*float64(time.Second)))
}

// nullString maps an empty string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullUnix maps a zero time to NULL and anything else to Unix seconds.
func nullUnix(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return timeToUnix(t)
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var sourceType string
	var sourcePath sql.NullString
	var importDate float64
	var modDate sql.NullFloat64

	if err := row.Scan(&doc.ID, &doc.Filename, &importDate,
		&sourceType, &sourcePath, &modDate); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.SourceType = domain.SourceType(sourceType)
	doc.SourcePath = sourcePath.String
	doc.ImportDate = unixToTime(importDate)
	if modDate.Valid {
		doc.SourceModDate = unixToTime(modDate.Float64)
	}

	return &doc, nil
}

// scanChunks scans chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var vectorBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Text, &vectorBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Vector = bytesToFloat32Slice(vectorBlob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}
