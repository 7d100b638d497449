package driven

import (
	"context"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
)

// KnowledgeStore persists documents, chunks and the full-text index.
// Backed by SQLite. The full-text index is kept in lockstep with chunk
// rows by the store itself; callers never touch it directly.
//
// The store assumes a single writing process at a time. Concurrent
// readers are supported while a write transaction is open.
type KnowledgeStore interface {
	// IsSourceImported reports whether a document with the given dedup
	// key (source path) is already recorded.
	IsSourceImported(ctx context.Context, sourcePath string) (bool, error)

	// ImportedSourcePaths returns the set of all recorded dedup keys.
	// Used to pre-filter large directory runs with one query.
	ImportedSourcePaths(ctx context.Context) (map[string]struct{}, error)

	// InsertDocumentWithChunks atomically persists a document, one chunk
	// per fragment (in order), and the matching full-text index entries.
	// A crash mid-import leaves the in-flight document entirely absent.
	InsertDocumentWithChunks(ctx context.Context, doc *domain.Document, fragments []string) error

	// CountUnembedded returns how many chunks still lack a vector.
	CountUnembedded(ctx context.Context) (int, error)

	// SelectUnembedded returns up to limit chunks missing a vector, in
	// insertion order.
	SelectUnembedded(ctx context.Context, limit int) ([]domain.ChunkRef, error)

	// WriteVector stores a chunk's embedding. Fails with
	// domain.ErrNotFound if the chunk does not exist and with
	// domain.ErrDimensionMismatch if the vector length disagrees with
	// previously written vectors. Each write is its own transaction.
	WriteVector(ctx context.Context, chunkID string, vector []float32) error

	// VectorDimension returns the store's established embedding
	// dimensionality, or 0 when no vector has been written yet.
	VectorDimension(ctx context.Context) (int, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, in insertion order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document, its chunks and their full-text
	// index entries in one transaction.
	DeleteDocument(ctx context.Context, id string) error

	// SearchChunks runs a full-text query over chunk text and returns
	// up to limit matching chunks, unranked.
	SearchChunks(ctx context.Context, query string, limit int) ([]domain.Chunk, error)

	// Totals returns the number of documents and chunks in the store.
	Totals(ctx context.Context) (docs, chunks int, err error)

	// Close releases the underlying database handle.
	Close() error
}
