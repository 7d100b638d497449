package domain

import "time"

// Document represents one imported source unit and its metadata.
// Documents and their chunks are created together in a single
// transaction and never mutated afterwards.
type Document struct {
	// ID is the unique identifier, generated at import time.
	ID string

	// Filename is the human-readable display name.
	Filename string

	// ImportDate is when the document was ingested.
	ImportDate time.Time

	// SourceType identifies the format the document came from.
	SourceType SourceType

	// SourcePath is the dedup key. When non-empty and already recorded,
	// the source is never re-imported. Empty for sources without a
	// stable path (e.g. conversations inside an export).
	SourcePath string

	// SourceModDate is the source's own last-modified timestamp.
	// Informational only; never consulted for re-import decisions.
	// Zero when unknown.
	SourceModDate time.Time
}

// Chunk is one bounded text fragment belonging to exactly one document.
// It is the unit of search and embedding.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document. Deleting the document
	// deletes all its chunks.
	DocumentID string

	// Text is the fragment content. Immutable once written.
	Text string

	// Vector is the embedding, nil until computed. Once written it has
	// the store's fixed dimensionality for the lifetime of the store.
	Vector []float32
}

// ChunkRef is a lightweight (id, text) pair for chunks still missing a
// vector, as returned by unembedded-page queries.
type ChunkRef struct {
	ID   string
	Text string
}
