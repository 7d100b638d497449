// Package memory provides an in-memory KnowledgeStore used by service
// tests. It mirrors the SQLite store's observable behaviour, including
// vector-dimension enforcement, without any disk state. Full-text
// search degrades to substring matching.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore is an in-memory implementation of driven.KnowledgeStore.
type KnowledgeStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk // document ID -> chunks in order
	order     []string                  // document IDs in insertion order
}

// NewKnowledgeStore creates a new in-memory knowledge store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// IsSourceImported reports whether a document with the given source
// path exists.
func (s *KnowledgeStore) IsSourceImported(_ context.Context, sourcePath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.SourcePath != "" && doc.SourcePath == sourcePath {
			return true, nil
		}
	}
	return false, nil
}

// ImportedSourcePaths returns the set of recorded source paths.
func (s *KnowledgeStore) ImportedSourcePaths(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make(map[string]struct{})
	for _, doc := range s.documents {
		if doc.SourcePath != "" {
			paths[doc.SourcePath] = struct{}{}
		}
	}
	return paths, nil
}

// InsertDocumentWithChunks stores a document and one chunk per fragment.
func (s *KnowledgeStore) InsertDocumentWithChunks(_ context.Context, doc *domain.Document, fragments []string) error {
	if doc == nil || doc.ID == "" || len(fragments) == 0 {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.documents[doc.ID] = *doc
	s.order = append(s.order, doc.ID)
	chunks := make([]domain.Chunk, len(fragments))
	for i, text := range fragments {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s-%04d", doc.ID, i),
			DocumentID: doc.ID,
			Text:       text,
		}
	}
	s.chunks[doc.ID] = chunks
	return nil
}

// CountUnembedded returns how many chunks lack a vector.
func (s *KnowledgeStore) CountUnembedded(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, chunks := range s.chunks {
		for _, c := range chunks {
			if c.Vector == nil {
				count++
			}
		}
	}
	return count, nil
}

// SelectUnembedded returns up to limit chunks without a vector, in
// insertion order.
func (s *KnowledgeStore) SelectUnembedded(_ context.Context, limit int) ([]domain.ChunkRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []domain.ChunkRef
	for _, docID := range s.order {
		for _, c := range s.chunks[docID] {
			if c.Vector != nil {
				continue
			}
			refs = append(refs, domain.ChunkRef{ID: c.ID, Text: c.Text})
			if len(refs) == limit {
				return refs, nil
			}
		}
	}
	return refs, nil
}

// WriteVector stores a chunk's embedding.
func (s *KnowledgeStore) WriteVector(_ context.Context, chunkID string, vector []float32) error {
	if len(vector) == 0 {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if dim := s.dimensionLocked(); dim > 0 && dim != len(vector) {
		return domain.ErrDimensionMismatch
	}
	for docID, chunks := range s.chunks {
		for i, c := range chunks {
			if c.ID == chunkID {
				s.chunks[docID][i].Vector = vector
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

// VectorDimension returns the established embedding dimensionality.
func (s *KnowledgeStore) VectorDimension(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensionLocked(), nil
}

func (s *KnowledgeStore) dimensionLocked() int {
	for _, chunks := range s.chunks {
		for _, c := range chunks {
			if c.Vector != nil {
				return len(c.Vector)
			}
		}
	}
	return 0
}

// GetDocument retrieves a document by ID.
func (s *KnowledgeStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document in insertion order.
func (s *KnowledgeStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.chunks[documentID]...), nil
}

// ListDocuments returns all documents, newest first.
func (s *KnowledgeStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, id := range s.order {
		docs = append(docs, s.documents[id])
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ImportDate.After(docs[j].ImportDate)
	})
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *KnowledgeStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	for i, docID := range s.order {
		if docID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SearchChunks returns chunks whose text contains the query,
// case-insensitively.
func (s *KnowledgeStore) SearchChunks(_ context.Context, query string, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(query)
	var result []domain.Chunk
	for _, docID := range s.order {
		for _, c := range s.chunks[docID] {
			if strings.Contains(strings.ToLower(c.Text), needle) {
				result = append(result, c)
				if len(result) == limit {
					return result, nil
				}
			}
		}
	}
	return result, nil
}

// Totals returns the number of documents and chunks.
func (s *KnowledgeStore) Totals(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunkCount := 0
	for _, chunks := range s.chunks {
		chunkCount += len(chunks)
	}
	return len(s.documents), chunkCount, nil
}

// Close is a no-op.
func (s *KnowledgeStore) Close() error {
	return nil
}
