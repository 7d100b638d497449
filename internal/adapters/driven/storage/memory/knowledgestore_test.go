package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
)

func TestKnowledgeStore_InsertAndRead(t *testing.T) {
	store := NewKnowledgeStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:         "doc-1",
		Filename:   "session one",
		ImportDate: time.Now(),
		SourceType: domain.SourceTypeSession,
		SourcePath: "/tmp/a.jsonl",
	}
	require.NoError(t, store.InsertDocumentWithChunks(ctx, doc, []string{"first chunk", "second chunk"}))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "session one", got.Filename)

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first chunk", chunks[0].Text)

	err = store.InsertDocumentWithChunks(ctx, doc, []string{"again"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestKnowledgeStore_Dedup(t *testing.T) {
	store := NewKnowledgeStore()
	ctx := context.Background()

	require.NoError(t, store.InsertDocumentWithChunks(ctx, &domain.Document{
		ID:         "doc-1",
		SourceType: domain.SourceTypeSession,
		SourcePath: "/tmp/a.jsonl",
	}, []string{"text"}))
	require.NoError(t, store.InsertDocumentWithChunks(ctx, &domain.Document{
		ID:         "doc-2",
		SourceType: domain.SourceTypeExport,
	}, []string{"text"}))

	imported, err := store.IsSourceImported(ctx, "/tmp/a.jsonl")
	require.NoError(t, err)
	assert.True(t, imported)

	paths, err := store.ImportedSourcePaths(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestKnowledgeStore_VectorLifecycle(t *testing.T) {
	store := NewKnowledgeStore()
	ctx := context.Background()

	require.NoError(t, store.InsertDocumentWithChunks(ctx, &domain.Document{
		ID:         "doc-1",
		SourceType: domain.SourceTypeFile,
	}, []string{"one", "two", "three"}))

	count, err := store.CountUnembedded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	refs, err := store.SelectUnembedded(ctx, 2)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "one", refs[0].Text)

	require.NoError(t, store.WriteVector(ctx, refs[0].ID, []float32{1, 2, 3}))

	err = store.WriteVector(ctx, refs[1].ID, []float32{1, 2})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	err = store.WriteVector(ctx, "missing", []float32{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dim, err := store.VectorDimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	count, err = store.CountUnembedded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestKnowledgeStore_DeleteAndTotals(t *testing.T) {
	store := NewKnowledgeStore()
	ctx := context.Background()

	require.NoError(t, store.InsertDocumentWithChunks(ctx, &domain.Document{
		ID:         "doc-1",
		SourceType: domain.SourceTypeFile,
	}, []string{"alpha beta", "gamma"}))

	docs, chunks, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, docs)
	assert.Equal(t, 2, chunks)

	results, err := store.SearchChunks(ctx, "ALPHA", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
	assert.ErrorIs(t, store.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)

	docs, chunks, err = store.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, docs)
	assert.Zero(t, chunks)
}
