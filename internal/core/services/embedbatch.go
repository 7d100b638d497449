package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
	"github.com/familiar-labs/knowledge-cli/internal/logger"
)

// MaxEmbedTextLen caps the text sent to the embedding model. Longer
// chunk text is still stored and searchable in full; only the vector
// is computed from the prefix.
const MaxEmbedTextLen = 512

// BatchEmbedder is the worker-side half of the backfill: it embeds one
// batch of chunks and reports how far it got. It runs inside the
// embed-worker subprocess, never in the orchestrating process.
type BatchEmbedder struct {
	store     driven.KnowledgeStore
	embedding driven.EmbeddingService
}

// NewBatchEmbedder creates a worker-side batch embedder.
func NewBatchEmbedder(store driven.KnowledgeStore, embedding driven.EmbeddingService) *BatchEmbedder {
	return &BatchEmbedder{
		store:     store,
		embedding: embedding,
	}
}

// EmbedBatch selects up to batchSize unembedded chunks, embeds each,
// and writes the vectors. Per-chunk embedding failures are skipped so
// one poison chunk cannot wedge the batch; storage failures are fatal
// because nothing later in the batch would fare better.
func (b *BatchEmbedder) EmbedBatch(ctx context.Context, batchSize int) (*driven.BatchResult, error) {
	refs, err := b.store.SelectUnembedded(ctx, batchSize)
	if err != nil {
		return nil, fmt.Errorf("selecting unembedded chunks: %w", err)
	}

	result := &driven.BatchResult{}
	want := b.embedding.Dimensions()

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Processed++

		text := ref.Text
		if len(text) > MaxEmbedTextLen {
			text = text[:MaxEmbedTextLen]
		}

		vector, err := b.embedding.Embed(ctx, text)
		if err != nil {
			logger.Warn("Embedding chunk %s failed: %v", ref.ID, err)
			continue
		}
		if len(vector) != want {
			logger.Warn("Embedding chunk %s returned %d dimensions, want %d", ref.ID, len(vector), want)
			continue
		}

		if err := b.store.WriteVector(ctx, ref.ID, vector); err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				logger.Warn("Skipping chunk %s: %v", ref.ID, err)
				continue
			}
			return nil, fmt.Errorf("writing vector for chunk %s: %w", ref.ID, err)
		}
		result.Embedded++
	}

	return result, nil
}
