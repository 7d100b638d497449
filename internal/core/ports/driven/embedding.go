package driven

import "context"

// EmbeddingService generates vector embeddings from text. It is the
// opaque external capability the worker process drives; the importer
// and orchestrator never call it directly.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Any local inference server with a compatible API
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	// Fixed per model; the store enforces a single dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable. Workers call this before
	// touching the store so an unavailable capability is reported as a
	// structured error, not a crash.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
