package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, semantic retrieval is disabled.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - The batching decorator, which wraps either with rate limiting
//     and retries
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// The returned vector always has Dimensions() elements.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// It fails as a whole on the first unrecoverable error; callers that
	// need per-item outcomes use BatchEmbedder.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// This must match the vector store's configured dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// BatchEmbedder is the partial-success batch contract. A failed item
// does not abort the batch: its slot carries the error and every other
// slot carries a vector.
type BatchEmbedder interface {
	// EmbedBatchPartial embeds texts and reports per-item outcomes.
	// The result slice always has len(texts) entries in input order.
	EmbedBatchPartial(ctx context.Context, texts []string) []BatchResult
}

// BatchResult is the outcome for one text in a partial batch.
type BatchResult struct {
	// Embedding is the vector, nil when Err is set.
	Embedding []float32

	// Err is the typed failure for this item, nil on success.
	Err error
}
