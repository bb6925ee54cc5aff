package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown content type with no
	// registered chunker and no usable fallback.
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrExtraction indicates the model response could not be reduced
	// to a schema-valid record even via fallback generation. No record
	// is persisted; any prior record is left untouched.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmptyResponse indicates the model returned an empty response.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrRateLimited indicates the upstream API rate limit was hit.
	// Retryable with backoff.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedInput indicates the upstream API rejected the input.
	// Not retryable.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic retrieval is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the language model service is not
	// configured. Extraction is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrStoreUnavailable indicates the vector store connection is down.
	// This is fatal for an indexing run.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates an embedding's length does not
	// match the store's configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
