package driven

import (
	"context"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

// ChunkStore persists chunks and serves similarity queries.
// Backed by Postgres with pgvector in production; an in-memory
// implementation exists for tests and DB-less operation.
type ChunkStore interface {
	// UpsertChunk stores or replaces a chunk by ID.
	UpsertChunk(ctx context.Context, chunk domain.Chunk) error

	// UpsertChunks stores all chunks for a source unit as one logical
	// operation.
	UpsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// ReplaceSourceChunks atomically swaps a source unit's chunk set:
	// the previous chunks are removed and the new ones written in the
	// same logical operation. On failure the previous set survives
	// untouched.
	ReplaceSourceChunks(ctx context.Context, sourceID string, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by ID, embedded or not.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunksBySource retrieves all chunks for a source unit, in
	// location order.
	GetChunksBySource(ctx context.Context, sourceID string) ([]domain.Chunk, error)

	// SimilaritySearch returns the k nearest chunks to the query vector
	// under cosine distance, best first. Ties are broken by most recent
	// indexed_at. Rows with a nil embedding are out of scope entirely.
	// Filters are conjunctive; zero-valued fields do not constrain.
	SimilaritySearch(ctx context.Context, query []float32, k int, filters domain.Filters) ([]domain.RetrievedChunk, error)

	// DeleteBySource removes all chunks for a source unit. Deleting a
	// source never leaves dangling chunks.
	DeleteBySource(ctx context.Context, sourceID string) error
}

// RecordStore persists extraction records, one per source unit.
type RecordStore interface {
	// UpsertRecord stores or fully replaces the record for its source
	// unit. Records are written complete or not at all.
	UpsertRecord(ctx context.Context, record domain.IndexedRecord) error

	// GetRecord retrieves the record for a source unit.
	GetRecord(ctx context.Context, sourceID string) (*domain.IndexedRecord, error)

	// FindRecordByTitle returns the best case-insensitive substring
	// match on title within a domain, most recently indexed on ties.
	// Returns domain.ErrNotFound when nothing matches.
	FindRecordByTitle(ctx context.Context, domainTag, title string) (*domain.IndexedRecord, error)

	// DeleteRecord removes the record for a source unit.
	DeleteRecord(ctx context.Context, sourceID string) error
}

// RepoStateStore persists per-repository indexing state.
type RepoStateStore interface {
	// GetState retrieves the state for a repository, or
	// domain.ErrNotFound before the first successful pass.
	GetState(ctx context.Context, repoID string) (*domain.RepositoryState, error)

	// SaveState replaces the state after a successful full pass.
	SaveState(ctx context.Context, state domain.RepositoryState) error
}

// Pinger is implemented by stores that can verify connectivity.
// The orchestrator treats a failed ping as fatal for the run.
type Pinger interface {
	Ping(ctx context.Context) error
}
