// Package memory provides in-memory store implementations used in
// tests and for DB-less operation. Similarity search is an exact
// cosine scan, so results are deterministic for small corpora.
package memory

import (
	"context"
	"sync"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// Store holds all in-memory tables behind one lock so the chunk view
// can consult records when a domain filter is applied.
type Store struct {
	mu      sync.RWMutex
	chunks  map[string]domain.Chunk
	records map[string]domain.IndexedRecord
	states  map[string]domain.RepositoryState
}

var _ driven.Pinger = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		chunks:  make(map[string]domain.Chunk),
		records: make(map[string]domain.IndexedRecord),
		states:  make(map[string]domain.RepositoryState),
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// ChunkStore returns a ChunkStore view of this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// RecordStore returns a RecordStore view of this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// RepoStateStore returns a RepoStateStore view of this store.
func (s *Store) RepoStateStore() driven.RepoStateStore {
	return &repoStateStore{store: s}
}
