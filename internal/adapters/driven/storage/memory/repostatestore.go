package memory

import (
	"context"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// repoStateStore implements driven.RepoStateStore over the shared store.
type repoStateStore struct {
	store *Store
}

var _ driven.RepoStateStore = (*repoStateStore)(nil)

// GetState retrieves the indexing state for a repository.
func (r *repoStateStore) GetState(_ context.Context, repoID string) (*domain.RepositoryState, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	state, ok := r.store.states[repoID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// SaveState replaces the state after a successful full pass.
func (r *repoStateStore) SaveState(_ context.Context, state domain.RepositoryState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.states[state.RepoID] = state
	return nil
}
