package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// repoStateStore implements driven.RepoStateStore.
type repoStateStore struct {
	store *Store
}

var _ driven.RepoStateStore = (*repoStateStore)(nil)

// GetState retrieves the indexing state for a repository.
func (r *repoStateStore) GetState(ctx context.Context, repoID string) (*domain.RepositoryState, error) {
	row := r.store.pool.QueryRow(ctx, `
		SELECT repo_id, location, revision, last_indexed_at
		FROM repo_states WHERE repo_id = $1
	`, repoID)

	var state domain.RepositoryState
	if err := row.Scan(&state.RepoID, &state.Location, &state.Revision, &state.LastIndexedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning repository state: %w", err)
	}
	return &state, nil
}

// SaveState replaces the state after a successful full pass.
func (r *repoStateStore) SaveState(ctx context.Context, state domain.RepositoryState) error {
	lastIndexedAt := state.LastIndexedAt
	if lastIndexedAt.IsZero() {
		lastIndexedAt = time.Now().UTC()
	}

	_, err := r.store.pool.Exec(ctx, `
		INSERT INTO repo_states (repo_id, location, revision, last_indexed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (repo_id) DO UPDATE SET
			location = EXCLUDED.location,
			revision = EXCLUDED.revision,
			last_indexed_at = EXCLUDED.last_indexed_at
	`, state.RepoID, state.Location, state.Revision, lastIndexedAt)

	if err != nil {
		return fmt.Errorf("saving repository state %s: %w", state.RepoID, err)
	}
	return nil
}
