package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

const upsertChunkSQL = `
	INSERT INTO chunks (id, source_id, content_type, body, location, metadata, embedding, deploy_tags, indexed_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		source_id = EXCLUDED.source_id,
		content_type = EXCLUDED.content_type,
		body = EXCLUDED.body,
		location = EXCLUDED.location,
		metadata = EXCLUDED.metadata,
		embedding = EXCLUDED.embedding,
		deploy_tags = EXCLUDED.deploy_tags,
		updated_at = EXCLUDED.updated_at
`

// UpsertChunk stores or replaces a chunk by ID.
func (c *chunkStore) UpsertChunk(ctx context.Context, chunk domain.Chunk) error {
	args, err := chunkArgs(chunk)
	if err != nil {
		return err
	}
	if _, err := c.store.pool.Exec(ctx, upsertChunkSQL, args...); err != nil {
		return fmt.Errorf("upserting chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// UpsertChunks stores all chunks in a single transaction so a source
// unit's chunk set is written complete or not at all.
func (c *chunkStore) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, chunk := range chunks {
		args, err := chunkArgs(chunk)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upsertChunkSQL, args...); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// ReplaceSourceChunks swaps a source unit's chunk set in one
// transaction. A failure anywhere rolls back to the previous set.
func (c *chunkStore) ReplaceSourceChunks(ctx context.Context, sourceID string, chunks []domain.Chunk) error {
	tx, err := c.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE source_id = $1`, sourceID); err != nil {
		return fmt.Errorf("clearing chunks for %s: %w", sourceID, err)
	}

	for _, chunk := range chunks {
		args, err := chunkArgs(chunk)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upsertChunkSQL, args...); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing chunk replacement for %s: %w", sourceID, err)
	}
	return nil
}

const selectChunkSQL = `
	SELECT id, source_id, content_type, body, location, metadata, embedding, deploy_tags, indexed_at, updated_at
	FROM chunks
`

// GetChunk retrieves a chunk by ID.
func (c *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := c.store.pool.QueryRow(ctx, selectChunkSQL+" WHERE id = $1", id)

	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	return chunk, nil
}

// GetChunksBySource retrieves all chunks for a source unit, ordered by
// their position within the source.
func (c *chunkStore) GetChunksBySource(ctx context.Context, sourceID string) ([]domain.Chunk, error) {
	rows, err := c.store.pool.Query(ctx, selectChunkSQL+`
		WHERE source_id = $1
		ORDER BY (location->>'StartLine')::int NULLS FIRST,
		         (location->>'StartMessage')::int NULLS FIRST,
		         id
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

// SimilaritySearch returns the k nearest embedded chunks to the query
// vector under cosine distance. Filters are conjunctive; ties on
// distance go to the most recently indexed row.
func (c *chunkStore) SimilaritySearch(ctx context.Context, query []float32, k int, filters domain.Filters) ([]domain.RetrievedChunk, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	sql := `
		SELECT id, source_id, content_type, body, location, metadata, embedding, deploy_tags, indexed_at, updated_at,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE embedding IS NOT NULL
	`
	args := []any{pgvector.NewVector(query)}

	if filters.ContentType != "" {
		args = append(args, string(filters.ContentType))
		sql += fmt.Sprintf(" AND content_type = $%d", len(args))
	}
	if filters.SourceID != "" {
		args = append(args, filters.SourceID)
		sql += fmt.Sprintf(" AND source_id = $%d", len(args))
	}
	if filters.DeployTag != "" {
		args = append(args, filters.DeployTag)
		sql += fmt.Sprintf(" AND deploy_tags @> ARRAY[$%d]", len(args))
	}
	if filters.Domain != "" {
		args = append(args, filters.Domain)
		sql += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM records r WHERE r.source_id = chunks.source_id AND r.domain = $%d)", len(args))
	}

	args = append(args, k)
	sql += fmt.Sprintf(" ORDER BY embedding <=> $1, indexed_at DESC LIMIT $%d", len(args))

	rows, err := c.store.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var (
			chunk     domain.Chunk
			locJSON   []byte
			metaJSON  []byte
			embedding *pgvector.Vector
			updatedAt *time.Time
			score     float64
		)
		if err := rows.Scan(&chunk.ID, &chunk.SourceID, &chunk.ContentType, &chunk.Text,
			&locJSON, &metaJSON, &embedding, &chunk.DeployTags, &chunk.IndexedAt, &updatedAt, &score); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := decodeChunkJSON(&chunk, locJSON, metaJSON); err != nil {
			return nil, err
		}
		if embedding != nil {
			chunk.Embedding = embedding.Slice()
		}
		if updatedAt != nil {
			chunk.UpdatedAt = *updatedAt
		}
		results = append(results, domain.RetrievedChunk{Chunk: chunk, Score: score})
	}
	return results, rows.Err()
}

// DeleteBySource removes all chunks for a source unit.
func (c *chunkStore) DeleteBySource(ctx context.Context, sourceID string) error {
	if _, err := c.store.pool.Exec(ctx, "DELETE FROM chunks WHERE source_id = $1", sourceID); err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", sourceID, err)
	}
	return nil
}

func chunkArgs(chunk domain.Chunk) ([]any, error) {
	locJSON, err := json.Marshal(chunk.Location)
	if err != nil {
		return nil, fmt.Errorf("marshalling location: %w", err)
	}
	metaJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}

	var embedding any
	if chunk.Embedding != nil {
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	tags := chunk.DeployTags
	if tags == nil {
		tags = []string{}
	}

	indexedAt := chunk.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now().UTC()
	}

	var updatedAt any
	if !chunk.UpdatedAt.IsZero() {
		updatedAt = chunk.UpdatedAt
	}

	return []any{
		chunk.ID, chunk.SourceID, string(chunk.ContentType), chunk.Text,
		locJSON, metaJSON, embedding, tags, indexedAt, updatedAt,
	}, nil
}

// scanChunk reads one chunk row from the base select.
func scanChunk(row pgx.Row) (*domain.Chunk, error) {
	var (
		chunk     domain.Chunk
		locJSON   []byte
		metaJSON  []byte
		embedding *pgvector.Vector
		updatedAt *time.Time
	)
	if err := row.Scan(&chunk.ID, &chunk.SourceID, &chunk.ContentType, &chunk.Text,
		&locJSON, &metaJSON, &embedding, &chunk.DeployTags, &chunk.IndexedAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := decodeChunkJSON(&chunk, locJSON, metaJSON); err != nil {
		return nil, err
	}
	if embedding != nil {
		chunk.Embedding = embedding.Slice()
	}
	if updatedAt != nil {
		chunk.UpdatedAt = *updatedAt
	}
	return &chunk, nil
}

func decodeChunkJSON(chunk *domain.Chunk, locJSON, metaJSON []byte) error {
	if len(locJSON) > 0 {
		if err := json.Unmarshal(locJSON, &chunk.Location); err != nil {
			return fmt.Errorf("unmarshaling location: %w", err)
		}
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &chunk.Metadata); err != nil {
			return fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return nil
}
