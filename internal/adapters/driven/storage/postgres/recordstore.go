package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// UpsertRecord stores or fully replaces the record for its source unit.
func (r *recordStore) UpsertRecord(ctx context.Context, record domain.IndexedRecord) error {
	indexedAt := record.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now().UTC()
	}

	_, err := r.store.pool.Exec(ctx, `
		INSERT INTO records (source_id, domain, title, project, summary, long_summary, tags, entities, topics, excerpt, schema_version, model, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (source_id) DO UPDATE SET
			domain = EXCLUDED.domain,
			title = EXCLUDED.title,
			project = EXCLUDED.project,
			summary = EXCLUDED.summary,
			long_summary = EXCLUDED.long_summary,
			tags = EXCLUDED.tags,
			entities = EXCLUDED.entities,
			topics = EXCLUDED.topics,
			excerpt = EXCLUDED.excerpt,
			schema_version = EXCLUDED.schema_version,
			model = EXCLUDED.model,
			indexed_at = EXCLUDED.indexed_at
	`, record.SourceID, record.Domain, record.Title, record.Project,
		record.Summary, record.LongSummary,
		emptySlice(record.Tags), emptySlice(record.Entities), emptySlice(record.Topics),
		record.Excerpt, record.SchemaVersion, record.Model, indexedAt)

	if err != nil {
		return fmt.Errorf("upserting record %s: %w", record.SourceID, err)
	}
	return nil
}

const selectRecordSQL = `
	SELECT source_id, domain, title, project, summary, long_summary, tags, entities, topics, excerpt, schema_version, model, indexed_at
	FROM records
`

// GetRecord retrieves the record for a source unit.
func (r *recordStore) GetRecord(ctx context.Context, sourceID string) (*domain.IndexedRecord, error) {
	row := r.store.pool.QueryRow(ctx, selectRecordSQL+" WHERE source_id = $1", sourceID)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return record, nil
}

// FindRecordByTitle returns the best case-insensitive substring match
// on title within a domain. Exact title matches win over substring
// matches; remaining ties go to the most recently indexed record.
func (r *recordStore) FindRecordByTitle(ctx context.Context, domainTag, title string) (*domain.IndexedRecord, error) {
	row := r.store.pool.QueryRow(ctx, selectRecordSQL+`
		WHERE domain = $1 AND lower(title) LIKE '%' || lower($2) || '%' ESCAPE '\'
		ORDER BY (lower(title) = lower($3)) DESC, indexed_at DESC
		LIMIT 1
	`, domainTag, escapeLike(title), title)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return record, nil
}

// escapeLike neutralises LIKE metacharacters so a title containing
// '%' or '_' matches literally, the way the substring contract reads.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// DeleteRecord removes the record for a source unit.
func (r *recordStore) DeleteRecord(ctx context.Context, sourceID string) error {
	if _, err := r.store.pool.Exec(ctx, "DELETE FROM records WHERE source_id = $1", sourceID); err != nil {
		return fmt.Errorf("deleting record %s: %w", sourceID, err)
	}
	return nil
}

func scanRecord(row pgx.Row) (*domain.IndexedRecord, error) {
	var record domain.IndexedRecord
	if err := row.Scan(&record.SourceID, &record.Domain, &record.Title, &record.Project,
		&record.Summary, &record.LongSummary,
		&record.Tags, &record.Entities, &record.Topics,
		&record.Excerpt, &record.SchemaVersion, &record.Model, &record.IndexedAt); err != nil {
		return nil, err
	}
	return &record, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
