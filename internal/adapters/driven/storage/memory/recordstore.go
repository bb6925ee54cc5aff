package memory

import (
	"context"
	"strings"
	"time"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore over the shared store.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// UpsertRecord stores or fully replaces the record for its source unit.
func (r *recordStore) UpsertRecord(_ context.Context, record domain.IndexedRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if record.IndexedAt.IsZero() {
		record.IndexedAt = time.Now().UTC()
	}
	r.store.records[record.SourceID] = record
	return nil
}

// GetRecord retrieves the record for a source unit.
func (r *recordStore) GetRecord(_ context.Context, sourceID string) (*domain.IndexedRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	record, ok := r.store.records[sourceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// FindRecordByTitle returns the best case-insensitive substring match
// on title within a domain. Exact matches win over substring matches;
// remaining ties go to the most recently indexed record.
func (r *recordStore) FindRecordByTitle(_ context.Context, domainTag, title string) (*domain.IndexedRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	needle := strings.ToLower(title)
	var best *domain.IndexedRecord
	var bestExact bool

	for _, record := range r.store.records {
		if record.Domain != domainTag {
			continue
		}
		haystack := strings.ToLower(record.Title)
		if !strings.Contains(haystack, needle) {
			continue
		}
		exact := haystack == needle

		switch {
		case best == nil,
			exact && !bestExact,
			exact == bestExact && record.IndexedAt.After(best.IndexedAt):
			rec := record
			best = &rec
			bestExact = exact
		}
	}

	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

// DeleteRecord removes the record for a source unit.
func (r *recordStore) DeleteRecord(_ context.Context, sourceID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.records, sourceID)
	return nil
}
