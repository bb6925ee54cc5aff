package driving

import (
	"context"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

// Indexer coordinates chunking, embedding, extraction and persistence
// for source units.
type Indexer interface {
	// IndexUnit runs one source unit through the pipeline to its
	// Persisted or Failed conclusion. Extraction failures and per-chunk
	// embedding failures are contained, not returned; only store
	// unavailability or chunk persistence failure fail the unit.
	IndexUnit(ctx context.Context, unit domain.SourceUnit) (domain.UnitState, error)

	// IndexAll runs a batch of source units sequentially and reports a
	// per-unit summary. Unit failures are contained in the summary; the
	// returned error is non-nil only when the store itself is
	// unavailable, which aborts the run.
	IndexAll(ctx context.Context, units []domain.SourceUnit) (*domain.RunSummary, error)

	// IndexRepository runs units belonging to one repository with
	// incremental skip: units whose revision matches the recorded
	// repository state are not re-chunked, and the state is advanced
	// after a successful pass.
	IndexRepository(ctx context.Context, repo domain.RepositoryState, units []domain.SourceUnit) (*domain.RunSummary, error)

	// RemoveSource deletes a source unit's chunks and record from the
	// index. Removing an unknown source is not an error.
	RemoveSource(ctx context.Context, sourceID string) error
}
