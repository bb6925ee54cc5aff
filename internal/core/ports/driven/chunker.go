package driven

import (
	"context"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

// Chunker splits a source unit into an ordered sequence of bounded
// chunks. Each chunker handles specific content types.
type Chunker interface {
	// ContentTypes returns the content types this chunker handles.
	ContentTypes() []domain.ContentType

	// Priority returns the selection priority (higher = preferred).
	// Structure-aware chunkers should return 50-89.
	// Fallback window chunkers should return 1-9.
	Priority() int

	// Chunk splits the unit. An empty unit yields an empty, non-nil-safe
	// sequence and no error. A returned error means this chunker could
	// not parse the unit; the registry falls back to line windows.
	Chunk(ctx context.Context, unit domain.SourceUnit) ([]domain.Chunk, error)
}

// ChunkerRegistry selects and runs the chunker for a source unit.
type ChunkerRegistry interface {
	// Chunk runs the highest-priority chunker registered for the unit's
	// content type. A parse error from the selected chunker is logged
	// and the unit falls back to line-window chunking; the error is not
	// propagated so one bad unit never aborts a batch.
	Chunk(ctx context.Context, unit domain.SourceUnit) ([]domain.Chunk, error)
}
