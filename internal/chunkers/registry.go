// Package chunkers provides implementations of the Chunker interface
// for each content type, plus the registry that selects between them.
//
// Chunkers are registered with the Registry at startup. The registry
// owns the failure policy: a parse error from a structure-aware chunker
// falls back to line-window chunking for that unit only, so one
// unparseable file never aborts a batch.
package chunkers

import (
	"context"
	"sort"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
	"github.com/mnemo-labs/recall/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ChunkerRegistry = (*Registry)(nil)

// Registry selects the chunker for a content type and applies the
// window fallback when chunking fails.
type Registry struct {
	byType   map[domain.ContentType][]driven.Chunker
	fallback driven.Chunker
}

// NewRegistry creates a registry with the given fallback chunker.
// The fallback must accept any content type; the window chunker does.
func NewRegistry(fallback driven.Chunker) *Registry {
	return &Registry{
		byType:   make(map[domain.ContentType][]driven.Chunker),
		fallback: fallback,
	}
}

// Register adds a chunker for each content type it declares.
// Chunkers for the same type are tried in priority order.
func (r *Registry) Register(c driven.Chunker) {
	for _, ct := range c.ContentTypes() {
		r.byType[ct] = append(r.byType[ct], c)
		sort.SliceStable(r.byType[ct], func(i, j int) bool {
			return r.byType[ct][i].Priority() > r.byType[ct][j].Priority()
		})
	}
}

// Chunk runs the unit through the best registered chunker, falling back
// to the window chunker on parse errors. Unregistered content types go
// straight to the fallback.
func (r *Registry) Chunk(ctx context.Context, unit domain.SourceUnit) ([]domain.Chunk, error) {
	for _, c := range r.byType[unit.ContentType] {
		chunks, err := c.Chunk(ctx, unit)
		if err == nil {
			return chunks, nil
		}
		logger.Warn("chunker for %s failed on %s, falling back to line windows: %v",
			unit.ContentType, unit.SourceID, err)
	}

	return r.fallback.Chunk(ctx, unit)
}
