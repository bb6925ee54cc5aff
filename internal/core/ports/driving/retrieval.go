package driving

import (
	"context"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

// Retriever routes queries to the right retrieval mode and returns
// ranked results.
type Retriever interface {
	// Retrieve answers a query scoped to a domain. A quoted literal in
	// the query routes to exact title lookup; anything else routes to
	// semantic search. Infrastructure failures mid-query yield empty
	// results with a logged cause, never an error, so callers can fall
	// back to their default behaviour.
	Retrieve(ctx context.Context, domainTag, query string, opts domain.RetrievalOptions) (*domain.RankedResults, error)
}
