package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
	"github.com/mnemo-labs/recall/internal/core/ports/driving"
	"github.com/mnemo-labs/recall/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

const (
	// DefaultTopK is the semantic result count when the caller asks for
	// none in particular.
	DefaultTopK = 3

	// MaxTopK is the hard cap on semantic results per query.
	MaxTopK = 5
)

// quotedPattern matches a double- or single-quoted literal in a query.
var quotedPattern = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)

// RetrievalService routes queries between exact title lookup and
// semantic similarity search. Infrastructure failures mid-query are
// contained: the caller gets empty results and the cause is logged,
// so a degraded index never breaks the surface above it.
type RetrievalService struct {
	embedder driven.EmbeddingService
	chunks   driven.ChunkStore
	records  driven.RecordStore
}

// NewRetrieval creates a retrieval service. The embedder may be nil,
// in which case semantic queries return empty results.
func NewRetrieval(
	embedder driven.EmbeddingService,
	chunks driven.ChunkStore,
	records driven.RecordStore,
) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		chunks:   chunks,
		records:  records,
	}
}

// Retrieve answers a query scoped to a domain. A quoted literal routes
// to exact title lookup; anything else routes to semantic search.
func (s *RetrievalService) Retrieve(ctx context.Context, domainTag, query string, opts domain.RetrievalOptions) (*domain.RankedResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	if title, ok := quotedLiteral(query); ok {
		return s.retrieveExact(ctx, domainTag, title), nil
	}
	return s.retrieveSemantic(ctx, domainTag, query, opts), nil
}

// retrieveExact looks up a record by title within the domain.
func (s *RetrievalService) retrieveExact(ctx context.Context, domainTag, title string) *domain.RankedResults {
	results := &domain.RankedResults{Mode: domain.RetrievalExact}

	record, err := s.records.FindRecordByTitle(ctx, domainTag, title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			results.NotFound = true
			logger.Debug("exact retrieval: no record titled %q in %q", title, domainTag)
			return results
		}
		logger.Error("exact retrieval for %q failed: %v", title, err)
		return results
	}

	results.Record = record
	return results
}

// retrieveSemantic embeds the query and ranks the nearest chunks.
func (s *RetrievalService) retrieveSemantic(ctx context.Context, domainTag, query string, opts domain.RetrievalOptions) *domain.RankedResults {
	results := &domain.RankedResults{Mode: domain.RetrievalSemantic}

	if s.embedder == nil {
		logger.Warn("semantic retrieval skipped: %v", domain.ErrEmbeddingUnavailable)
		return results
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Error("semantic retrieval: embedding query failed: %v", err)
		return results
	}

	filters := domain.Filters{
		ContentType: opts.ContentType,
		SourceID:    opts.SourceID,
		Domain:      domainTag,
		DeployTag:   opts.DeployTag,
	}

	hits, err := s.chunks.SimilaritySearch(ctx, vector, topK, filters)
	if err != nil {
		logger.Error("semantic retrieval: similarity search failed: %v", err)
		return results
	}

	results.Chunks = hits
	logger.Debug("semantic retrieval: %d hits for %q in %q", len(hits), query, domainTag)
	return results
}

// quotedLiteral extracts the first quoted segment from a query. A
// quoted segment signals an exact title lookup.
func quotedLiteral(query string) (string, bool) {
	m := quotedPattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}
