package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
	"github.com/mnemo-labs/recall/internal/core/ports/driving"
	"github.com/mnemo-labs/recall/internal/extract"
	"github.com/mnemo-labs/recall/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// IndexerService coordinates the indexing pipeline: chunking, embedding,
// extraction and persistence. Embedding and extraction failures are
// contained so a unit still reaches Persisted with whatever could be
// produced; only chunk persistence failures fail a unit.
type IndexerService struct {
	chunker    driven.ChunkerRegistry
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	chunks     driven.ChunkStore
	records    driven.RecordStore
	repoStates driven.RepoStateStore
	extractor  *extract.Extractor
	pinger     driven.Pinger
	domainTag  string
}

// IndexerOption configures an IndexerService.
type IndexerOption func(*IndexerService)

// WithDomain sets the corpus partition written into extraction records.
func WithDomain(tag string) IndexerOption {
	return func(s *IndexerService) { s.domainTag = tag }
}

// WithPinger sets a connectivity check run before batch operations.
// A failed ping aborts the run before any unit is touched.
func WithPinger(p driven.Pinger) IndexerOption {
	return func(s *IndexerService) { s.pinger = p }
}

// NewIndexer creates an indexer service.
// The embedder and llm are optional; when nil, chunks are persisted
// without embeddings and no extraction records are produced.
func NewIndexer(
	chunker driven.ChunkerRegistry,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	chunks driven.ChunkStore,
	records driven.RecordStore,
	repoStates driven.RepoStateStore,
	opts ...IndexerOption,
) *IndexerService {
	s := &IndexerService{
		chunker:    chunker,
		embedder:   embedder,
		llm:        llm,
		chunks:     chunks,
		records:    records,
		repoStates: repoStates,
		extractor:  extract.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// unitOutcome carries the per-unit counts that feed a RunSummary.
type unitOutcome struct {
	state           domain.UnitState
	chunksPersisted int
	chunksNoEmbed   int
	recordPersisted bool
	err             error
}

// IndexUnit runs one source unit through the pipeline.
func (s *IndexerService) IndexUnit(ctx context.Context, unit domain.SourceUnit) (domain.UnitState, error) {
	outcome := s.processUnit(ctx, unit)
	return outcome.state, outcome.err
}

// IndexAll runs a batch of source units sequentially. Units whose
// revision marker matches the persisted one are skipped. Unit failures
// are contained in the summary; only store unavailability aborts the
// run.
func (s *IndexerService) IndexAll(ctx context.Context, units []domain.SourceUnit) (*domain.RunSummary, error) {
	if err := s.ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	summary := &domain.RunSummary{}
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		skip, err := s.unitUnchanged(ctx, unit)
		if err != nil {
			logger.Warn("revision check for %s failed: %v", unit.SourceID, err)
		}
		if skip {
			summary.Skipped++
			continue
		}

		s.runUnit(ctx, unit, summary)
	}

	logger.Info("indexing run complete: %d processed, %d skipped, %d failed, %d chunks",
		summary.Processed, summary.Skipped, summary.Failed, summary.ChunksPersisted)
	return summary, nil
}

// IndexRepository runs units belonging to one repository with
// incremental skip, and advances the recorded state after a clean pass.
func (s *IndexerService) IndexRepository(ctx context.Context, repo domain.RepositoryState, units []domain.SourceUnit) (*domain.RunSummary, error) {
	if err := s.ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	prev, err := s.repoStates.GetState(ctx, repo.RepoID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get repository state: %w", err)
	}

	summary := &domain.RunSummary{}

	// Fast path: nothing changed since the last recorded pass.
	if prev != nil && repo.Revision != "" && prev.Revision == repo.Revision {
		summary.Skipped = len(units)
		logger.Info("repository %s unchanged at revision %s, skipping %d units",
			repo.RepoID, repo.Revision, len(units))
		return summary, nil
	}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		skip, err := s.unitUnchanged(ctx, unit)
		if err != nil {
			logger.Warn("revision check for %s failed: %v", unit.SourceID, err)
		}
		if skip {
			summary.Skipped++
			continue
		}

		s.runUnit(ctx, unit, summary)
	}

	if summary.Failed == 0 {
		state := domain.RepositoryState{
			RepoID:        repo.RepoID,
			Location:      repo.Location,
			Revision:      repo.Revision,
			LastIndexedAt: time.Now().UTC(),
		}
		if err := s.repoStates.SaveState(ctx, state); err != nil {
			return summary, fmt.Errorf("save repository state: %w", err)
		}
	} else {
		logger.Warn("repository %s pass had %d failures, state not advanced",
			repo.RepoID, summary.Failed)
	}

	logger.Info("repository %s: %d processed, %d skipped, %d failed",
		repo.RepoID, summary.Processed, summary.Skipped, summary.Failed)
	return summary, nil
}

// runUnit processes one unit and folds the outcome into the summary.
func (s *IndexerService) runUnit(ctx context.Context, unit domain.SourceUnit, summary *domain.RunSummary) {
	outcome := s.processUnit(ctx, unit)

	summary.ChunksPersisted += outcome.chunksPersisted
	summary.ChunksWithoutEmbedding += outcome.chunksNoEmbed
	if outcome.recordPersisted {
		summary.RecordsPersisted++
	}

	if outcome.state == domain.UnitFailed {
		summary.Failed++
		summary.Failures = append(summary.Failures, domain.UnitFailure{
			SourceID: unit.SourceID,
			State:    outcome.state,
			Err:      outcome.err,
		})
		logger.Error("indexing %s failed: %v", unit.SourceID, outcome.err)
		return
	}
	summary.Processed++
}

// processUnit walks one unit through the pipeline states.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *IndexerService) processUnit(ctx context.Context, unit domain.SourceUnit) unitOutcome {
	if unit.SourceID == "" {
		return unitOutcome{
			state: domain.UnitFailed,
			err:   fmt.Errorf("%w: unit has no source ID", domain.ErrInvalidInput),
		}
	}

	// 1. Chunk. Zero chunks is a valid outcome for empty content.
	chunks, err := s.chunker.Chunk(ctx, unit)
	if err != nil {
		return unitOutcome{
			state: domain.UnitFailed,
			err:   fmt.Errorf("chunking %s: %w", unit.SourceID, err),
		}
	}

	now := time.Now().UTC()
	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = uuid.NewString()
		}
		chunks[i].SourceID = unit.SourceID
		chunks[i].IndexedAt = now
		if unit.Revision != "" {
			if chunks[i].Metadata == nil {
				chunks[i].Metadata = map[string]any{}
			}
			chunks[i].Metadata["revision"] = unit.Revision
		}
	}
	logger.Debug("unit %s: %d chunks", unit.SourceID, len(chunks))

	// 2. Embed. Per-chunk failures leave a nil embedding; the chunk is
	// still persisted and reachable by exact lookup.
	withoutEmbedding := 0
	if s.embedder != nil && len(chunks) > 0 {
		withoutEmbedding = s.embedChunks(ctx, chunks)
	}

	// 3. Persist chunks, atomically replacing any previous set for this
	// source. On failure the previous set is still in place.
	if err := s.chunks.ReplaceSourceChunks(ctx, unit.SourceID, chunks); err != nil {
		return unitOutcome{
			state: domain.UnitFailed,
			err:   fmt.Errorf("persisting chunks for %s: %w", unit.SourceID, err),
		}
	}

	// 4. Extract a record. Failures here never fail the unit.
	recordPersisted := s.extractRecord(ctx, unit)

	return unitOutcome{
		state:           domain.UnitPersisted,
		chunksPersisted: len(chunks),
		chunksNoEmbed:   withoutEmbedding,
		recordPersisted: recordPersisted,
	}
}

// embedChunks fills in embeddings and returns how many chunks were left
// without one after retries were exhausted.
func (s *IndexerService) embedChunks(ctx context.Context, chunks []domain.Chunk) int {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	failed := 0
	if batcher, ok := s.embedder.(driven.BatchEmbedder); ok {
		results := batcher.EmbedBatchPartial(ctx, texts)
		for i, result := range results {
			if result.Err != nil {
				logger.Warn("embedding chunk %s failed: %v", chunks[i].ID, result.Err)
				failed++
				continue
			}
			chunks[i].Embedding = result.Embedding
		}
		return failed
	}

	for i := range chunks {
		embedding, err := s.embedder.Embed(ctx, texts[i])
		if err != nil {
			logger.Warn("embedding chunk %s failed: %v", chunks[i].ID, err)
			failed++
			continue
		}
		chunks[i].Embedding = embedding
	}
	return failed
}

// extractRecord generates and persists the structured record for a
// unit. Returns true only when a record was written.
func (s *IndexerService) extractRecord(ctx context.Context, unit domain.SourceUnit) bool {
	if s.llm == nil || strings.TrimSpace(unit.Text) == "" {
		return false
	}

	prompt := extract.BuildPrompt(unit.Title, unit.Project, unit.Text)
	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("extraction generate for %s failed: %v", unit.SourceID, err)
		return false
	}

	record, err := s.extractor.Extract(response, extract.Defaults{
		SourceID: unit.SourceID,
		Domain:   s.domainTag,
		Title:    unit.Title,
		Project:  unit.Project,
		Model:    s.llm.ModelName(),
	})
	if err != nil {
		// Already logged with the offending response by the extractor.
		return false
	}

	if err := s.records.UpsertRecord(ctx, *record); err != nil {
		logger.Warn("persisting record for %s failed: %v", unit.SourceID, err)
		return false
	}

	if s.embedder != nil {
		s.embedRecordSummary(ctx, unit, record)
	}
	return true
}

// embedRecordSummary persists the record's canonical text as one more
// embedded chunk, so the record is reachable by similarity search and
// not only by title lookup. Failures are logged and contained.
func (s *IndexerService) embedRecordSummary(ctx context.Context, unit domain.SourceUnit, record *domain.IndexedRecord) {
	text := record.CanonicalText()
	if text == "" {
		return
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("embedding record summary for %s failed: %v", unit.SourceID, err)
		return
	}

	chunk := domain.Chunk{
		ID:          uuid.NewString(),
		SourceID:    unit.SourceID,
		ContentType: unit.ContentType,
		Text:        text,
		Location:    domain.Location{Path: unit.Location.Path},
		Metadata:    map[string]any{"record_summary": true},
		Embedding:   embedding,
		IndexedAt:   time.Now().UTC(),
	}
	if unit.Revision != "" {
		chunk.Metadata["revision"] = unit.Revision
	}

	if err := s.chunks.UpsertChunk(ctx, chunk); err != nil {
		logger.Warn("persisting record summary chunk for %s failed: %v", unit.SourceID, err)
	}
}

// RemoveSource deletes a source unit's chunks and record. Both sides
// are removed so no dangling chunks or orphaned record survive.
func (s *IndexerService) RemoveSource(ctx context.Context, sourceID string) error {
	if sourceID == "" {
		return fmt.Errorf("%w: empty source ID", domain.ErrInvalidInput)
	}
	if err := s.chunks.DeleteBySource(ctx, sourceID); err != nil {
		return fmt.Errorf("removing chunks for %s: %w", sourceID, err)
	}
	if err := s.records.DeleteRecord(ctx, sourceID); err != nil {
		return fmt.Errorf("removing record for %s: %w", sourceID, err)
	}
	logger.Info("removed %s from the index", sourceID)
	return nil
}

// unitUnchanged reports whether the unit's revision matches what was
// persisted with its chunks on a previous pass.
func (s *IndexerService) unitUnchanged(ctx context.Context, unit domain.SourceUnit) (bool, error) {
	if unit.Revision == "" {
		return false, nil
	}

	existing, err := s.chunks.GetChunksBySource(ctx, unit.SourceID)
	if err != nil || len(existing) == 0 {
		return false, err
	}

	rev, _ := existing[0].Metadata["revision"].(string)
	return rev == unit.Revision, nil
}

func (s *IndexerService) ping(ctx context.Context) error {
	if s.pinger == nil {
		return nil
	}
	return s.pinger.Ping(ctx)
}
