package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

// chunkStore implements driven.ChunkStore over the shared store.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// UpsertChunk stores or replaces a chunk by ID.
func (c *chunkStore) UpsertChunk(_ context.Context, chunk domain.Chunk) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.upsertLocked(chunk)
	return nil
}

// UpsertChunks stores all chunks under one lock acquisition.
func (c *chunkStore) UpsertChunks(_ context.Context, chunks []domain.Chunk) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	for _, chunk := range chunks {
		c.upsertLocked(chunk)
	}
	return nil
}

// ReplaceSourceChunks swaps a source unit's chunk set under one lock
// acquisition so readers never observe a half-replaced set.
func (c *chunkStore) ReplaceSourceChunks(_ context.Context, sourceID string, chunks []domain.Chunk) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	for id, chunk := range c.store.chunks {
		if chunk.SourceID == sourceID {
			delete(c.store.chunks, id)
		}
	}
	for _, chunk := range chunks {
		c.upsertLocked(chunk)
	}
	return nil
}

func (c *chunkStore) upsertLocked(chunk domain.Chunk) {
	if prev, ok := c.store.chunks[chunk.ID]; ok {
		chunk.IndexedAt = prev.IndexedAt
		chunk.UpdatedAt = time.Now().UTC()
	} else if chunk.IndexedAt.IsZero() {
		chunk.IndexedAt = time.Now().UTC()
	}
	c.store.chunks[chunk.ID] = chunk
}

// GetChunk retrieves a chunk by ID.
func (c *chunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	chunk, ok := c.store.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// GetChunksBySource retrieves all chunks for a source unit in location
// order.
func (c *chunkStore) GetChunksBySource(_ context.Context, sourceID string) ([]domain.Chunk, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var chunks []domain.Chunk
	for _, chunk := range c.store.chunks {
		if chunk.SourceID == sourceID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		a, b := chunks[i].Location, chunks[j].Location
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.StartMessage != b.StartMessage {
			return a.StartMessage < b.StartMessage
		}
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// SimilaritySearch scans all embedded chunks and ranks them by cosine
// similarity, best first. Ties go to the most recently indexed chunk.
func (c *chunkStore) SimilaritySearch(_ context.Context, query []float32, k int, filters domain.Filters) ([]domain.RetrievedChunk, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var results []domain.RetrievedChunk
	for _, chunk := range c.store.chunks {
		if chunk.Embedding == nil {
			continue
		}
		if !c.matchesLocked(chunk, filters) {
			continue
		}
		score, err := cosineSimilarity(query, chunk.Embedding)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.RetrievedChunk{Chunk: chunk, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.IndexedAt.After(results[j].Chunk.IndexedAt)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (c *chunkStore) matchesLocked(chunk domain.Chunk, filters domain.Filters) bool {
	if filters.ContentType != "" && chunk.ContentType != filters.ContentType {
		return false
	}
	if filters.SourceID != "" && chunk.SourceID != filters.SourceID {
		return false
	}
	if filters.DeployTag != "" && !containsTag(chunk.DeployTags, filters.DeployTag) {
		return false
	}
	if filters.Domain != "" {
		record, ok := c.store.records[chunk.SourceID]
		if !ok || record.Domain != filters.Domain {
			return false
		}
	}
	return true
}

// DeleteBySource removes all chunks for a source unit.
func (c *chunkStore) DeleteBySource(_ context.Context, sourceID string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	for id, chunk := range c.store.chunks {
		if chunk.SourceID == sourceID {
			delete(c.store.chunks, id)
		}
	}
	return nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// cosineSimilarity returns a score in [0, 1] where 1 is identical
// direction. Vectors of mismatched dimension are an error.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp into [0, 1]; opposed vectors score zero.
	return math.Max(0, math.Min(1, cos)), nil
}
