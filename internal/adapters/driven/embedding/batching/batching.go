// Package batching decorates an embedding service with batch grouping,
// client-side rate pacing and bounded retries.
//
// The decorator owns the pipeline's throughput discipline: texts are
// grouped into batches of up to BatchSize, batches are paced through a
// token-bucket limiter, and transient failures are retried with
// exponential backoff. The limiter can be shared between decorators
// when multiple workers index concurrently, which keeps the aggregate
// request rate within upstream limits.
package batching

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/mnemo-labs/recall/internal/core/ports/driven"
	"github.com/mnemo-labs/recall/internal/logger"
)

// Ensure Service implements both embedding contracts.
var (
	_ driven.EmbeddingService = (*Service)(nil)
	_ driven.BatchEmbedder    = (*Service)(nil)
)

// Default configuration values.
const (
	// DefaultBatchSize is the maximum texts per upstream call.
	DefaultBatchSize = 50

	// DefaultBatchesPerSecond paces one batch per second, matching the
	// fixed one-second inter-batch delay the upstream expects.
	DefaultBatchesPerSecond = 1
)

// BatchItemError is the typed failure for a single text whose retries
// were exhausted inside an otherwise-successful batch.
type BatchItemError struct {
	// Index is the text's position within the caller's slice.
	Index int

	// Err is the final attempt's error.
	Err error
}

// Error implements the error interface.
func (e *BatchItemError) Error() string {
	return fmt.Sprintf("embedding item %d: %v", e.Index, e.Err)
}

// Unwrap exposes the underlying error for errors.Is checks.
func (e *BatchItemError) Unwrap() error {
	return e.Err
}

// Service wraps an EmbeddingService with batching, pacing and retries.
type Service struct {
	inner     driven.EmbeddingService
	batchSize int
	limiter   *rate.Limiter
	policy    RetryPolicy
}

// Option configures the batching service.
type Option func(*Service)

// WithBatchSize sets the maximum number of texts per upstream call.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLimiter replaces the pacing limiter. Pass a shared limiter when
// several workers embed concurrently against one upstream quota.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithRetryPolicy sets the retry policy for transient failures.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Service) {
		if p.MaxAttempts > 0 {
			s.policy = p
		}
	}
}

// New wraps inner with the given options.
func New(inner driven.EmbeddingService, opts ...Option) *Service {
	s := &Service{
		inner:     inner,
		batchSize: DefaultBatchSize,
		limiter:   rate.NewLimiter(rate.Limit(DefaultBatchesPerSecond), 1),
		policy:    DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed embeds a single text with pacing and retries.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var embedding []float32
	err := s.withRetries(ctx, func() error {
		var innerErr error
		embedding, innerErr = s.inner.Embed(ctx, text)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return embedding, nil
}

// EmbedBatch embeds texts in paced groups of at most BatchSize.
// It fails as a whole on the first group whose retries are exhausted;
// use EmbedBatchPartial for per-item outcomes.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		group := texts[start:min(start+s.batchSize, len(texts))]

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var vectors [][]float32
		err := s.withRetries(ctx, func() error {
			var innerErr error
			vectors, innerErr = s.inner.EmbedBatch(ctx, group)
			return innerErr
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch at offset %d: %w", start, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// EmbedBatchPartial embeds texts with per-item outcomes: a text whose
// retries are exhausted carries a BatchItemError in its slot while the
// rest of the batch proceeds.
func (s *Service) EmbedBatchPartial(ctx context.Context, texts []string) []driven.BatchResult {
	results := make([]driven.BatchResult, len(texts))

	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		group := texts[start:end]

		if err := s.limiter.Wait(ctx); err != nil {
			for i := start; i < len(texts); i++ {
				results[i].Err = &BatchItemError{Index: i, Err: err}
			}
			return results
		}

		// Whole-group call first; it is one request on batch-native
		// backends. Fall back to per-item calls when the group fails so
		// a single poisoned text cannot sink its neighbours.
		var vectors [][]float32
		err := s.withRetries(ctx, func() error {
			var innerErr error
			vectors, innerErr = s.inner.EmbedBatch(ctx, group)
			return innerErr
		})
		if err == nil {
			for i, v := range vectors {
				results[start+i].Embedding = v
			}
			continue
		}

		logger.Warn("batch embed failed at offset %d, retrying items individually: %v", start, err)
		for i := start; i < end; i++ {
			var vec []float32
			itemErr := s.withRetries(ctx, func() error {
				var innerErr error
				vec, innerErr = s.inner.Embed(ctx, texts[i])
				return innerErr
			})
			if itemErr != nil {
				results[i].Err = &BatchItemError{Index: i, Err: itemErr}
				continue
			}
			results[i].Embedding = vec
		}
	}

	return results
}

// Dimensions returns the inner service's vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the inner service.
func (s *Service) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the inner service's resources.
func (s *Service) Close() error {
	return s.inner.Close()
}

// withRetries runs fn under the retry policy.
func (s *Service) withRetries(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == s.policy.MaxAttempts {
			break
		}
		logger.Debug("embedding attempt %d/%d failed, backing off: %v",
			attempt, s.policy.MaxAttempts, lastErr)
		if err := sleep(ctx, s.policy.Backoff(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}
