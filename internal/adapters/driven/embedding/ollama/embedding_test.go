package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 3})
}

func TestEmbed_Success(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, "hello", req.Prompt)

		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	})

	embedding, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2}})
	})

	_, err := svc.Embed(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestEmbed_RateLimited(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := svc.Embed(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestEmbed_MalformedInput(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := svc.Embed(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestEmbed_ServerErrorIsPlain(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := svc.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
	assert.NotErrorIs(t, err, domain.ErrMalformedInput)
}

func TestEmbedBatch_SequentialCalls(t *testing.T) {
	var calls int
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{1, 2, 3}})
	})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Len(t, embeddings, 3)
	assert.Equal(t, 3, calls)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}
