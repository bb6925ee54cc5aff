package chunkers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/recall/internal/chunkers/window"
	"github.com/mnemo-labs/recall/internal/core/domain"
)

// stubChunker is a scripted chunker for registry routing tests.
type stubChunker struct {
	types    []domain.ContentType
	priority int
	chunks   []domain.Chunk
	err      error
	called   bool
}

func (s *stubChunker) ContentTypes() []domain.ContentType { return s.types }
func (s *stubChunker) Priority() int                      { return s.priority }

func (s *stubChunker) Chunk(_ context.Context, _ domain.SourceUnit) ([]domain.Chunk, error) {
	s.called = true
	return s.chunks, s.err
}

func TestRegistry_RoutesByContentType(t *testing.T) {
	codeChunker := &stubChunker{
		types:  []domain.ContentType{domain.ContentCode},
		chunks: []domain.Chunk{{ID: "from-code"}},
	}
	noteChunker := &stubChunker{
		types:  []domain.ContentType{domain.ContentNote},
		chunks: []domain.Chunk{{ID: "from-note"}},
	}

	r := NewRegistry(window.New())
	r.Register(codeChunker)
	r.Register(noteChunker)

	chunks, err := r.Chunk(context.Background(), domain.SourceUnit{
		SourceID:    "a.go",
		ContentType: domain.ContentCode,
		Text:        "x",
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "from-code", chunks[0].ID)
	assert.False(t, noteChunker.called)
}

func TestRegistry_PriorityOrder(t *testing.T) {
	low := &stubChunker{
		types:    []domain.ContentType{domain.ContentNote},
		priority: 10,
		chunks:   []domain.Chunk{{ID: "low"}},
	}
	high := &stubChunker{
		types:    []domain.ContentType{domain.ContentNote},
		priority: 90,
		chunks:   []domain.Chunk{{ID: "high"}},
	}

	r := NewRegistry(window.New())
	r.Register(low)
	r.Register(high)

	chunks, err := r.Chunk(context.Background(), domain.SourceUnit{
		ContentType: domain.ContentNote,
		Text:        "x",
	})

	require.NoError(t, err)
	assert.Equal(t, "high", chunks[0].ID)
	assert.False(t, low.called)
}

func TestRegistry_FallsBackOnError(t *testing.T) {
	failing := &stubChunker{
		types: []domain.ContentType{domain.ContentNote},
		err:   errors.New("cannot parse"),
	}

	r := NewRegistry(window.New())
	r.Register(failing)

	chunks, err := r.Chunk(context.Background(), domain.SourceUnit{
		SourceID:    "note-1",
		ContentType: domain.ContentNote,
		Text:        "some plain text",
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.True(t, failing.called)
	assert.Equal(t, "window", chunks[0].Metadata["strategy"])
}

func TestRegistry_TriesNextChunkerBeforeFallback(t *testing.T) {
	failing := &stubChunker{
		types:    []domain.ContentType{domain.ContentNote},
		priority: 90,
		err:      errors.New("cannot parse"),
	}
	second := &stubChunker{
		types:    []domain.ContentType{domain.ContentNote},
		priority: 50,
		chunks:   []domain.Chunk{{ID: "second"}},
	}

	r := NewRegistry(window.New())
	r.Register(failing)
	r.Register(second)

	chunks, err := r.Chunk(context.Background(), domain.SourceUnit{
		ContentType: domain.ContentNote,
		Text:        "x",
	})

	require.NoError(t, err)
	assert.Equal(t, "second", chunks[0].ID)
}

func TestRegistry_UnregisteredTypeUsesFallback(t *testing.T) {
	r := NewRegistry(window.New())

	chunks, err := r.Chunk(context.Background(), domain.SourceUnit{
		ContentType: domain.ContentDream,
		Text:        "dreamt of flying over the harbour",
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "window", chunks[0].Metadata["strategy"])
}
