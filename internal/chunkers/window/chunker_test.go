package window

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

func makeLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestChunk_EmptyText(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID: "doc-1",
		Text:     "   \n\t\n",
	})

	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.NotNil(t, chunks)
}

func TestChunk_SingleWindow(t *testing.T) {
	c := New(WithWindowLines(100), WithOverlapLines(10))

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID:    "doc-1",
		ContentType: domain.ContentNote,
		Text:        makeLines(50),
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "doc-1", chunks[0].SourceID)
	assert.Equal(t, domain.ContentNote, chunks[0].ContentType)
	assert.Equal(t, 1, chunks[0].Location.StartLine)
	assert.Equal(t, 50, chunks[0].Location.EndLine)
	assert.Equal(t, "window", chunks[0].Metadata["strategy"])
	assert.NotEmpty(t, chunks[0].ID)
}

func TestChunk_OverlappingWindows(t *testing.T) {
	c := New(WithWindowLines(100), WithOverlapLines(20), WithMaxTokens(10000))

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID: "doc-1",
		Text:     makeLines(250),
	})

	require.NoError(t, err)
	require.True(t, len(chunks) >= 3)

	// First window covers lines 1-100; the second starts inside it.
	assert.Equal(t, 1, chunks[0].Location.StartLine)
	assert.Equal(t, 100, chunks[0].Location.EndLine)
	assert.Equal(t, 81, chunks[1].Location.StartLine)

	// Every line ends up in some chunk.
	last := chunks[len(chunks)-1]
	assert.Equal(t, 250, last.Location.EndLine)
	assert.Contains(t, last.Text, "line 250")
}

func TestChunk_TokenBudgetShrinksWindow(t *testing.T) {
	// Each line is long enough that 100 lines cannot fit in the budget.
	long := strings.Repeat("alpha beta gamma delta epsilon ", 10)
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = long
	}

	c := New(WithWindowLines(100), WithOverlapLines(0), WithMaxTokens(200))

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID: "doc-1",
		Text:     strings.Join(lines, "\n"),
	})

	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		span := chunk.Location.EndLine - chunk.Location.StartLine + 1
		assert.Less(t, span, 100)
	}
}

func TestChunk_OversizedSingleLineStillProgresses(t *testing.T) {
	// One line far beyond the budget must still produce a chunk.
	c := New(WithMaxTokens(10))

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID: "doc-1",
		Text:     strings.Repeat("word ", 500),
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
}

func TestChunk_PreservesUnitLocationPath(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID: "doc-1",
		Text:     "hello",
		Location: domain.Location{Path: "notes/today.md"},
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "notes/today.md", chunks[0].Location.Path)
}

func TestContentTypes_Fallback(t *testing.T) {
	c := New()

	assert.Nil(t, c.ContentTypes())
	assert.Equal(t, 1, c.Priority())
}

func TestNew_OverlapClamped(t *testing.T) {
	c := New(WithWindowLines(10), WithOverlapLines(20))

	// Overlap at or above the window size would stall progress.
	assert.Less(t, c.overlapLines, c.windowLines)
}
