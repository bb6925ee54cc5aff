package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

func TestChunk_ParsedMessages(t *testing.T) {
	c := New()

	unit := domain.SourceUnit{
		SourceID:    "conv-1",
		ContentType: domain.ContentConversation,
		Messages: []domain.Message{
			{Role: "user", Content: "what is a closure?"},
			{Role: "assistant", Content: "a function plus its captured scope"},
		},
	}

	chunks, err := c.Chunk(context.Background(), unit)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "user: what is a closure?")
	assert.Contains(t, chunks[0].Text, "assistant: a function plus its captured scope")
	assert.Equal(t, "exchange", chunks[0].Metadata["strategy"])
	assert.Equal(t, 2, chunks[0].Metadata["messages"])
	assert.Equal(t, "user,assistant", chunks[0].Metadata["roles"])
}

func TestChunk_MessageOffsets(t *testing.T) {
	long := strings.Repeat("many words fill the budget quickly here ", 40)
	c := New(WithMaxTokens(100))

	unit := domain.SourceUnit{
		SourceID: "conv-1",
		Messages: []domain.Message{
			{Role: "user", Content: long},
			{Role: "assistant", Content: long},
			{Role: "user", Content: long},
		},
	}

	chunks, err := c.Chunk(context.Background(), unit)

	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Location.StartMessage)
		assert.Equal(t, i, chunk.Location.EndMessage)
		assert.Equal(t, "conv-1", chunk.Location.ConversationID)
	}
}

func TestChunk_MessagesNeverSplit(t *testing.T) {
	// A single message four times the budget still becomes one chunk.
	huge := strings.Repeat("token ", 2000)
	c := New(WithMaxTokens(500))

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID: "conv-1",
		Messages: []domain.Message{{Role: "user", Content: huge}},
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "token")
}

func TestChunk_PacksSmallMessages(t *testing.T) {
	messages := make([]domain.Message, 10)
	for i := range messages {
		messages[i] = domain.Message{Role: "user", Content: "short"}
	}
	c := New()

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID: "conv-1",
		Messages: messages,
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Location.StartMessage)
	assert.Equal(t, 9, chunks[0].Location.EndMessage)
}

func TestChunk_TranscriptText(t *testing.T) {
	text := `User: how do I sort a slice?
Assistant: use sort.Slice with a less function.
It takes the slice and a comparison.
User: thanks`
	c := New()

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{
		SourceID:    "conv-2",
		ContentType: domain.ContentConversation,
		Text:        text,
	})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 3, chunks[0].Metadata["messages"])
	// Continuation lines stay with their message.
	assert.Contains(t, chunks[0].Text, "It takes the slice and a comparison.")
	assert.Equal(t, "user,assistant,user", chunks[0].Metadata["roles"])
}

func TestChunk_LeadingTextBecomesSystemMessage(t *testing.T) {
	text := `Conversation exported 2024-01-01
user: hello`

	messages := parseTranscript(text)

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "Conversation exported 2024-01-01", messages[0].Content)
	assert.Equal(t, "user", messages[1].Role)
}

func TestChunk_Empty(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(context.Background(), domain.SourceUnit{SourceID: "conv-3"})

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestContentTypes(t *testing.T) {
	c := New()

	assert.Equal(t, []domain.ContentType{domain.ContentConversation}, c.ContentTypes())
	assert.Equal(t, 80, c.Priority())
}
