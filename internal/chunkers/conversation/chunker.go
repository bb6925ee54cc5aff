// Package conversation provides exchange-level chunking for transcripts.
//
// Chunks are built from whole role/content messages: a message is never
// split across chunks, even when a single message exceeds the token
// budget on its own.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mnemo-labs/recall/internal/chunkers/tokens"
	"github.com/mnemo-labs/recall/internal/core/domain"
)

// DefaultMaxTokens is the default token budget per chunk.
const DefaultMaxTokens = 1000

// rolePattern matches "role: content" transcript lines for units that
// arrive as plain text rather than parsed messages.
var rolePattern = regexp.MustCompile(`(?i)^(user|assistant|system|human|ai)\s*:\s*(.*)$`)

// Chunker packs whole conversation exchanges into bounded chunks.
type Chunker struct {
	maxTokens int
	counter   *tokens.Counter
}

// Option configures the conversation chunker.
type Option func(*Chunker)

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New creates a conversation chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxTokens: DefaultMaxTokens,
		counter:   tokens.NewCounter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentTypes returns the content types this chunker handles.
func (c *Chunker) ContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentConversation}
}

// Priority returns the structure-aware priority.
func (c *Chunker) Priority() int {
	return 80
}

// Chunk packs consecutive messages into chunks within the token budget.
// An empty transcript yields an empty sequence.
func (c *Chunker) Chunk(_ context.Context, unit domain.SourceUnit) ([]domain.Chunk, error) {
	messages := unit.Messages
	if messages == nil {
		messages = parseTranscript(unit.Text)
	}
	if len(messages) == 0 {
		return []domain.Chunk{}, nil
	}

	var chunks []domain.Chunk
	start := 0
	for start < len(messages) {
		end := start + 1
		budget := c.messageTokens(messages[start])

		// Greedily extend with whole messages while the budget holds.
		for end < len(messages) {
			next := c.messageTokens(messages[end])
			if budget+next > c.maxTokens {
				break
			}
			budget += next
			end++
		}

		chunks = append(chunks, c.buildChunk(unit, messages[start:end], start, end-1))
		start = end
	}

	return chunks, nil
}

// buildChunk renders messages[start..end] (inclusive offsets within the
// conversation) as one chunk.
func (c *Chunker) buildChunk(unit domain.SourceUnit, messages []domain.Message, startMsg, endMsg int) domain.Chunk {
	var b strings.Builder
	roles := make([]string, 0, len(messages))
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		roles = append(roles, m.Role)
	}

	loc := unit.Location
	if loc.ConversationID == "" {
		loc.ConversationID = unit.SourceID
	}
	loc.StartMessage = startMsg
	loc.EndMessage = endMsg

	return domain.Chunk{
		ID:          uuid.New().String(),
		SourceID:    unit.SourceID,
		ContentType: unit.ContentType,
		Text:        b.String(),
		Location:    loc,
		Metadata: map[string]any{
			"strategy": "exchange",
			"messages": len(messages),
			"roles":    strings.Join(roles, ","),
		},
	}
}

func (c *Chunker) messageTokens(m domain.Message) int {
	return c.counter.Count(m.Role+": "+m.Content) + 2
}

// parseTranscript recovers messages from "role: content" text. Lines
// that don't open a new message continue the current one; leading text
// before any role marker is treated as a system message.
func parseTranscript(text string) []domain.Message {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var messages []domain.Message
	var current *domain.Message

	for _, line := range strings.Split(text, "\n") {
		if m := rolePattern.FindStringSubmatch(line); m != nil {
			if current != nil {
				current.Content = strings.TrimSpace(current.Content)
				messages = append(messages, *current)
			}
			current = &domain.Message{Role: strings.ToLower(m[1]), Content: m[2]}
			continue
		}
		if current == nil {
			current = &domain.Message{Role: "system", Content: line}
			continue
		}
		current.Content += "\n" + line
	}

	if current != nil {
		current.Content = strings.TrimSpace(current.Content)
		messages = append(messages, *current)
	}

	return messages
}
