// Package window provides fixed-size line-window chunking.
// It is the universal fallback: every content type can be windowed,
// so the registry routes here when a structure-aware chunker fails.
package window

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mnemo-labs/recall/internal/chunkers/tokens"
	"github.com/mnemo-labs/recall/internal/core/domain"
)

// DefaultWindowLines is the default number of lines per chunk.
const DefaultWindowLines = 200

// DefaultOverlapLines is the default number of overlapping lines.
const DefaultOverlapLines = 50

// DefaultMaxTokens is the default token budget per chunk.
const DefaultMaxTokens = 1000

// Chunker splits text into fixed-size line windows with overlap.
type Chunker struct {
	windowLines  int
	overlapLines int
	maxTokens    int
	counter      *tokens.Counter
}

// Option configures the window chunker.
type Option func(*Chunker)

// WithWindowLines sets the window size in lines.
func WithWindowLines(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.windowLines = n
		}
	}
}

// WithOverlapLines sets the overlap between windows in lines.
func WithOverlapLines(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapLines = n
		}
	}
}

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New creates a window chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		windowLines:  DefaultWindowLines,
		overlapLines: DefaultOverlapLines,
		maxTokens:    DefaultMaxTokens,
		counter:      tokens.NewCounter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't swallow forward progress
	if c.overlapLines >= c.windowLines {
		c.overlapLines = c.windowLines / 4
	}

	return c
}

// ContentTypes returns nil: the window chunker is not registered for
// any specific type, it is the fallback for all of them.
func (c *Chunker) ContentTypes() []domain.ContentType {
	return nil
}

// Priority returns the fallback priority.
func (c *Chunker) Priority() int {
	return 1
}

// Chunk splits the unit's text into line windows. Empty text yields an
// empty sequence.
func (c *Chunker) Chunk(_ context.Context, unit domain.SourceUnit) ([]domain.Chunk, error) {
	if strings.TrimSpace(unit.Text) == "" {
		return []domain.Chunk{}, nil
	}

	lines := strings.Split(unit.Text, "\n")
	chunks := make([]domain.Chunk, 0, len(lines)/c.windowLines+1)

	start := 0
	for start < len(lines) {
		end := c.windowEnd(lines, start)

		text := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(text) != "" {
			loc := unit.Location
			loc.StartLine = start + 1
			loc.EndLine = end

			chunks = append(chunks, domain.Chunk{
				ID:          uuid.New().String(),
				SourceID:    unit.SourceID,
				ContentType: unit.ContentType,
				Text:        text,
				Location:    loc,
				Metadata: map[string]any{
					"strategy": "window",
				},
			})
		}

		if end >= len(lines) {
			break
		}
		next := end - c.overlapLines
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// windowEnd advances from start up to windowLines lines, stopping early
// when the token budget would be exceeded. At least one line is always
// taken so oversized single lines still make progress.
func (c *Chunker) windowEnd(lines []string, start int) int {
	end := start + c.windowLines
	if end > len(lines) {
		end = len(lines)
	}

	for end > start+1 {
		if c.counter.Count(strings.Join(lines[start:end], "\n")) <= c.maxTokens {
			break
		}
		// Shrink by quarters rather than single lines; token counting
		// whole windows per step is the expensive part.
		step := (end - start) / 4
		if step < 1 {
			step = 1
		}
		end -= step
	}

	return end
}
