// Package section provides boundary-aware chunking for notes and
// configuration content.
//
// Text is split at natural section boundaries - markdown headings and
// key blocks separated by blank lines - and consecutive small sections
// are packed together up to the token budget. Content without usable
// boundaries is rejected so the registry windows it instead.
package section

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

// headingPattern matches markdown headings and "key:" block openers.
var headingPattern = regexp.MustCompile(`^(#{1,6}\s+\S|[A-Za-z_][\w .-]*:\s*$|\[[^\]]+\]\s*$)`)

// Chunker splits unstructured content at section boundaries.
type Chunker struct {
	maxTokens int
	counter   *tokens.Counter
}

// Option configures the section chunker.
type Option func(*Chunker)

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New creates a section chunker with the given options.
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
	return []domain.ContentType{domain.ContentNote, domain.ContentDream}
}

// Priority returns the structure-aware priority.
func (c *Chunker) Priority() int {
	return 60
}

// Chunk splits the unit at section boundaries, packing small sections
// together. It returns an error when no boundaries exist or a single
// section blows the budget, handing the unit to the window fallback.
func (c *Chunker) Chunk(_ context.Context, unit domain.SourceUnit) ([]domain.Chunk, error) {
	if strings.TrimSpace(unit.Text) == "" {
		return []domain.Chunk{}, nil
	}

	lines := strings.Split(unit.Text, "\n")
	sections := splitSections(lines)
	if len(sections) < 2 {
		return nil, domain.ErrUnsupportedType
	}

	var chunks []domain.Chunk
	i := 0
	for i < len(sections) {
		first := sections[i]
		text := strings.Join(lines[first.start:first.end], "\n")
		budget := c.counter.Count(text)
		if budget > c.maxTokens {
			return nil, domain.ErrUnsupportedType
		}

		last := first
		j := i + 1
		for j < len(sections) {
			next := sections[j]
			nextText := strings.Join(lines[next.start:next.end], "\n")
			nextBudget := c.counter.Count(nextText)
			if budget+nextBudget > c.maxTokens {
				break
			}
			budget += nextBudget
			last = next
			j++
		}

		joined := strings.TrimRight(strings.Join(lines[first.start:last.end], "\n"), "\n")
		if strings.TrimSpace(joined) != "" {
			loc := unit.Location
			loc.StartLine = first.start + 1
			loc.EndLine = last.end

			chunks = append(chunks, domain.Chunk{
				ID:          uuid.New().String(),
				SourceID:    unit.SourceID,
				ContentType: unit.ContentType,
				Text:        joined,
				Location:    loc,
				Metadata: map[string]any{
					"strategy": "section",
					"heading":  first.heading,
				},
			})
		}
		i = j
	}

	return chunks, nil
}

// span is one section's line range (half-open, 0-based).
type span struct {
	start   int
	end     int
	heading string
}

// splitSections finds heading-or-blank-line delimited blocks.
func splitSections(lines []string) []span {
	var sections []span
	start := 0
	heading := ""
	blank := false

	flush := func(end int) {
		if end > start {
			sections = append(sections, span{start: start, end: end, heading: heading})
		}
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		isHeading := headingPattern.MatchString(line)

		switch {
		case isHeading && i > start:
			flush(i)
			start = i
			heading = trimmed
		case isHeading:
			heading = trimmed
		case trimmed == "":
			blank = true
		case blank && i > start:
			// A non-blank line after blank space opens a new block
			// unless the current block began with a heading.
			if heading == "" {
				flush(i)
				start = i
			}
			blank = false
		default:
			blank = false
		}
	}
	flush(len(lines))

	return sections
}
