// Package code provides syntax-aware chunking for source-code content.
//
// Files are split at top-level declaration boundaries (functions,
// methods, types, classes) with any immediately preceding doc comment
// kept attached to its declaration. Languages without a registered
// boundary pattern are rejected, which makes the registry fall back to
// line-window chunking for that file only.
package code

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mnemo-labs/recall/internal/chunkers/tokens"
	"github.com/mnemo-labs/recall/internal/chunkers/window"
	"github.com/mnemo-labs/recall/internal/core/domain"
)

// DefaultMaxTokens is the default token budget per chunk.
const DefaultMaxTokens = 1000

// language describes how to find declaration boundaries in one language.
type language struct {
	name string
	// decl matches a line that starts a top-level declaration and
	// captures the declared symbol name.
	decl *regexp.Regexp
	// comment matches a doc comment line that belongs to the
	// declaration that follows it.
	comment *regexp.Regexp
}

// languages maps file extensions to boundary patterns.
var languages = map[string]language{
	".go": {
		name:    "go",
		decl:    regexp.MustCompile(`^(?:func|type|var|const)\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`),
		comment: regexp.MustCompile(`^//`),
	},
	".py": {
		name:    "python",
		decl:    regexp.MustCompile(`^(?:def|class)\s+([A-Za-z_]\w*)`),
		comment: regexp.MustCompile(`^#`),
	},
	".js": {
		name:    "javascript",
		decl:    regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?(?:function|class|const|let|var)\s+([A-Za-z_$][\w$]*)`),
		comment: regexp.MustCompile(`^(?://|/\*|\s?\*)`),
	},
	".ts": {
		name:    "typescript",
		decl:    regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?(?:function|class|interface|type|const|let|enum)\s+([A-Za-z_$][\w$]*)`),
		comment: regexp.MustCompile(`^(?://|/\*|\s?\*)`),
	},
	".rb": {
		name:    "ruby",
		decl:    regexp.MustCompile(`^(?:def|class|module)\s+([A-Za-z_]\w*[?!]?)`),
		comment: regexp.MustCompile(`^#`),
	},
}

// Chunker splits code files at declaration boundaries.
type Chunker struct {
	maxTokens int
	counter   *tokens.Counter
	fallback  *window.Chunker
}

// Option configures the code chunker.
type Option func(*Chunker)

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New creates a code chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxTokens: DefaultMaxTokens,
		counter:   tokens.NewCounter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.fallback = window.New(window.WithMaxTokens(c.maxTokens))
	return c
}

// ContentTypes returns the content types this chunker handles.
func (c *Chunker) ContentTypes() []domain.ContentType {
	return []domain.ContentType{domain.ContentCode}
}

// Priority returns the structure-aware priority.
func (c *Chunker) Priority() int {
	return 80
}

// Chunk splits the unit at declaration boundaries. It returns an error
// when the file's language has no registered pattern or no declarations
// are found, so the registry can window the file instead.
func (c *Chunker) Chunk(ctx context.Context, unit domain.SourceUnit) ([]domain.Chunk, error) {
	if strings.TrimSpace(unit.Text) == "" {
		return []domain.Chunk{}, nil
	}

	ext := strings.ToLower(filepath.Ext(unit.Location.Path))
	lang, ok := languages[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no boundary pattern for %q", domain.ErrUnsupportedType, ext)
	}

	lines := strings.Split(unit.Text, "\n")
	units := splitDeclarations(lines, lang)
	if len(units) == 0 {
		return nil, fmt.Errorf("no declarations found in %s", unit.Location.Path)
	}

	var chunks []domain.Chunk
	for _, du := range units {
		text := strings.Join(lines[du.start:du.end], "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		// Oversized declarations are windowed rather than dropped.
		if c.counter.Count(text) > c.maxTokens {
			sub, err := c.windowUnit(ctx, unit, du, text)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, sub...)
			continue
		}

		loc := unit.Location
		loc.StartLine = du.start + 1
		loc.EndLine = du.end

		chunks = append(chunks, domain.Chunk{
			ID:          uuid.New().String(),
			SourceID:    unit.SourceID,
			ContentType: unit.ContentType,
			Text:        text,
			Location:    loc,
			Metadata: map[string]any{
				"strategy": "syntactic",
				"language": lang.name,
				"symbol":   du.symbol,
			},
		})
	}

	return chunks, nil
}

// windowUnit splits one oversized declaration with the line-window
// fallback, preserving the symbol metadata and absolute line numbers.
func (c *Chunker) windowUnit(ctx context.Context, unit domain.SourceUnit, du declUnit, text string) ([]domain.Chunk, error) {
	sub := unit
	sub.Text = text
	chunks, err := c.fallback.Chunk(ctx, sub)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].Location.StartLine += du.start
		chunks[i].Location.EndLine += du.start
		chunks[i].Metadata["language"] = languages[strings.ToLower(filepath.Ext(unit.Location.Path))].name
		chunks[i].Metadata["symbol"] = du.symbol
	}
	return chunks, nil
}

// declUnit is one declaration's line span (half-open, 0-based).
type declUnit struct {
	start  int
	end    int
	symbol string
}

// splitDeclarations finds top-level declaration boundaries. Everything
// before the first declaration (package clause, imports, file header)
// becomes a preamble unit so no text is lost.
func splitDeclarations(lines []string, lang language) []declUnit {
	var boundaries []declUnit

	for i, line := range lines {
		m := lang.decl.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start := i
		// Pull the doc comment above the declaration into the unit.
		for start > 0 && lang.comment.MatchString(lines[start-1]) {
			start--
		}
		boundaries = append(boundaries, declUnit{start: start, symbol: m[1]})
	}

	if len(boundaries) == 0 {
		return nil
	}

	// Close each unit at the start of the next.
	for i := range boundaries {
		if i+1 < len(boundaries) {
			boundaries[i].end = boundaries[i+1].start
		} else {
			boundaries[i].end = len(lines)
		}
	}

	// Preamble before the first declaration.
	if boundaries[0].start > 0 {
		pre := declUnit{start: 0, end: boundaries[0].start, symbol: ""}
		boundaries = append([]declUnit{pre}, boundaries...)
	}

	return boundaries
}
