package code

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

const goSource = `package calc

import "fmt"

// Add returns the sum of two numbers.
func Add(a, b int) int {
	return a + b
}

// Multiplier scales values.
type Multiplier struct {
	factor int
}

func (m Multiplier) Apply(v int) int {
	return v * m.factor
}

func main() {
	fmt.Println(Add(1, 2))
}
`

func codeUnit(path, text string) domain.SourceUnit {
	return domain.SourceUnit{
		SourceID:    path,
		ContentType: domain.ContentCode,
		Text:        text,
		Location:    domain.Location{Path: path},
	}
}

func TestChunk_GoDeclarations(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(context.Background(), codeUnit("calc.go", goSource))

	require.NoError(t, err)
	require.Len(t, chunks, 5)

	// Preamble first, then declarations in order.
	assert.Equal(t, "", chunks[0].Metadata["symbol"])
	assert.Contains(t, chunks[0].Text, "package calc")

	symbols := make([]string, 0, len(chunks))
	for _, chunk := range chunks[1:] {
		symbols = append(symbols, chunk.Metadata["symbol"].(string))
	}
	assert.Equal(t, []string{"Add", "Multiplier", "Apply", "main"}, symbols)

	for _, chunk := range chunks {
		assert.Equal(t, "syntactic", chunk.Metadata["strategy"])
		assert.Equal(t, "go", chunk.Metadata["language"])
		assert.Equal(t, domain.ContentCode, chunk.ContentType)
	}
}

func TestChunk_DocCommentStaysWithDeclaration(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(context.Background(), codeUnit("calc.go", goSource))

	require.NoError(t, err)
	var addChunk *domain.Chunk
	for i := range chunks {
		if chunks[i].Metadata["symbol"] == "Add" {
			addChunk = &chunks[i]
		}
	}
	require.NotNil(t, addChunk)
	assert.Contains(t, addChunk.Text, "// Add returns the sum")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(addChunk.Text), "// Add"))
}

func TestChunk_PythonDeclarations(t *testing.T) {
	src := `import os

# Greets the user.
def greet(name):
    return "hi " + name

class Greeter:
    def __init__(self):
        pass
`
	c := New()

	chunks, err := c.Chunk(context.Background(), codeUnit("greet.py", src))

	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Equal(t, "python", chunk.Metadata["language"])
	}
}

func TestChunk_UnknownExtensionRejected(t *testing.T) {
	c := New()

	_, err := c.Chunk(context.Background(), codeUnit("data.xyz", "some content"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestChunk_NoDeclarationsRejected(t *testing.T) {
	c := New()

	_, err := c.Chunk(context.Background(), codeUnit("empty.go", "// just a comment\n// nothing else\n"))

	require.Error(t, err)
}

func TestChunk_EmptyText(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(context.Background(), codeUnit("calc.go", "  \n"))

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_OversizedDeclarationWindowed(t *testing.T) {
	var b strings.Builder
	b.WriteString("package big\n\nfunc Huge() {\n")
	for i := 0; i < 400; i++ {
		b.WriteString("\tvalue := compute(alpha, beta, gamma, delta, epsilon)\n")
	}
	b.WriteString("}\n")

	c := New(WithMaxTokens(200))

	chunks, err := c.Chunk(context.Background(), codeUnit("big.go", b.String()))

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// All windowed pieces keep the symbol and absolute line numbers.
	var hugeChunks []domain.Chunk
	for _, chunk := range chunks {
		if chunk.Metadata["symbol"] == "Huge" {
			hugeChunks = append(hugeChunks, chunk)
		}
	}
	require.Greater(t, len(hugeChunks), 1)
	assert.Equal(t, 3, hugeChunks[0].Location.StartLine)
	for _, chunk := range hugeChunks {
		assert.Equal(t, "go", chunk.Metadata["language"])
	}
}

func TestChunk_LineNumbersAreAbsolute(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(context.Background(), codeUnit("calc.go", goSource))

	require.NoError(t, err)
	prevEnd := 0
	for _, chunk := range chunks {
		assert.Equal(t, prevEnd+1, chunk.Location.StartLine)
		prevEnd = chunk.Location.EndLine
	}
}

func TestContentTypes(t *testing.T) {
	c := New()

	assert.Equal(t, []domain.ContentType{domain.ContentCode}, c.ContentTypes())
	assert.Equal(t, 80, c.Priority())
}
