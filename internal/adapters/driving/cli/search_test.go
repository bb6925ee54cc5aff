package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

func TestFormatResults_Nil(t *testing.T) {
	assert.Equal(t, "No results found.\n", FormatResults(nil))
}

func TestFormatResults_NotFound(t *testing.T) {
	results := &domain.RankedResults{Mode: domain.RetrievalExact, NotFound: true}
	assert.Equal(t, "Not found.\n", FormatResults(results))
}

func TestFormatResults_EmptySemantic(t *testing.T) {
	results := &domain.RankedResults{Mode: domain.RetrievalSemantic}
	assert.Equal(t, "No results found.\n", FormatResults(results))
}

func TestFormatResults_Record(t *testing.T) {
	results := &domain.RankedResults{
		Mode: domain.RetrievalExact,
		Record: &domain.IndexedRecord{
			Title:       "Deploy runbook",
			Project:     "infra",
			Summary:     "Steps for a production deploy.",
			LongSummary: "Covers rollout, verification and rollback.",
			Tags:        []string{"ops", "deploy"},
			Excerpt:     "Always verify health checks before routing traffic.",
		},
	}

	out := FormatResults(results)

	assert.Contains(t, out, "Deploy runbook (infra)")
	assert.Contains(t, out, "Steps for a production deploy.")
	assert.Contains(t, out, "Tags: ops, deploy")
	assert.Contains(t, out, "> Always verify health checks")
}

func TestFormatResults_SemanticHits(t *testing.T) {
	results := &domain.RankedResults{
		Mode: domain.RetrievalSemantic,
		Chunks: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{
				Text:     "func Deploy() error {",
				Location: domain.Location{Path: "deploy.go", StartLine: 10, EndLine: 42},
			}, Score: 0.91},
			{Chunk: domain.Chunk{
				Text:     "we discussed the rollout plan",
				Location: domain.Location{ConversationID: "conv-7", StartMessage: 2, EndMessage: 5},
			}, Score: 0.78},
		},
	}

	out := FormatResults(results)

	assert.Contains(t, out, "[1] deploy.go:10-42 (0.91)")
	assert.Contains(t, out, "[2] conv-7 #2-5 (0.78)")
	assert.Contains(t, out, "---\n")
	assert.Equal(t, 1, strings.Count(out, "---"))
}

func TestFormatResults_LongTextClipped(t *testing.T) {
	results := &domain.RankedResults{
		Mode: domain.RetrievalSemantic,
		Chunks: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{
				Text:     strings.Repeat("x", 500),
				Location: domain.Location{Path: "big.txt", StartLine: 1, EndLine: 1},
			}, Score: 0.5},
		},
	}

	out := FormatResults(results)

	assert.Contains(t, out, strings.Repeat("x", chunkRenderLimit)+"...")
	assert.NotContains(t, out, strings.Repeat("x", chunkRenderLimit+1))
}

func TestDescribeLocation_FallsBackToSource(t *testing.T) {
	chunk := domain.Chunk{SourceID: "src-9"}
	assert.Equal(t, "src-9", describeLocation(chunk))
}

func TestClip_MultilineFlattened(t *testing.T) {
	assert.Equal(t, "one two three", clip("  one\ntwo\nthree\n", 50))
}
