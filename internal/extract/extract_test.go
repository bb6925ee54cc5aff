package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

var testDefaults = Defaults{
	SourceID: "unit-1",
	Domain:   "journal",
	Title:    "Fallback Title",
	Project:  "fallback-project",
	Model:    "test-model",
}

const validJSON = `{
	"title": "Harbour Trip",
	"project": "travel",
	"summary": "Planning a day at the harbour.",
	"long_summary": "Notes about ferry times and which pier to meet at.",
	"tags": ["travel", "planning"],
	"entities": ["Elliott Bay"],
	"topics": ["itineraries"],
	"excerpt": "meet at pier 55 at nine"
}`

func TestExtract_WholeResponseJSON(t *testing.T) {
	e := New()

	record, err := e.Extract(validJSON, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Harbour Trip", record.Title)
	assert.Equal(t, "travel", record.Project)
	assert.Equal(t, []string{"travel", "planning"}, record.Tags)
	assert.Equal(t, []string{"Elliott Bay"}, record.Entities)
	assert.Equal(t, "unit-1", record.SourceID)
	assert.Equal(t, "journal", record.Domain)
	assert.Equal(t, "test-model", record.Model)
	assert.Equal(t, domain.RecordSchemaVersion, record.SchemaVersion)
	assert.False(t, record.IndexedAt.IsZero())
}

func TestExtract_FencedBlockMatchesRawJSON(t *testing.T) {
	e := New()

	raw, err := e.Extract(validJSON, testDefaults)
	require.NoError(t, err)

	fenced := "Here is the summary you asked for:\n```json\n" + validJSON + "\n```\nLet me know if you need more."
	fromFence, err := e.Extract(fenced, testDefaults)
	require.NoError(t, err)

	// A fence is packaging, not content: both paths yield the same record.
	assert.Equal(t, raw.Title, fromFence.Title)
	assert.Equal(t, raw.Summary, fromFence.Summary)
	assert.Equal(t, raw.Tags, fromFence.Tags)
	assert.Equal(t, raw.Excerpt, fromFence.Excerpt)
}

func TestExtract_UntaggedFence(t *testing.T) {
	e := New()

	response := "```\n" + validJSON + "\n```"
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Harbour Trip", record.Title)
}

func TestExtract_TaggedFencePreferredOverUntagged(t *testing.T) {
	e := New()

	decoy := "```\n{\"title\": \"Decoy\", \"project\": \"decoy\"}\n```"
	response := decoy + "\n```json\n" + validJSON + "\n```"

	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Harbour Trip", record.Title)
}

func TestExtract_EmbeddedObjectInProse(t *testing.T) {
	e := New()

	response := "Sure! Based on the content, I produced:\n\n" + validJSON + "\n\nHope that helps."
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Harbour Trip", record.Title)
}

func TestExtract_EmbeddedObjectWithComments(t *testing.T) {
	e := New()

	response := `{
	// the main title
	"title": "Harbour Trip",
	"project": "travel", # project grouping
	"summary": "Planning a day at the harbour."
}`
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Harbour Trip", record.Title)
	assert.Equal(t, "travel", record.Project)
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	e := New()

	response := `{"title": "Braces {are} fine", "project": "travel", "summary": "contains } and { chars"}`
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Braces {are} fine", record.Title)
}

func TestExtract_ListAsCommaString(t *testing.T) {
	e := New()

	response := `{"title": "T", "project": "p", "tags": "go, storage , indexing"}`
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, []string{"go", "storage", "indexing"}, record.Tags)
}

func TestExtract_MixedTypeListKeepsStrings(t *testing.T) {
	e := New()

	response := `{"title": "T", "project": "p", "topics": ["go", 42, "vectors"]}`
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, []string{"go", "vectors"}, record.Topics)
}

func TestExtract_LabelledProseFallback(t *testing.T) {
	e := New()

	response := `I could not produce JSON, but here is what I found.

Title: Standup Notes
Project: recall
Summary: Short sync about the migration.
Tags: meetings, migration
Entities:
- Priya
- Tomas
Excerpt: "we ship on Thursday"`

	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Standup Notes", record.Title)
	assert.Equal(t, "recall", record.Project)
	assert.Equal(t, "Short sync about the migration.", record.Summary)
	assert.Equal(t, []string{"meetings", "migration"}, record.Tags)
	assert.Equal(t, []string{"Priya", "Tomas"}, record.Entities)
}

func TestExtract_BoldLabelsAndBullets(t *testing.T) {
	e := New()

	response := `**Title:** Release Review
**Project:** recall
**Topics:**
- storage
- retrieval`

	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Release Review", record.Title)
	assert.Equal(t, []string{"storage", "retrieval"}, record.Topics)
}

func TestExtract_DefaultsFillMissingRequiredFields(t *testing.T) {
	e := New()

	// No title or project anywhere in the response; defaults must
	// satisfy the required fields.
	response := `Summary: A few scattered thoughts about testing.`
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Fallback Title", record.Title)
	assert.Equal(t, "fallback-project", record.Project)
	assert.Equal(t, "A few scattered thoughts about testing.", record.Summary)
}

func TestExtract_ListsNeverNil(t *testing.T) {
	e := New()

	record, err := e.Extract(`{"title": "T", "project": "p"}`, testDefaults)

	require.NoError(t, err)
	assert.NotNil(t, record.Tags)
	assert.NotNil(t, record.Entities)
	assert.NotNil(t, record.Topics)
}

func TestExtract_EmptyResponse(t *testing.T) {
	e := New()

	_, err := e.Extract("   \n\t  ", testDefaults)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestExtract_NothingUsable(t *testing.T) {
	// No labels, no JSON, and no defaults to fall back on.
	e := New()

	_, err := e.Extract("complete nonsense with no structure", Defaults{SourceID: "unit-2"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.NotErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestExtract_InvalidJSONFallsThroughToProse(t *testing.T) {
	e := New()

	response := `{"title": "Broken", "project": }` + "\n\nTitle: Rescued\nProject: recall"
	record, err := e.Extract(response, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "Rescued", record.Title)
}

func TestBuildPrompt_IncludesKnownFields(t *testing.T) {
	prompt := BuildPrompt("My Title", "my-project", "the content body")

	assert.Contains(t, prompt, "Known title: My Title")
	assert.Contains(t, prompt, "Known project: my-project")
	assert.Contains(t, prompt, "the content body")
}

func TestBuildPrompt_UnknownFields(t *testing.T) {
	prompt := BuildPrompt("", "", "content")

	assert.Contains(t, prompt, "Known title: (unknown)")
	assert.Contains(t, prompt, "Known project: (unknown)")
}

func TestBuildPrompt_TruncatesLongContent(t *testing.T) {
	line := strings.Repeat("x", 100) + "\n"
	content := strings.Repeat(line, 200)

	prompt := BuildPrompt("t", "p", content)

	assert.Less(t, len(prompt), len(content))
	// Truncation lands on a line boundary, never mid-line.
	lines := strings.Split(prompt, "\n")
	assert.Len(t, lines[len(lines)-1], 100)
}
