package domain

import "time"

// ContentType tags the kind of content a source unit or chunk carries.
// It selects the chunking strategy and scopes retrieval filters.
type ContentType string

const (
	// ContentCode is source-code content, chunked at syntactic units.
	ContentCode ContentType = "code"

	// ContentConversation is transcript content, chunked at whole exchanges.
	ContentConversation ContentType = "conversation"

	// ContentDream is free-form journal content.
	ContentDream ContentType = "dream"

	// ContentNote is unstructured note or configuration content.
	ContentNote ContentType = "note"
)

// SourceUnit is one unit of raw content presented to the indexing
// pipeline: a single file, a single conversation, a single note.
type SourceUnit struct {
	// SourceID identifies the document, repository file or conversation
	// this unit came from. Chunks and records link back to it.
	SourceID string

	// Title is the human-readable title, when known.
	Title string

	// Project is the project or repository this unit belongs to, when known.
	Project string

	// ContentType selects the chunking strategy.
	ContentType ContentType

	// Text is the raw content. Empty text is valid and produces no chunks.
	Text string

	// Location describes where the content came from.
	Location Location

	// Revision is an opaque revision marker (content hash, mtime, commit)
	// used for incremental re-indexing. Empty means always re-index.
	Revision string

	// Messages holds the parsed transcript for conversational content.
	// Nil for non-conversational units.
	Messages []Message
}

// Message is a single role/content exchange element in a transcript.
// A message is never split across chunks.
type Message struct {
	Role    string
	Content string
}

// Location describes where a chunk's text originated, precisely enough
// to reconstruct it: a file path with a line range, or a conversation
// with a message range.
type Location struct {
	// Path is the file path for file-backed content.
	Path string

	// StartLine and EndLine bound file-backed chunks (1-based, inclusive).
	StartLine int
	EndLine   int

	// ConversationID identifies transcript-backed content.
	ConversationID string

	// StartMessage and EndMessage bound transcript-backed chunks
	// (0-based message offsets, inclusive).
	StartMessage int
	EndMessage   int
}

// Chunk is the atomic unit of retrieval: a bounded span of text with
// metadata and an optional embedding vector.
type Chunk struct {
	// ID is the unique identifier, immutable once assigned.
	ID string

	// SourceID links back to the unit this chunk was cut from.
	SourceID string

	// ContentType is inherited from the source unit.
	ContentType ContentType

	// Text is the chunk content.
	Text string

	// Location records the chunk's origin within the source.
	Location Location

	// Metadata carries free-form chunk attributes: language, function
	// name, section heading, or equivalent.
	Metadata map[string]any

	// Embedding is the vector representation. Nil until generated; a
	// chunk with a nil embedding is excluded from similarity search but
	// still reachable by exact lookup.
	Embedding []float32

	// DeployTags scope the chunk to deployments or environments.
	// A filter tag matches when this set contains it.
	DeployTags []string

	// IndexedAt is when the chunk was first persisted.
	IndexedAt time.Time

	// UpdatedAt is when the chunk was last replaced, zero if never.
	UpdatedAt time.Time
}
