package domain

import (
	"strings"
	"time"
)

// RecordSchemaVersion is the current IndexedRecord schema marker.
// Bump when the extracted field set changes shape.
const RecordSchemaVersion = 2

// IndexedRecord is the structured summary of one source unit, produced
// by language-model extraction. Exactly one record exists per source
// unit; re-extraction replaces the record wholesale, never merges.
type IndexedRecord struct {
	// SourceID links to the source unit. Unique per record.
	SourceID string `json:"-" validate:"required"`

	// Domain is the logical corpus partition this record belongs to.
	Domain string `json:"-"`

	// Title is the extracted title.
	Title string `json:"title" validate:"required"`

	// Project is the project or grouping the unit belongs to.
	Project string `json:"project" validate:"required"`

	// Summary is a short one-to-two sentence summary.
	Summary string `json:"summary"`

	// LongSummary is an expanded summary, truncated at render time.
	LongSummary string `json:"long_summary"`

	// Tags are free-form labels.
	Tags []string `json:"tags"`

	// Entities are named people, places and things mentioned.
	Entities []string `json:"entities"`

	// Topics are subject areas covered.
	Topics []string `json:"topics"`

	// Excerpt is a short reusable quote from the content.
	Excerpt string `json:"excerpt"`

	// SchemaVersion marks the schema this record was written with.
	SchemaVersion int `json:"-"`

	// Model identifies the language model that produced the record.
	Model string `json:"-"`

	// IndexedAt is when the record was persisted.
	IndexedAt time.Time `json:"-"`
}

// CanonicalText returns the concatenation of record fields used when
// the record itself is embedded for retrieval. The order is fixed so
// the embedding is stable for an unchanged record.
func (r *IndexedRecord) CanonicalText() string {
	parts := []string{r.Title, r.Summary, r.LongSummary}
	if len(r.Tags) > 0 {
		parts = append(parts, strings.Join(r.Tags, ", "))
	}
	if len(r.Topics) > 0 {
		parts = append(parts, strings.Join(r.Topics, ", "))
	}
	if r.Excerpt != "" {
		parts = append(parts, r.Excerpt)
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// RepositoryState tracks incremental indexing progress for one source
// repository. It is created on first index and replaced as a whole
// after each successful pass, never partially updated.
type RepositoryState struct {
	// RepoID identifies the repository (its configured name or path).
	RepoID string

	// Location is where the repository lives on disk or remotely.
	Location string

	// Revision is the last successfully indexed revision marker.
	Revision string

	// LastIndexedAt is when the last full pass completed.
	LastIndexedAt time.Time
}
