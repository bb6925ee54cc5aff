// Package extract recovers schema-valid IndexedRecords from language
// model responses.
//
// Model output is unconstrained: it may be a clean JSON object, JSON
// wrapped in prose or code fences, or plain prose with no structured
// markup at all. The extractor applies parsing strategies in order and
// stops at the first that yields a valid record. The final strategy
// reconstructs a record from labelled prose lines and caller-supplied
// defaults, so "could not find structured content" is never an error.
// Only an empty response, or defaults too thin to satisfy required
// fields, surfaces as a hard extraction failure - in which case no
// record is produced and any prior record is left untouched.
package extract

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/logger"
)

// responseLogLimit bounds how much of a failing response is logged.
const responseLogLimit = 500

// Defaults supply the fields known about the source unit before
// extraction. They fill required fields the response failed to yield.
type Defaults struct {
	// SourceID is the unit the record describes. Always required.
	SourceID string

	// Domain is the corpus partition the record belongs to.
	Domain string

	// Title is the unit's known title, used when the response has none.
	Title string

	// Project is the unit's known project, used when the response has
	// none.
	Project string

	// Model names the language model that produced the response.
	Model string
}

// strategy is one parsing approach. It returns the parsed candidate and
// true on a structural match, or false to pass to the next strategy.
type strategy interface {
	name() string
	apply(response string) (*candidate, bool)
}

// Extractor turns model responses into validated IndexedRecords.
type Extractor struct {
	strategies []strategy
	validate   *validator.Validate
}

// New creates an extractor with the standard strategy order: whole
// response, fenced block, embedded object, labelled-prose fallback.
func New() *Extractor {
	return &Extractor{
		strategies: []strategy{
			wholeResponse{},
			fencedBlock{},
			embeddedObject{},
			labelledProse{},
		},
		validate: validator.New(),
	}
}

// Extract parses a model response into a schema-valid record.
//
// It returns domain.ErrEmptyResponse for blank responses and
// domain.ErrExtraction when even the fallback strategy plus defaults
// cannot satisfy the required fields. In both cases the caller must
// treat the outcome as "no record produced".
func (e *Extractor) Extract(response string, d Defaults) (*domain.IndexedRecord, error) {
	if isBlank(response) {
		logger.Warn("extraction: empty model response for %s", d.SourceID)
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, domain.ErrEmptyResponse)
	}

	for _, s := range e.strategies {
		cand, ok := s.apply(response)
		if !ok {
			continue
		}

		record := cand.toRecord(d)
		if err := e.validate.Struct(record); err != nil {
			logger.Debug("extraction: strategy %q parsed but failed validation: %v", s.name(), err)
			continue
		}

		logger.Info("extraction: strategy %q succeeded for %s", s.name(), d.SourceID)
		return record, nil
	}

	logger.Warn("extraction failed for %s, response was: %s", d.SourceID, truncate(response, responseLogLimit))
	return nil, fmt.Errorf("%w: no strategy produced a valid record", domain.ErrExtraction)
}

// candidate is the raw field set a strategy recovered, before defaults
// and validation.
type candidate struct {
	Title       string     `json:"title"`
	Project     string     `json:"project"`
	Summary     string     `json:"summary"`
	LongSummary string     `json:"long_summary"`
	Tags        stringList `json:"tags"`
	Entities    stringList `json:"entities"`
	Topics      stringList `json:"topics"`
	Excerpt     string     `json:"excerpt"`
}

// toRecord builds a full record from the candidate, filling gaps from
// defaults and guaranteeing non-nil list fields.
func (c *candidate) toRecord(d Defaults) *domain.IndexedRecord {
	r := &domain.IndexedRecord{
		SourceID:      d.SourceID,
		Domain:        d.Domain,
		Title:         firstNonBlank(c.Title, d.Title),
		Project:       firstNonBlank(c.Project, d.Project),
		Summary:       c.Summary,
		LongSummary:   c.LongSummary,
		Tags:          emptyIfNil(c.Tags),
		Entities:      emptyIfNil(c.Entities),
		Topics:        emptyIfNil(c.Topics),
		Excerpt:       c.Excerpt,
		SchemaVersion: domain.RecordSchemaVersion,
		Model:         d.Model,
		IndexedAt:     time.Now().UTC(),
	}
	return r
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if !isBlank(v) {
			return v
		}
	}
	return ""
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
