package domain

// RetrievalMode identifies how a query was routed.
type RetrievalMode int

const (
	// RetrievalExact is literal title lookup for quoted queries.
	RetrievalExact RetrievalMode = iota

	// RetrievalSemantic is embedding-based nearest-neighbour search.
	RetrievalSemantic
)

// String returns the mode name for logging.
func (m RetrievalMode) String() string {
	switch m {
	case RetrievalExact:
		return "exact"
	case RetrievalSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// RetrievalOptions configures a retrieval call.
type RetrievalOptions struct {
	// TopK is the maximum number of semantic results. Zero means the
	// configured default; values above the hard cap are clamped.
	TopK int

	// ContentType restricts results to one content type when set.
	ContentType ContentType

	// SourceID restricts results to one source unit when set.
	SourceID string

	// DeployTag restricts results to chunks carrying the tag when set.
	DeployTag string
}

// Filters are the conjunctive predicates applied to similarity search.
// Zero values mean "no constraint".
type Filters struct {
	ContentType ContentType
	SourceID    string
	Domain      string
	DeployTag   string
}

// RetrievedChunk is one ranked similarity hit.
type RetrievedChunk struct {
	Chunk Chunk

	// Score is cosine similarity in [0, 1]; higher is closer.
	Score float64
}

// RankedResults is the outcome of a retrieval call.
type RankedResults struct {
	// Mode records which retrieval path produced the results.
	Mode RetrievalMode

	// Record is the single best match in exact mode, nil on miss or in
	// semantic mode when no record matched.
	Record *IndexedRecord

	// Chunks are the ranked semantic hits, best first. Empty is a valid
	// outcome, not an error.
	Chunks []RetrievedChunk

	// NotFound is set when exact mode matched nothing. Callers must
	// render this as "not found" rather than treating it as a failure.
	NotFound bool
}

// Empty reports whether the retrieval produced nothing usable.
func (r *RankedResults) Empty() bool {
	return r == nil || (r.Record == nil && len(r.Chunks) == 0)
}
