package domain

// UnitState is the indexing pipeline state of one source unit.
type UnitState int

const (
	// UnitDiscovered means the unit is known but not yet chunked.
	UnitDiscovered UnitState = iota

	// UnitChunked means chunking completed (possibly with zero chunks).
	UnitChunked

	// UnitEmbedded means embedding completed, possibly partially.
	UnitEmbedded

	// UnitPersisted is the success terminal state.
	UnitPersisted

	// UnitFailed is the failure terminal state.
	UnitFailed
)

// String returns the state name for logging.
func (s UnitState) String() string {
	switch s {
	case UnitDiscovered:
		return "discovered"
	case UnitChunked:
		return "chunked"
	case UnitEmbedded:
		return "embedded"
	case UnitPersisted:
		return "persisted"
	case UnitFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UnitFailure records why one source unit failed during a run.
type UnitFailure struct {
	SourceID string
	State    UnitState
	Err      error
}

// RunSummary is the outcome of an indexing run. Partial success is the
// expected common case: the summary always carries counts, never a
// single pass/fail flag.
type RunSummary struct {
	// Processed counts units that reached Persisted.
	Processed int

	// Skipped counts units left untouched because their revision marker
	// matched the recorded one.
	Skipped int

	// Failed counts units that reached the Failed state.
	Failed int

	// ChunksPersisted counts chunks written across all units.
	ChunksPersisted int

	// ChunksWithoutEmbedding counts chunks persisted with a nil
	// embedding after retries were exhausted.
	ChunksWithoutEmbedding int

	// RecordsPersisted counts extraction records written.
	RecordsPersisted int

	// Failures carries the per-unit failure detail.
	Failures []UnitFailure
}
