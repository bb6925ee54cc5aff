// Package domain defines the core business entities for Recall.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceUnit: A unit of raw content to be indexed
//   - Chunk: A bounded, retrievable unit of text with an optional embedding
//   - IndexedRecord: The structured summary extracted from a source unit
//   - RepositoryState: Incremental re-indexing bookkeeping per repository
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
