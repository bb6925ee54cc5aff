// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the indexing pipeline to function:
//
//   - Chunker: Splits a source unit into bounded chunks
//   - ChunkerRegistry: Selects the chunker for a content type
//   - ChunkStore: Chunk persistence and similarity search
//   - RecordStore: IndexedRecord persistence and title lookup
//   - RepoStateStore: Incremental re-indexing bookkeeping
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, chunks are
//     persisted unembedded and semantic retrieval is disabled.
//   - LLMService: Language model completion. Without it, structured
//     extraction is disabled and only chunks are indexed.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, chunker, or extractor package
package driven
