// Package postgres implements the chunk, record and repository-state
// stores on Postgres with the pgvector extension. Similarity search
// runs over an ivfflat cosine index that covers only rows with a
// non-null embedding, so unembedded chunks never surface in semantic
// results while remaining reachable by ID.
package postgres
