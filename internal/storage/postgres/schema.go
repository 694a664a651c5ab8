// Package postgres implements storage.VectorIndex on PostgreSQL with the
// pgvector extension. Ranking happens in the database using the cosine
// distance operator.
package postgres

// Schema creates the pgvector extension and the entry table. The vector
// column is untyped so any embedding dimension can be stored.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS memory_entries (
    id TEXT PRIMARY KEY,
    source_text TEXT NOT NULL,
    sentiment TEXT NOT NULL,
    summary TEXT NOT NULL,
    intent TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    embedding vector NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memory_entries_created_at ON memory_entries(created_at);
`
