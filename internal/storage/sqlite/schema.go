// Package sqlite implements storage.VectorIndex on SQLite (modernc.org/sqlite,
// no CGO). Embeddings are stored as little-endian float32 BLOBs and ranked in
// Go by cosine similarity.
package sqlite

// Schema creates the entry and embedding tables.
const Schema = `
CREATE TABLE IF NOT EXISTS memory_entries (
    id TEXT PRIMARY KEY,
    source_text TEXT NOT NULL,
    sentiment TEXT NOT NULL,
    summary TEXT NOT NULL,
    intent TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memory_entries_created_at ON memory_entries(created_at);

CREATE TABLE IF NOT EXISTS embeddings (
    entry_id TEXT PRIMARY KEY REFERENCES memory_entries(id) ON DELETE CASCADE,
    embedding BLOB NOT NULL,
    dimension INTEGER NOT NULL
);
`
