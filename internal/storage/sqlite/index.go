package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/insight/internal/storage"
	"github.com/scrypster/insight/pkg/types"
)

// maxCandidates caps how many embeddings a query loads, most recent first.
const maxCandidates = 10000

// Index is a SQLite backed vector index.
type Index struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens the database at dsn (a file path or ":memory:"), enables WAL
// and creates the schema.
func Open(dsn string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	// SQLite allows a single writer. One connection serialises writes and
	// avoids SQLITE_BUSY under concurrent load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	logger.Info("vector index ready", zap.String("engine", "sqlite"), zap.String("dsn", dsn))
	return &Index{db: db, logger: logger}, nil
}

// Add writes the entry and its embedding in one transaction.
func (i *Index) Add(ctx context.Context, entry types.MemoryEntry) error {
	if err := storage.ValidateEntry(entry); err != nil {
		return err
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO memory_entries (id, source_text, sentiment, summary, intent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SourceText,
		string(entry.Metadata.Sentiment),
		entry.Metadata.Summary,
		entry.Metadata.Intent,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert entry %s: %w", entry.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO embeddings (entry_id, embedding, dimension) VALUES (?, ?, ?)`,
		entry.ID, storage.EncodeVector(entry.Embedding), len(entry.Embedding))
	if err != nil {
		return fmt.Errorf("sqlite: insert embedding %s: %w", entry.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit entry %s: %w", entry.ID, err)
	}
	return nil
}

// Query loads candidate embeddings and ranks them by cosine similarity.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]types.Hit, error) {
	if err := storage.ValidateQuery(vector, k); err != nil {
		return nil, err
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT m.id, m.source_text, m.sentiment, m.summary, m.intent, m.created_at,
		       e.embedding, e.dimension
		FROM memory_entries m
		JOIN embeddings e ON e.entry_id = m.id
		ORDER BY m.created_at DESC
		LIMIT ?`, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []types.Hit
	for rows.Next() {
		var (
			entry     types.MemoryEntry
			sentiment string
			createdAt string
			blob      []byte
			dimension int
		)
		if err := rows.Scan(&entry.ID, &entry.SourceText, &sentiment, &entry.Metadata.Summary,
			&entry.Metadata.Intent, &createdAt, &blob, &dimension); err != nil {
			return nil, fmt.Errorf("sqlite: scan entry: %w", err)
		}
		entry.Metadata.Sentiment = types.Sentiment(sentiment)

		vec, err := storage.DecodeVector(blob, dimension)
		if err != nil {
			i.logger.Warn("skipping corrupt embedding", zap.String("id", entry.ID), zap.Error(err))
			continue
		}
		entry.Embedding = vec

		if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			i.logger.Warn("unparseable created_at", zap.String("id", entry.ID), zap.String("value", createdAt))
		}

		candidates = append(candidates, types.Hit{
			Similarity: storage.CosineSimilarity(vector, vec),
			Entry:      entry,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate embeddings: %w", err)
	}

	if len(candidates) == 0 {
		return []types.Hit{}, nil
	}
	return storage.TopK(candidates, k), nil
}

// Count returns the number of stored entries.
func (i *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count entries: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

var _ storage.VectorIndex = (*Index)(nil)
