package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/storage"
	"github.com/scrypster/insight/pkg/types"
)

const (
	insertSQL = `
		INSERT INTO memory_entries (id, source_text, sentiment, summary, intent, created_at, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	querySQL = `
		SELECT id, source_text, sentiment, summary, intent, created_at,
		       1 - (embedding <=> $1::vector) AS similarity
		FROM memory_entries
		ORDER BY embedding <=> $1::vector
		LIMIT $2`

	countSQL = `SELECT COUNT(*) FROM memory_entries`
)

// Index is a PostgreSQL + pgvector backed vector index.
type Index struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to dsn, verifies the connection and creates the schema.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Index, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	idx, err := New(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

// New wraps an existing connection pool and creates the schema. The index
// takes ownership of db and closes it in Close.
func New(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}
	logger.Info("vector index ready", zap.String("engine", "postgres"))
	return &Index{db: db, logger: logger}, nil
}

// Add inserts the entry and its vector in a single statement.
func (i *Index) Add(ctx context.Context, entry types.MemoryEntry) error {
	if err := storage.ValidateEntry(entry); err != nil {
		return err
	}

	_, err := i.db.ExecContext(ctx, insertSQL,
		entry.ID,
		entry.SourceText,
		string(entry.Metadata.Sentiment),
		entry.Metadata.Summary,
		entry.Metadata.Intent,
		entry.CreatedAt.UTC(),
		pgvector.NewVector(entry.Embedding),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert entry %s: %w", entry.ID, err)
	}
	return nil
}

// Query orders entries by cosine distance to vector. Similarity is reported
// as 1 minus the distance.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]types.Hit, error) {
	if err := storage.ValidateQuery(vector, k); err != nil {
		return nil, err
	}

	rows, err := i.db.QueryContext(ctx, querySQL, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("postgres: vector query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := []types.Hit{}
	for rows.Next() {
		var (
			h         types.Hit
			sentiment string
		)
		if err := rows.Scan(&h.Entry.ID, &h.Entry.SourceText, &sentiment, &h.Entry.Metadata.Summary,
			&h.Entry.Metadata.Intent, &h.Entry.CreatedAt, &h.Similarity); err != nil {
			return nil, fmt.Errorf("postgres: scan entry: %w", err)
		}
		h.Entry.Metadata.Sentiment = types.Sentiment(sentiment)
		h.Rank = len(hits) + 1
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate entries: %w", err)
	}
	return hits, nil
}

// Count returns the number of stored entries.
func (i *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := i.db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count entries: %w", err)
	}
	return n, nil
}

// Close closes the connection pool.
func (i *Index) Close() error {
	return i.db.Close()
}

var _ storage.VectorIndex = (*Index)(nil)
