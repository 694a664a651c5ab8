// Package chromem implements storage.VectorIndex on chromem-go, an embedded
// vector database that persists each document as a file under a directory.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/storage"
	"github.com/scrypster/insight/pkg/types"
)

// CollectionName is the collection every analysis is written to.
const CollectionName = "analysis_history"

const (
	metaSentiment = "sentiment"
	metaSummary   = "summary"
	metaIntent    = "intent"
	metaCreatedAt = "created_at"
)

// errNoEmbedder is returned if chromem ever tries to embed on its own.
// Vectors are always computed by the memory store before Add and Query.
var errNoEmbedder = errors.New("chromem: documents must carry precomputed embeddings")

// Index is a chromem-go backed vector index.
type Index struct {
	db     *chromem.DB
	col    *chromem.Collection
	logger *zap.Logger
}

// Open opens or creates the persistent database at path. An empty path
// gives an in-memory database.
func Open(path string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("chromem: open %s: %w", path, err)
		}
	}

	col, err := db.GetOrCreateCollection(CollectionName, nil, refuseEmbedding)
	if err != nil {
		return nil, fmt.Errorf("chromem: collection %s: %w", CollectionName, err)
	}

	logger.Info("vector index ready",
		zap.String("engine", "chromem"),
		zap.String("path", path),
		zap.Int("entries", col.Count()))

	return &Index{db: db, col: col, logger: logger}, nil
}

func refuseEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

// Add stores the entry as one document. The write is atomic per document.
func (i *Index) Add(ctx context.Context, entry types.MemoryEntry) error {
	if err := storage.ValidateEntry(entry); err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        entry.ID,
		Content:   entry.SourceText,
		Embedding: entry.Embedding,
		Metadata: map[string]string{
			metaSentiment: string(entry.Metadata.Sentiment),
			metaSummary:   entry.Metadata.Summary,
			metaIntent:    entry.Metadata.Intent,
			metaCreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if err := i.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("chromem: add document %s: %w", entry.ID, err)
	}
	return nil
}

// Query returns the k most similar documents. chromem rejects a result
// count above the collection size, so k is clamped first.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]types.Hit, error) {
	if err := storage.ValidateQuery(vector, k); err != nil {
		return nil, err
	}

	n := i.col.Count()
	if n == 0 {
		return []types.Hit{}, nil
	}
	if k > n {
		k = n
	}

	results, err := i.col.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	hits := make([]types.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, types.Hit{
			Similarity: float64(r.Similarity),
			Entry:      i.entryFrom(r),
		})
	}
	return storage.TopK(hits, k), nil
}

func (i *Index) entryFrom(r chromem.Result) types.MemoryEntry {
	entry := types.MemoryEntry{
		ID:         r.ID,
		SourceText: r.Content,
		Metadata: types.MemoryMetadata{
			Sentiment: types.Sentiment(r.Metadata[metaSentiment]),
			Summary:   r.Metadata[metaSummary],
			Intent:    r.Metadata[metaIntent],
		},
		Embedding: r.Embedding,
	}
	if ts := r.Metadata[metaCreatedAt]; ts != "" {
		created, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			i.logger.Warn("unparseable created_at in chromem metadata",
				zap.String("id", r.ID), zap.String("value", ts))
		} else {
			entry.CreatedAt = created
		}
	}
	return entry
}

// Count returns the number of documents in the collection.
func (i *Index) Count(context.Context) (int, error) {
	return i.col.Count(), nil
}

// Close is a no-op; chromem writes each document to disk as it is added.
func (i *Index) Close() error {
	return nil
}

var _ storage.VectorIndex = (*Index)(nil)
