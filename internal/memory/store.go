// Package memory is the semantic memory of past analyses: it embeds text,
// writes it to a vector index and retrieves the closest entries for a query.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/embedding"
	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/internal/storage"
	"github.com/scrypster/insight/pkg/types"
)

// DefaultSearchK is used when Search is called with k <= 0.
const DefaultSearchK = 3

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}

// Store is the vector memory store. It owns its embedder so callers only
// ever deal in text.
type Store struct {
	embedder Embedder
	index    storage.VectorIndex
	logger   *zap.Logger
	metrics  *metrics.Collector
	now      func() time.Time
}

// New creates a Store. logger and m may be nil.
func New(embedder Embedder, index storage.VectorIndex, logger *zap.Logger, m *metrics.Collector) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		embedder: embedder,
		index:    index,
		logger:   logger.With(zap.String("component", "memory"), zap.String("embedding_model", embedder.GetModel())),
		metrics:  m,
		now:      time.Now,
	}
}

// Save embeds text and stores it with the record's sentiment, summary and
// intent under a fresh id. It never fails: errors are logged as
// types.ErrMemoryWrite and counted. The returned entry is nil when nothing
// was written.
func (s *Store) Save(ctx context.Context, text string, record types.AnalysisRecord) *types.MemoryEntry {
	entry, err := s.save(ctx, text, record)
	if err != nil {
		s.metrics.MemoryWrite(metrics.OutcomeFailure)
		s.logger.Error("failed to save analysis to memory",
			zap.Error(fmt.Errorf("%w: %w", types.ErrMemoryWrite, err)),
			zap.Int("text_length", len(text)))
		return nil
	}
	s.metrics.MemoryWrite(metrics.OutcomeSuccess)
	s.logger.Debug("saved analysis to memory", zap.String("id", entry.ID))
	return entry
}

func (s *Store) save(ctx context.Context, text string, record types.AnalysisRecord) (*types.MemoryEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty source text")
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	entry := types.MemoryEntry{
		ID:         uuid.NewString(),
		SourceText: text,
		Metadata:   types.MetadataFrom(record),
		CreatedAt:  s.now().UTC(),
		Embedding:  vec,
	}
	if err := s.index.Add(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Search returns up to k stored entries ranked by cosine similarity to
// query. An empty store gives an empty result, and so does a query with no
// indexable words, since nothing can match it. Failures wrap
// types.ErrMemoryUnavailable.
func (s *Store) Search(ctx context.Context, query string, k int) (types.RetrievalResult, error) {
	if k <= 0 {
		k = DefaultSearchK
	}
	result := types.RetrievalResult{Query: query, K: k, Hits: []types.Hit{}}

	vec, err := s.embedder.Embed(ctx, query)
	if errors.Is(err, embedding.ErrEmptyText) {
		s.metrics.MemorySearch(metrics.OutcomeSuccess)
		return result, nil
	}
	if err != nil {
		s.metrics.MemorySearch(metrics.OutcomeFailure)
		return result, fmt.Errorf("%w: embed query: %w", types.ErrMemoryUnavailable, err)
	}

	hits, err := s.index.Query(ctx, vec, k)
	if err != nil {
		s.metrics.MemorySearch(metrics.OutcomeFailure)
		return result, fmt.Errorf("%w: query index: %w", types.ErrMemoryUnavailable, err)
	}
	s.metrics.MemorySearch(metrics.OutcomeSuccess)

	if hits != nil {
		result.Hits = hits
	}
	return result, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrMemoryUnavailable, err)
	}
	return n, nil
}

// Close closes the underlying index.
func (s *Store) Close() error {
	return s.index.Close()
}
