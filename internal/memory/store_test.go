package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scrypster/insight/internal/config"
	"github.com/scrypster/insight/internal/embedding"
	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/internal/storage"
	"github.com/scrypster/insight/internal/storage/chromem"
	"github.com/scrypster/insight/pkg/types"
)

func record(summary string) types.AnalysisRecord {
	return types.AnalysisRecord{
		Sentiment:      types.SentimentPositive,
		SentimentScore: 0.8,
		Summary:        summary,
		Topics:         []string{"launch"},
		Intent:         "informational",
	}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	idx, err := chromem.Open("", nil)
	require.NoError(t, err)
	return New(embedding.NewHashingEmbedder(256), idx, nil, nil)
}

func TestStore_SaveThenSearch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	entry := store.Save(ctx, "The new product launch was a success.", record("Launch succeeded."))
	require.NotNil(t, entry)
	assert.NotEmpty(t, entry.ID)
	store.Save(ctx, "Quarterly tax filings are due in April.", record("Tax deadline."))

	result, err := store.Search(ctx, "Tell me about the product launch", 1)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)

	hit := result.Hits[0]
	assert.Equal(t, "The new product launch was a success.", hit.Entry.SourceText)
	assert.Equal(t, "Launch succeeded.", hit.Entry.Metadata.Summary)
	assert.Equal(t, types.SentimentPositive, hit.Entry.Metadata.Sentiment)
	assert.Equal(t, 1, hit.Rank)
	assert.Equal(t, "Tell me about the product launch", result.Query)
}

func TestStore_SearchEmpty(t *testing.T) {
	store := newStore(t)

	result, err := store.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.NotNil(t, result.Hits)
}

func TestStore_SearchDefaultK(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, text := range []string{"alpha report one", "alpha report two", "alpha report three", "alpha report four"} {
		require.NotNil(t, store.Save(ctx, text, record("s")))
	}

	result, err := store.Search(ctx, "alpha report", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchK, result.K)
	assert.Len(t, result.Hits, DefaultSearchK)
}

func TestStore_SearchFewerThanK(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	store.Save(ctx, "only one entry here", record("s"))

	result, err := store.Search(ctx, "entry", 5)
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
}

type failingIndex struct{ err error }

func (f failingIndex) Add(context.Context, types.MemoryEntry) error { return f.err }
func (f failingIndex) Query(context.Context, []float32, int) ([]types.Hit, error) {
	return nil, f.err
}
func (f failingIndex) Count(context.Context) (int, error) { return 0, f.err }
func (f failingIndex) Close() error                       { return nil }

var _ storage.VectorIndex = failingIndex{}

func TestStore_SaveFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := metrics.NewCollector("test")
	store := New(embedding.NewHashingEmbedder(64), failingIndex{err: errors.New("disk full")}, zap.New(core), m)

	entry := store.Save(context.Background(), "some analysed text", record("s"))
	assert.Nil(t, entry)

	entries := logs.FilterMessage("failed to save analysis to memory").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["error"], types.ErrMemoryWrite.Error())
}

func TestStore_SaveEmptyTextIsSkipped(t *testing.T) {
	store := newStore(t)
	assert.Nil(t, store.Save(context.Background(), "   ", record("s")))

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_SearchFailureWrapsUnavailable(t *testing.T) {
	store := New(embedding.NewHashingEmbedder(64), failingIndex{err: errors.New("connection refused")}, nil, nil)

	_, err := store.Search(context.Background(), "question", 3)
	assert.ErrorIs(t, err, types.ErrMemoryUnavailable)

	_, err = store.Count(context.Background())
	assert.ErrorIs(t, err, types.ErrMemoryUnavailable)
}

type failingEmbedder struct{ err error }

func (f failingEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, f.err }
func (f failingEmbedder) GetModel() string                                 { return "failing" }

func TestStore_EmbeddingFailureWrapsUnavailable(t *testing.T) {
	idx, err := chromem.Open("", nil)
	require.NoError(t, err)
	store := New(failingEmbedder{err: errors.New("model not loaded")}, idx, nil, nil)

	_, err = store.Search(context.Background(), "product launch", 3)
	assert.ErrorIs(t, err, types.ErrMemoryUnavailable)
}

func TestStore_SearchWithoutIndexableWords(t *testing.T) {
	queries := []string{"What is this about?", "Tell me about it", "???", "   "}

	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)
		for _, q := range queries {
			result, err := store.Search(context.Background(), q, 3)
			require.NoError(t, err, q)
			assert.True(t, result.Empty(), q)
			assert.NotNil(t, result.Hits, q)
		}
	})

	t.Run("populated store", func(t *testing.T) {
		store := newStore(t)
		require.NotNil(t, store.Save(context.Background(), "The new product launch was a success.", record("Launch.")))
		for _, q := range queries {
			result, err := store.Search(context.Background(), q, 3)
			require.NoError(t, err, q)
			assert.True(t, result.Empty(), q)
		}
	})
}

func TestOpenIndex(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "chromem in memory", cfg: config.StorageConfig{Engine: "chromem"}},
		{name: "chromem on disk", cfg: config.StorageConfig{Engine: "chromem", DataPath: t.TempDir()}},
		{name: "sqlite on disk", cfg: config.StorageConfig{Engine: "sqlite", DataPath: t.TempDir()}},
		{name: "postgres without dsn", cfg: config.StorageConfig{Engine: "postgres"}, wantErr: true},
		{name: "unknown", cfg: config.StorageConfig{Engine: "redis"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := OpenIndex(ctx, tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer idx.Close()

			n, err := idx.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}
