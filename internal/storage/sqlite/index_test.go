package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/insight/internal/storage"
	"github.com/scrypster/insight/pkg/types"
)

// newTestIndex creates an in-memory index. The single pooled connection keeps
// the in-memory database alive for the life of the index.
func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func entry(id, text string, vec ...float32) types.MemoryEntry {
	return types.MemoryEntry{
		ID:         id,
		SourceText: text,
		Metadata: types.MemoryMetadata{
			Sentiment: types.SentimentNegative,
			Summary:   "summary " + id,
			Intent:    "complaint",
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Embedding: vec,
	}
}

func TestIndex_EmptyQuery(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIndex_AddAndQuery(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, entry("a", "shipping delays", 0, 1)))
	require.NoError(t, idx.Add(ctx, entry("b", "refund request", 1, 0)))
	require.NoError(t, idx.Add(ctx, entry("c", "late refund", 0.7, 0.7)))

	hits, err := idx.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "b", hits[0].Entry.ID)
	assert.Equal(t, 1, hits[0].Rank)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "c", hits[1].Entry.ID)
	assert.Equal(t, 2, hits[1].Rank)

	got := hits[0].Entry
	assert.Equal(t, "refund request", got.SourceText)
	assert.Equal(t, types.SentimentNegative, got.Metadata.Sentiment)
	assert.Equal(t, "complaint", got.Metadata.Intent)
	assert.True(t, got.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, []float32{1, 0}, got.Embedding)
}

func TestIndex_DuplicateIDIsAtomic(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, entry("a", "first", 1, 0)))
	require.Error(t, idx.Add(ctx, entry("a", "second", 0, 1)))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := idx.Query(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "first", hits[0].Entry.SourceText)
}

func TestIndex_RejectsInvalid(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	assert.ErrorIs(t, idx.Add(ctx, entry("a", "no vector")), storage.ErrInvalidInput)
	_, err := idx.Query(ctx, []float32{1}, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestIndex_FilePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.db")
	ctx := context.Background()

	idx, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, entry("a", "The new product launch was a success.", 0.6, 0.8)))
	require.NoError(t, idx.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIndex_ConcurrentAdds(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("entry-%d", i)
			assert.NoError(t, idx.Add(ctx, entry(id, "text "+id, float32(i), 1)))
		}(i)
	}
	wg.Wait()

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}
