// Package storage defines the vector index contract behind the memory store
// and shared helpers for its adapters.
package storage

import (
	"context"

	"github.com/scrypster/insight/pkg/types"
)

// VectorIndex stores memory entries with their embeddings and answers
// nearest-neighbour queries by cosine similarity.
//
// Implementations must be safe for concurrent use. Add is atomic per entry.
// A Query running alongside an Add may or may not observe the new entry.
type VectorIndex interface {
	// Add persists entry. entry.Embedding must be non-empty.
	Add(ctx context.Context, entry types.MemoryEntry) error

	// Query returns up to k hits ordered by descending similarity, ranked
	// from 1. An empty index yields an empty slice and no error.
	Query(ctx context.Context, vector []float32, k int) ([]types.Hit, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}
