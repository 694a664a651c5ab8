package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/scrypster/insight/pkg/types"
)

var (
	// ErrInvalidInput indicates an entry or query that cannot be stored or run.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClosed is returned by operations on a closed index.
	ErrClosed = errors.New("index closed")
)

// ValidateEntry checks the fields every adapter relies on.
func ValidateEntry(entry types.MemoryEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: entry ID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(entry.SourceText) == "" {
		return fmt.Errorf("%w: source text is required", ErrInvalidInput)
	}
	if len(entry.Embedding) == 0 {
		return fmt.Errorf("%w: embedding is required", ErrInvalidInput)
	}
	return nil
}

// ValidateQuery rejects empty query vectors and non-positive k.
func ValidateQuery(vector []float32, k int) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: query vector is empty", ErrInvalidInput)
	}
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, k)
	}
	return nil
}

// EncodeVector serializes v as little-endian float32 values.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector. dimension must match the
// buffer length.
func DecodeVector(buf []byte, dimension int) ([]float32, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension: %d", dimension)
	}
	if len(buf) != dimension*4 {
		return nil, fmt.Errorf("buffer size mismatch: expected %d bytes, got %d", dimension*4, len(buf))
	}
	v := make([]float32, dimension)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK sorts candidates by descending similarity, keeps the first k and
// assigns ranks starting at 1. Ties keep insertion order.
func TopK(candidates []types.Hit, k int) []types.Hit {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if k < len(candidates) {
		candidates = candidates[:k]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}
