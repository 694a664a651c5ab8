// Package embedding holds the local embedders: a deterministic
// feature-hashing embedder that needs no model server, and a ristretto
// cache that memoizes any embedder.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// ErrEmptyText is returned when there is nothing to embed.
var ErrEmptyText = errors.New("embedding: empty text")

// DefaultDimensions matches the width of all-MiniLM-L6-v2.
const DefaultDimensions = 384

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Words carrying no topical signal; removing them keeps short queries from
// matching on filler.
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "at": true, "for": true, "is": true,
	"was": true, "were": true, "be": true, "it": true, "me": true, "about": true,
	"tell": true, "what": true, "with": true, "this": true, "that": true,
}

// HashingEmbedder maps text to a fixed-width vector by hashing lowercase word
// unigrams and bigrams into signed buckets, then L2-normalizing. It is
// deterministic and safe for concurrent use.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder returns an embedder producing dims-wide vectors.
// Non-positive dims selects DefaultDimensions.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Embed returns the normalized feature vector for text.
func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var words []string
	for _, w := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if !fillerWords[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, ErrEmptyText
	}

	vec := make([]float64, h.dims)
	for i, w := range words {
		h.add(vec, w, 1)
		if i > 0 {
			h.add(vec, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("embedding: features cancelled out for %q", text)
	}

	out := make([]float32, h.dims)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (h *HashingEmbedder) add(vec []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// GetModel names the embedder, including its width.
func (h *HashingEmbedder) GetModel() string {
	return fmt.Sprintf("hashing-%d", h.dims)
}

// Dimensions returns the vector width.
func (h *HashingEmbedder) Dimensions() int {
	return h.dims
}
