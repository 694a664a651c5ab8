package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/insight/internal/config"
	"github.com/scrypster/insight/internal/embedding"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		provider string
		wantType any
	}{
		{"ollama", &OllamaClient{}},
		{"", &OllamaClient{}},
		{"openai", &OpenAIClient{}},
		{"anthropic", &AnthropicClient{}},
		{"gemini", &GeminiClient{}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			backend, err := NewBackend(context.Background(), config.LLMConfig{
				Provider: tt.provider,
				Model:    "m",
				APIKey:   "key",
			}, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, backend)
			assert.Equal(t, "m", backend.GetModel())
		})
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := NewBackend(context.Background(), config.LLMConfig{Provider: "cohere"}, nil)
	assert.Error(t, err)
}

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "hashing", Dimensions: 32}, nil)
	require.NoError(t, err)
	assert.IsType(t, &embedding.HashingEmbedder{}, e)

	e, err = NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "hashing", Dimensions: 32, CacheSize: 8}, nil)
	require.NoError(t, err)
	assert.IsType(t, &embedding.CachedEmbedder{}, e)
	assert.Equal(t, "hashing-32", e.GetModel())

	e, err = NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "openai", Model: "all-minilm", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", e.GetModel())

	_, err = NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "anthropic"}, nil)
	assert.Error(t, err)
}
