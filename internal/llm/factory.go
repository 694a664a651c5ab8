package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/config"
	"github.com/scrypster/insight/internal/embedding"
)

// NewBackend creates the Backend selected by cfg.Provider.
func NewBackend(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Backend, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaClient(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.CallTimeout,
			Logger:  logger,
		}), nil
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.CallTimeout,
			Logger:  logger,
		}), nil
	case "anthropic":
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.CallTimeout,
			Logger:  logger,
		}), nil
	case "gemini":
		g, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// NewEmbedder creates the Embedder selected by cfg.Provider, wrapped in a
// cache when cfg.CacheSize is positive. Anthropic has no embeddings API and
// is rejected.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case "hashing":
		inner = embedding.NewHashingEmbedder(cfg.Dimensions)
	case "ollama", "":
		model := cfg.Model
		if model == "" {
			model = "all-minilm"
		}
		inner = NewOllamaClient(OllamaConfig{BaseURL: cfg.BaseURL, Model: model, Logger: logger})
	case "openai":
		model := cfg.Model
		if model == "" || model == "all-minilm" {
			model = "text-embedding-3-small"
		}
		inner = NewOpenAIClient(OpenAIConfig{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL, Logger: logger})
	case "gemini":
		model := cfg.Model
		if model == "" || model == "all-minilm" {
			model = "text-embedding-004"
		}
		g, err := NewGeminiClient(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL, Logger: logger})
		if err != nil {
			return nil, err
		}
		inner = g
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Provider)
	}

	if cfg.CacheSize <= 0 {
		return inner, nil
	}
	cached, err := embedding.NewCachedEmbedder(inner, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}
