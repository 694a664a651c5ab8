package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string // default: gemini-2.5-flash
	BaseURL string // optional, for proxies and tests
	Logger  *zap.Logger
}

// GeminiClient implements Backend and Embedder on the Gemini API.
type GeminiClient struct {
	cfg            GeminiConfig
	models         *genai.Models
	circuitBreaker *CircuitBreaker
}

// NewGeminiClient creates a Gemini client. Construction fails only when the
// SDK rejects the configuration; the API is not contacted.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	if client == nil || client.Models == nil {
		return nil, fmt.Errorf("new gemini client: models client is nil")
	}

	return &GeminiClient{
		cfg:            cfg,
		models:         client.Models,
		circuitBreaker: NewCircuitBreaker("gemini", cfg.Logger),
	}, nil
}

// Complete generates content for a single user prompt. With req.JSON set,
// the response MIME type is application/json.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	result, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		var config *genai.GenerateContentConfig
		if req.JSON {
			config = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
		}

		resp, err := c.models.GenerateContent(ctx, c.cfg.Model, genai.Text(req.Prompt), config)
		if err != nil {
			return "", fmt.Errorf("gemini generate content: %w", err)
		}
		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("gemini returned empty content")
		}
		return text, nil
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return "", fmt.Errorf("gemini circuit breaker open: %w", err)
		}
		return "", err
	}
	return result.(string), nil
}

// Embed generates an embedding vector for the given text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		resp, err := c.models.EmbedContent(ctx, c.cfg.Model, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("gemini embed content: %w", err)
		}
		if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
			return nil, fmt.Errorf("gemini returned empty embedding")
		}
		return resp.Embeddings[0].Values, nil
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return nil, fmt.Errorf("gemini embedding circuit breaker open: %w", err)
		}
		return nil, err
	}
	return result.([]float32), nil
}

// Ping fetches the configured model's metadata.
func (c *GeminiClient) Ping(ctx context.Context) error {
	if _, err := c.models.Get(ctx, c.cfg.Model, nil); err != nil {
		return fmt.Errorf("gemini get model: %w", err)
	}
	return nil
}

// GetModel returns the configured model name.
func (c *GeminiClient) GetModel() string {
	return c.cfg.Model
}

// Circuit reports the breaker state.
func (c *GeminiClient) Circuit() string {
	return c.circuitBreaker.State()
}

var (
	_ Backend  = (*GeminiClient)(nil)
	_ Embedder = (*GeminiClient)(nil)
)
