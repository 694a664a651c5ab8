package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/pkg/types"
)

// Default retry policy.
const (
	DefaultMaxAttempts = 3
	DefaultRetryWait   = 2 * time.Second
	DefaultCallTimeout = 120 * time.Second

	pingTimeout = 5 * time.Second
)

// ClientConfig controls retries and per-attempt deadlines.
// Zero values select the defaults; a negative RetryWait means no wait.
type ClientConfig struct {
	MaxAttempts int
	RetryWait   time.Duration
	CallTimeout time.Duration

	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// Client sends prompts to a Backend with bounded retries.
//
// The analysis path (Generate) recovers locally from malformed output by
// returning the fallback tree from types.FallbackAnalysis. Callers can only
// tell a fallback apart by its content. Backend failures are retried and
// then surface as types.ErrModelUnavailable on both paths.
type Client struct {
	backend Backend
	cfg     ClientConfig
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewClient wraps backend and checks connectivity once. An unreachable
// backend is logged but does not fail construction; errors surface on the
// first real call instead.
func NewClient(ctx context.Context, backend Backend, cfg ClientConfig) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = DefaultRetryWait
	} else if cfg.RetryWait < 0 {
		cfg.RetryWait = 0
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		backend: backend,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "llm"), zap.String("model", backend.GetModel())),
		metrics: cfg.Metrics,
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := backend.Ping(pingCtx); err != nil {
		c.logger.Error("language model backend unreachable", zap.Error(err))
	} else {
		c.logger.Info("connected to language model backend")
	}

	return c
}

// Generate wraps text in the analysis prompt and returns the model's JSON
// object as an untyped tree. Output without a parseable object is replaced
// by the fallback tree and no error is returned.
func (c *Client) Generate(ctx context.Context, text string) (map[string]any, error) {
	raw, err := c.call(ctx, CompletionRequest{Prompt: AnalysisPrompt(text), JSON: true})
	if err != nil {
		return nil, err
	}

	tree, err := ParseJSONObject(raw)
	if err != nil {
		c.logger.Error("model produced invalid JSON, using fallback analysis",
			zap.Error(err),
			zap.String("output", truncate(raw, 500)))
		c.metrics.LLMFallback()
		return types.FallbackAnalysis(), nil
	}
	return tree, nil
}

// GenerateFreeText sends prompt as-is and returns the response text verbatim.
func (c *Client) GenerateFreeText(ctx context.Context, prompt string) (string, error) {
	raw, err := c.call(ctx, CompletionRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// Ping checks backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

// Model returns the backend's model name.
func (c *Client) Model() string {
	return c.backend.GetModel()
}

// Budget is the longest a single Generate or GenerateFreeText call can take:
// every attempt running to its deadline plus the waits between them.
func (c *Client) Budget() time.Duration {
	attempts := time.Duration(c.cfg.MaxAttempts)
	return attempts*c.cfg.CallTimeout + (attempts-1)*c.cfg.RetryWait
}

// Backend returns the wrapped backend.
func (c *Client) Backend() Backend {
	return c.backend
}

// call runs one completion with a fixed wait between attempts. An open
// circuit or a cancelled parent context stops retrying immediately.
func (c *Client) call(ctx context.Context, req CompletionRequest) (string, error) {
	attempts := 0
	operation := func() (string, error) {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()

		out, err := c.backend.Complete(attemptCtx, req)
		if err == nil {
			c.metrics.LLMAttempt(metrics.OutcomeSuccess)
			return out, nil
		}
		c.metrics.LLMAttempt(metrics.OutcomeFailure)

		if errors.Is(err, ErrCircuitOpen) {
			return "", backoff.Permanent(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", backoff.Permanent(ctxErr)
		}
		return "", err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryWait), uint64(c.cfg.MaxAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("language model call failed, retrying",
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	out, err := backoff.RetryNotifyWithData(operation, policy, notify)
	if err != nil {
		c.logger.Error("language model unavailable", zap.Int("attempts", attempts), zap.Error(err))
		return "", fmt.Errorf("%w: %d attempt(s) failed: %w", types.ErrModelUnavailable, attempts, err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
