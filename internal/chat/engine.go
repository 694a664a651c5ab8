// Package chat answers questions from past analyses held in semantic memory.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/pkg/types"
)

// SearchK is the number of past analyses retrieved per question.
const SearchK = 5

// NoContextAnswer is returned, without calling the model, when memory holds
// nothing relevant.
const NoContextAnswer = "I couldn't find any relevant past analyses to answer that question."

// Searcher retrieves past analyses similar to a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) (types.RetrievalResult, error)
}

// TextGenerator returns a free-text model completion for prompt.
type TextGenerator interface {
	GenerateFreeText(ctx context.Context, prompt string) (string, error)
}

// Engine answers questions grounded in retrieved memory.
type Engine struct {
	memory  Searcher
	model   TextGenerator
	k       int
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithSearchK overrides the number of retrieved analyses.
func WithSearchK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine.
func NewEngine(memory Searcher, model TextGenerator, opts ...Option) *Engine {
	e := &Engine{memory: memory, model: model, k: SearchK, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("component", "chat"))
	return e
}

// Answer retrieves the closest past analyses and asks the model to answer
// from them alone. Search and model failures are returned unchanged.
func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is empty", types.ErrInsufficientInput)
	}

	result, err := e.memory.Search(ctx, question, e.k)
	if err != nil {
		return "", err
	}
	if result.Empty() {
		e.metrics.ChatAnswer(false)
		e.logger.Debug("no relevant memory, skipping model call")
		return NoContextAnswer, nil
	}

	e.logger.Debug("answering from memory", zap.Int("documents", len(result.Hits)))
	answer, err := e.model.GenerateFreeText(ctx, GroundedPrompt(question, result.Documents()))
	if err != nil {
		return "", err
	}
	e.metrics.ChatAnswer(true)
	return answer, nil
}

// GroundedPrompt builds the answer prompt from the retrieved documents,
// joined in rank order by a blank line.
func GroundedPrompt(question string, documents []string) string {
	return fmt.Sprintf(`You are a helpful assistant. Use the following pieces of past analysis context to answer the user's question.
If the answer is not in the context, say "I don't know".

Context:
%s

Question: %s

Answer:`, strings.Join(documents, "\n\n"), question)
}
