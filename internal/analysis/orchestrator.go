// Package analysis runs the hybrid analysis pipeline: rule-based entity
// extraction, an entity-enriched language model pass, strict validation and
// a background write to semantic memory.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/extract"
	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/pkg/types"
)

// DefaultMinInputLength is the minimum trimmed input length in runes.
const DefaultMinInputLength = 10

// Extractor finds named entities in text.
type Extractor interface {
	Extract(text string) []types.Entity
}

// Generator asks the language model for a JSON analysis of prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (map[string]any, error)
}

// Submitter accepts an analysis for background persistence.
type Submitter interface {
	Submit(text string, record types.AnalysisRecord) bool
}

// Config holds orchestrator options.
type Config struct {
	MinInputLength int
	Logger         *zap.Logger
	Metrics        *metrics.Collector
}

// Orchestrator coordinates one analysis from raw text to validated record.
type Orchestrator struct {
	extractor Extractor
	model     Generator
	persister Submitter
	minLen    int
	logger    *zap.Logger
	metrics   *metrics.Collector
}

// NewOrchestrator wires the pipeline. persister may be nil, in which case
// nothing is written to memory.
func NewOrchestrator(extractor Extractor, model Generator, persister Submitter, cfg Config) *Orchestrator {
	if cfg.MinInputLength <= 0 {
		cfg.MinInputLength = DefaultMinInputLength
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		extractor: extractor,
		model:     model,
		persister: persister,
		minLen:    cfg.MinInputLength,
		logger:    logger.With(zap.String("component", "orchestrator")),
		metrics:   cfg.Metrics,
	}
}

// Analyze extracts entities, prompts the model with them as context and
// validates the result. The record is handed to the persister only once it
// has passed validation; persistence never affects the return value.
func (o *Orchestrator) Analyze(ctx context.Context, text string) (*types.AnalysisRecord, error) {
	start := time.Now()
	record, err := o.analyze(ctx, text)
	if err != nil {
		o.metrics.ObserveAnalysis(metrics.OutcomeFailure, time.Since(start))
		return nil, err
	}
	o.metrics.ObserveAnalysis(metrics.OutcomeSuccess, time.Since(start))
	return record, nil
}

func (o *Orchestrator) analyze(ctx context.Context, text string) (*types.AnalysisRecord, error) {
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < o.minLen {
		return nil, fmt.Errorf("%w: got %d characters, need at least %d", types.ErrInsufficientInput, n, o.minLen)
	}

	entities := o.extractor.Extract(text)
	o.logger.Debug("entities extracted", zap.Int("count", len(entities)))

	tree, err := o.model.Generate(ctx, EnrichedPrompt(text, entities))
	if err != nil {
		return nil, err
	}

	record, err := types.ParseAnalysisRecord(tree)
	if err != nil {
		o.logger.Warn("model output failed validation", zap.Error(err))
		return nil, err
	}
	record.Entities = types.MergeEntities(record.Entities, entities)

	if record.IsFallback() {
		o.logger.Warn("returning fallback analysis")
	}

	if o.persister != nil {
		o.persister.Submit(text, *record)
	}
	return record, nil
}

// AnalyzeDocument extracts text from an uploaded document and analyzes it.
func (o *Orchestrator) AnalyzeDocument(ctx context.Context, filename string, data []byte) (*types.AnalysisRecord, error) {
	text, err := extract.Text(filename, data)
	if err != nil {
		return nil, err
	}
	o.logger.Info("document extracted",
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
		zap.Int("characters", utf8.RuneCountInString(text)))
	return o.Analyze(ctx, text)
}
