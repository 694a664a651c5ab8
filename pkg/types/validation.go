package types

import (
	"fmt"
	"math"
	"strings"
)

// ParseAnalysisRecord converts an untyped JSON tree (as produced by
// encoding/json decoding into map[string]any) into an AnalysisRecord.
//
// Every field is checked explicitly; nothing is coerced across types. Any
// mismatch returns an error wrapping ErrSchemaValidation that names the field.
// Sentiment is matched case-insensitively after trimming.
func ParseAnalysisRecord(tree map[string]any) (*AnalysisRecord, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: empty object", ErrSchemaValidation)
	}

	rawSentiment, err := requireString(tree, "sentiment")
	if err != nil {
		return nil, err
	}
	sentiment := Sentiment(strings.ToLower(strings.TrimSpace(rawSentiment)))
	if !sentiment.IsValid() {
		return nil, fmt.Errorf("%w: sentiment %q is not one of positive, neutral, negative",
			ErrSchemaValidation, rawSentiment)
	}

	score, err := requireNumber(tree, "sentiment_score")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(score) || score < -1 || score > 1 {
		return nil, fmt.Errorf("%w: sentiment_score %v outside [-1, 1]", ErrSchemaValidation, score)
	}

	summary, err := requireString(tree, "summary")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("%w: summary is empty", ErrSchemaValidation)
	}

	topics, err := requireStringList(tree, "topics")
	if err != nil {
		return nil, err
	}

	intent, err := requireString(tree, "intent")
	if err != nil {
		return nil, err
	}

	entities, err := requireEntities(tree, "entities")
	if err != nil {
		return nil, err
	}

	return &AnalysisRecord{
		Sentiment:      sentiment,
		SentimentScore: score,
		Summary:        summary,
		Topics:         topics,
		Intent:         intent,
		Entities:       entities,
	}, nil
}

func lookup(tree map[string]any, field string) (any, error) {
	v, ok := tree[field]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrSchemaValidation, field)
	}
	return v, nil
}

func requireString(tree map[string]any, field string) (string, error) {
	v, err := lookup(tree, field)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string, got %T", ErrSchemaValidation, field, v)
	}
	return s, nil
}

func requireNumber(tree map[string]any, field string) (float64, error) {
	v, err := lookup(tree, field)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: field %q must be a number, got %T", ErrSchemaValidation, field, v)
}

func requireStringList(tree map[string]any, field string) ([]string, error) {
	v, err := lookup(tree, field)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			return append([]string{}, ss...), nil
		}
		return nil, fmt.Errorf("%w: field %q must be an array, got %T", ErrSchemaValidation, field, v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", ErrSchemaValidation, field, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func requireEntities(tree map[string]any, field string) ([]Entity, error) {
	v, err := lookup(tree, field)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q must be an array, got %T", ErrSchemaValidation, field, v)
	}
	out := make([]Entity, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object, got %T", ErrSchemaValidation, field, i, item)
		}
		text, err := requireString(obj, "text")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		label, err := requireString(obj, "label")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out = append(out, Entity{Text: text, Label: label})
	}
	return out, nil
}
