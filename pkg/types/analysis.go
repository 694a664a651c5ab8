package types

import "strings"

// FallbackSummary is the summary carried by the record returned when the
// model produced output that could not be parsed as JSON.
const FallbackSummary = "Error: Model produced invalid JSON format."

// FallbackIntent is the intent carried by the fallback record.
const FallbackIntent = "unknown"

// AnalysisRecord is the structured result of one analysis.
// It is produced once per analysis call and never mutated afterwards.
type AnalysisRecord struct {
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	Summary        string    `json:"summary"`
	Topics         []string  `json:"topics"`
	Intent         string    `json:"intent"`
	Entities       []Entity  `json:"entities"`
}

// IsFallback reports whether r is the deterministic record substituted for
// malformed model output. Content is the only signal; there is no error.
func (r *AnalysisRecord) IsFallback() bool {
	return r != nil && r.Summary == FallbackSummary && r.Intent == FallbackIntent &&
		r.Sentiment == SentimentNeutral && r.SentimentScore == 0
}

// FallbackAnalysis returns the untyped JSON tree substituted for malformed
// model output. It passes ParseAnalysisRecord.
func FallbackAnalysis() map[string]any {
	return map[string]any{
		"sentiment":       string(SentimentNeutral),
		"sentiment_score": 0.0,
		"summary":         FallbackSummary,
		"topics":          []any{},
		"intent":          FallbackIntent,
		"entities":        []any{},
	}
}

// MergeEntities appends every entity in extra whose text (case-insensitive)
// is not already present in base. The returned slice is newly allocated.
func MergeEntities(base, extra []Entity) []Entity {
	out := make([]Entity, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, e := range base {
		out = append(out, e)
		seen[strings.ToLower(strings.TrimSpace(e.Text))] = true
	}
	for _, e := range extra {
		key := strings.ToLower(strings.TrimSpace(e.Text))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
