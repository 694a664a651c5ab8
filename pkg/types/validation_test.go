package types_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/scrypster/insight/pkg/types"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))
	return tree
}

func TestParseAnalysisRecord_Valid(t *testing.T) {
	tree := decode(t, `{
		"sentiment": "Positive",
		"sentiment_score": 0.8,
		"summary": "Acme shipped the product.",
		"topics": ["launch", "product"],
		"intent": "informational",
		"entities": [{"text": "Acme", "label": "ORG"}]
	}`)

	rec, err := types.ParseAnalysisRecord(tree)
	require.NoError(t, err)

	assert.Equal(t, types.SentimentPositive, rec.Sentiment)
	assert.InDelta(t, 0.8, rec.SentimentScore, 1e-9)
	assert.Equal(t, "Acme shipped the product.", rec.Summary)
	assert.Equal(t, []string{"launch", "product"}, rec.Topics)
	assert.Equal(t, "informational", rec.Intent)
	assert.Equal(t, []types.Entity{{Text: "Acme", Label: "ORG"}}, rec.Entities)
}

func TestParseAnalysisRecord_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing sentiment", `{"sentiment_score":0,"summary":"s","topics":[],"intent":"i","entities":[]}`},
		{"unknown sentiment", `{"sentiment":"ecstatic","sentiment_score":0,"summary":"s","topics":[],"intent":"i","entities":[]}`},
		{"score as string", `{"sentiment":"neutral","sentiment_score":"0.5","summary":"s","topics":[],"intent":"i","entities":[]}`},
		{"score out of range", `{"sentiment":"positive","sentiment_score":1.5,"summary":"s","topics":[],"intent":"i","entities":[]}`},
		{"empty summary", `{"sentiment":"neutral","sentiment_score":0,"summary":"  ","topics":[],"intent":"i","entities":[]}`},
		{"topics not array", `{"sentiment":"neutral","sentiment_score":0,"summary":"s","topics":"a,b","intent":"i","entities":[]}`},
		{"topic not string", `{"sentiment":"neutral","sentiment_score":0,"summary":"s","topics":[1],"intent":"i","entities":[]}`},
		{"intent missing", `{"sentiment":"neutral","sentiment_score":0,"summary":"s","topics":[],"entities":[]}`},
		{"entity without label", `{"sentiment":"neutral","sentiment_score":0,"summary":"s","topics":[],"intent":"i","entities":[{"text":"Acme"}]}`},
		{"entity not object", `{"sentiment":"neutral","sentiment_score":0,"summary":"s","topics":[],"intent":"i","entities":["Acme"]}`},
		{"null entities", `{"sentiment":"neutral","sentiment_score":0,"summary":"s","topics":[],"intent":"i","entities":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := types.ParseAnalysisRecord(decode(t, tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrSchemaValidation), "got %v", err)
		})
	}
}

func TestParseAnalysisRecord_Nil(t *testing.T) {
	_, err := types.ParseAnalysisRecord(nil)
	assert.ErrorIs(t, err, types.ErrSchemaValidation)
}

func TestFallbackAnalysis_ParsesAsFallback(t *testing.T) {
	rec, err := types.ParseAnalysisRecord(types.FallbackAnalysis())
	require.NoError(t, err)

	assert.True(t, rec.IsFallback())
	assert.Equal(t, types.SentimentNeutral, rec.Sentiment)
	assert.Zero(t, rec.SentimentScore)
	assert.Empty(t, rec.Topics)
	assert.Empty(t, rec.Entities)
}

// TestParseAnalysisRecord_SentimentProperty checks that any accepted record
// carries one of the three enumerated sentiments and an in-range score.
func TestParseAnalysisRecord_SentimentProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sentiment := rapid.SampledFrom([]string{
			"positive", "neutral", "negative", "NEGATIVE", " Neutral ", "mixed", "", "good",
		}).Draw(rt, "sentiment")
		score := rapid.Float64Range(-2, 2).Draw(rt, "score")

		tree := map[string]any{
			"sentiment":       sentiment,
			"sentiment_score": score,
			"summary":         "summary",
			"topics":          []any{"a"},
			"intent":          "informational",
			"entities":        []any{},
		}

		rec, err := types.ParseAnalysisRecord(tree)
		if err != nil {
			if !errors.Is(err, types.ErrSchemaValidation) {
				rt.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		if !rec.Sentiment.IsValid() {
			rt.Fatalf("accepted invalid sentiment %q", rec.Sentiment)
		}
		if rec.SentimentScore < -1 || rec.SentimentScore > 1 {
			rt.Fatalf("accepted out-of-range score %v", rec.SentimentScore)
		}
	})
}

func TestMergeEntities(t *testing.T) {
	base := []types.Entity{{Text: "Acme", Label: "ORG"}}
	extra := []types.Entity{
		{Text: "acme", Label: "ORG", Span: &types.Span{Start: 0, End: 4}},
		{Text: "Paris", Label: "GPE", Span: &types.Span{Start: 10, End: 15}},
		{Text: " ", Label: "MISC"},
	}

	merged := types.MergeEntities(base, extra)

	require.Len(t, merged, 2)
	assert.Equal(t, "Acme", merged[0].Text)
	assert.Equal(t, "Paris", merged[1].Text)
	assert.Equal(t, &types.Span{Start: 10, End: 15}, merged[1].Span)
	assert.Len(t, base, 1, "base must not be modified")
}

func TestRetrievalResult_Documents(t *testing.T) {
	res := types.RetrievalResult{Hits: []types.Hit{
		{Rank: 1, Entry: types.MemoryEntry{SourceText: "first"}},
		{Rank: 2, Entry: types.MemoryEntry{SourceText: "second"}},
	}}

	assert.False(t, res.Empty())
	assert.Equal(t, []string{"first", "second"}, res.Documents())
	assert.True(t, types.RetrievalResult{}.Empty())
}

func TestSpan_Overlaps(t *testing.T) {
	a := types.Span{Start: 0, End: 5}
	assert.True(t, a.Overlaps(types.Span{Start: 4, End: 8}))
	assert.False(t, a.Overlaps(types.Span{Start: 5, End: 8}))
	assert.Equal(t, 5, a.Len())
}
