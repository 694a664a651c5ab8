// Package llm provides the language model client used by the analysis and
// chat pipelines: provider backends (Ollama, OpenAI-compatible, Gemini,
// Anthropic), embedders, a circuit breaker, retry with fixed backoff, and the
// strict JSON-only analysis prompt with its response parser.
package llm

import "fmt"

// AnalysisPrompt wraps text in the strict JSON-only analysis instruction.
// The schema mirrors types.AnalysisRecord field for field.
func AnalysisPrompt(text string) string {
	return fmt.Sprintf(`You are an API that outputs strictly valid JSON.
OUTPUT: ONLY valid JSON. NO markdown. NO code blocks. NO backticks.

Analyze this text:
"""
%s
"""

Return JSON matching this schema exactly:
{
  "sentiment": "positive" | "neutral" | "negative",
  "sentiment_score": 0.5,
  "summary": "One sentence summary.",
  "topics": ["topic1", "topic2"],
  "intent": "informational" | "complaint" | "request" | "feedback",
  "entities": [{"text": "EntityName", "label": "ORG"}]
}

RULES:
1. sentiment_score is a number between -1.0 and 1.0; its sign matches sentiment
2. summary is one non-empty sentence
3. topics is an array of short strings
4. entities is an array of objects with "text" and "label"
5. No null values, no trailing commas`, text)
}
