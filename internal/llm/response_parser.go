package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scrypster/insight/pkg/types"
)

// extractJSON extracts the first valid JSON object from a string that may contain extra text.
// This handles cases where LLMs add explanations before/after the JSON despite instructions.
func extractJSON(text string) string {
	// Remove common markdown code block markers
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // No JSON found, return as-is and let parser fail
	}

	// Find the matching closing brace
	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		// Only count braces outside of strings
		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text // No complete JSON found, return as-is
}

// ParseJSONObject decodes the first JSON object in raw model output into an
// untyped tree. Markdown fences and surrounding prose are tolerated.
// Output that holds no decodable object returns an error wrapping
// types.ErrMalformedModelOutput.
func ParseJSONObject(raw string) (map[string]any, error) {
	clean := extractJSON(raw)

	var tree map[string]any
	if err := json.Unmarshal([]byte(clean), &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedModelOutput, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: output is null", types.ErrMalformedModelOutput)
	}
	return tree, nil
}
