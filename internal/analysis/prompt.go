package analysis

import (
	"fmt"
	"strings"

	"github.com/scrypster/insight/pkg/types"
)

// EnrichedPrompt prefixes text with the entities the extractor found so the
// model can use them as hints.
func EnrichedPrompt(text string, entities []types.Entity) string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.String())
	}
	return fmt.Sprintf("Context: Named Entities detected: [%s].\n\nAnalyze the text below considering the context above.\n\nText:\n%s",
		strings.Join(names, ", "), text)
}
