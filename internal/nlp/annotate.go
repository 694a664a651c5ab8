package nlp

import (
	"sort"

	"github.com/scrypster/insight/pkg/types"
)

// Segment is a contiguous piece of annotated text. Entity is nil for plain
// text between entities.
type Segment struct {
	Text   string        `json:"text"`
	Entity *types.Entity `json:"entity,omitempty"`
}

// Annotate splits text into plain and entity segments using entity spans.
// Entities without a span, with a span outside text, whose span does not
// cover their surface string, or that overlap an earlier entity are left as
// plain text. Concatenating the segment texts always yields text.
func Annotate(text string, entities []types.Entity) []Segment {
	segments := []Segment{}
	if text == "" {
		return segments
	}

	usable := make([]types.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Span == nil || e.Span.Start < 0 || e.Span.End > len(text) || e.Span.Start >= e.Span.End {
			continue
		}
		if text[e.Span.Start:e.Span.End] != e.Text {
			continue
		}
		usable = append(usable, e)
	}
	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Span.Start < usable[j].Span.Start })

	pos := 0
	for i := range usable {
		e := usable[i]
		if e.Span.Start < pos {
			continue
		}
		if e.Span.Start > pos {
			segments = append(segments, Segment{Text: text[pos:e.Span.Start]})
		}
		segments = append(segments, Segment{Text: e.Text, Entity: &e})
		pos = e.Span.End
	}
	if pos < len(text) {
		segments = append(segments, Segment{Text: text[pos:]})
	}
	return segments
}
