package types

// Span is a half-open byte range [Start, End) into the analyzed text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Entity is a named entity: the matched surface string and its category tag.
//
// Span is set only for entities found by the extractor; entities reported by
// the language model have no reliable position in the source text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Span  *Span  `json:"span,omitempty"`
}

// String renders the entity as "Text (LABEL)", the form used in prompts.
func (e Entity) String() string {
	return e.Text + " (" + e.Label + ")"
}
