package nlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/scrypster/insight/pkg/types"
)

type labeled struct {
	Text  string
	Label string
}

func strip(entities []types.Entity) []labeled {
	out := make([]labeled, len(entities))
	for i, e := range entities {
		out[i] = labeled{e.Text, e.Label}
	}
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []labeled
	}{
		{
			name: "mixed entities",
			text: "Apple announced a $1.2 million deal with Microsoft in Paris on March 5, 2024.",
			want: []labeled{
				{"Apple", "ORG"},
				{"$1.2 million", "MONEY"},
				{"Microsoft", "ORG"},
				{"Paris", "GPE"},
				{"March 5, 2024", "DATE"},
			},
		},
		{
			name: "titles suffixes and org heads",
			text: "Dr. Jane Smith joined Acme Corp in 2019 and Bank of America raised rates by 5%.",
			want: []labeled{
				{"Jane Smith", "PERSON"},
				{"Acme Corp", "ORG"},
				{"2019", "DATE"},
				{"Bank of America", "ORG"},
				{"5%", "PERCENT"},
			},
		},
		{
			name: "duplicates keep first occurrence",
			text: "Google hired Alice. Google also hired Bob.",
			want: []labeled{
				{"Google", "ORG"},
				{"Alice", "PERSON"},
				{"Bob", "PERSON"},
			},
		},
		{
			name: "conjunction splits people",
			text: "We met Alice and Bob in London.",
			want: []labeled{
				{"Alice", "PERSON"},
				{"Bob", "PERSON"},
				{"London", "GPE"},
			},
		},
		{
			name: "acronym becomes organization",
			text: "Analysts expect XYZ to rebound.",
			want: []labeled{{"XYZ", "ORG"}},
		},
		{
			name: "sentence initial word dropped",
			text: "Nothing happened here.",
			want: []labeled{},
		},
		{
			name: "relative dates",
			text: "the launch slipped to next quarter",
			want: []labeled{{"next quarter", "DATE"}},
		},
	}

	x := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strip(x.Extract(tt.text)))
		})
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	x := NewExtractor()
	for _, text := range []string{"", "   ", "\n\t"} {
		got := x.Extract(text)
		require.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestExtract_Spans(t *testing.T) {
	text := "Dr. Jane Smith joined Acme Corp in 2019."
	for _, e := range NewExtractor().Extract(text) {
		require.NotNil(t, e.Span, e.Text)
		assert.Equal(t, e.Text, text[e.Span.Start:e.Span.End])
	}
}

var vocabulary = []string{
	"Apple", "Paris", "Alice", "and", "Bob", "of", "Bank", "America", "the",
	"$5", "million", "12%", "March", "3,", "2024", "in", "1999", "Dr.",
	"Smith", "Acme", "Inc", "said", ".", "XYZ", "NASA", "Tuesday", "New",
	"York", "grew", "by", "percent", "Apple's", "U.S.", "&", "AT&T",
}

// TestExtract_Properties checks determinism, span fidelity, ordering and the
// absence of overlaps over generated sentences.
func TestExtract_Properties(t *testing.T) {
	x := NewExtractor()
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(rapid.SampledFrom(vocabulary), 0, 24).Draw(rt, "words")
		text := strings.Join(words, " ")

		first := x.Extract(text)
		second := x.Extract(text)
		if !assert.ObjectsAreEqual(first, second) {
			rt.Fatalf("extraction is not deterministic for %q", text)
		}

		seen := map[string]bool{}
		prevEnd := 0
		for _, e := range first {
			if e.Span == nil {
				rt.Fatalf("entity %q has no span", e.Text)
			}
			if text[e.Span.Start:e.Span.End] != e.Text {
				rt.Fatalf("span %v does not cover %q in %q", *e.Span, e.Text, text)
			}
			if e.Span.Start < prevEnd {
				rt.Fatalf("spans overlap or are unordered in %q: %v", text, first)
			}
			prevEnd = e.Span.End
			key := e.Label + "|" + e.Text
			if seen[key] {
				rt.Fatalf("duplicate entity %s", key)
			}
			seen[key] = true
		}

		var b strings.Builder
		for _, seg := range Annotate(text, first) {
			b.WriteString(seg.Text)
		}
		if b.String() != text {
			rt.Fatalf("annotation does not reassemble %q", text)
		}
	})
}
