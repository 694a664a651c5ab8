package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/insight/pkg/types"
)

func TestAnnotate(t *testing.T) {
	text := "Acme hired Acme alumni."
	entities := []types.Entity{
		{Text: "Acme", Label: "ORG", Span: &types.Span{Start: 11, End: 15}},
		{Text: "Acme", Label: "ORG", Span: &types.Span{Start: 0, End: 4}},
	}

	segs := Annotate(text, entities)

	require.Len(t, segs, 4)
	assert.Equal(t, "Acme", segs[0].Text)
	require.NotNil(t, segs[0].Entity)
	assert.Equal(t, 0, segs[0].Entity.Span.Start)
	assert.Equal(t, " hired ", segs[1].Text)
	assert.Nil(t, segs[1].Entity)
	assert.Equal(t, "Acme", segs[2].Text)
	assert.Equal(t, 11, segs[2].Entity.Span.Start)
	assert.Equal(t, " alumni.", segs[3].Text)
}

func TestAnnotate_SkipsUnusableEntities(t *testing.T) {
	text := "Paris in spring"
	entities := []types.Entity{
		{Text: "Paris", Label: "GPE"},                                             // no span
		{Text: "Paris", Label: "GPE", Span: &types.Span{Start: 0, End: 99}},       // out of range
		{Text: "Rome", Label: "GPE", Span: &types.Span{Start: 0, End: 4}},         // wrong text
		{Text: "Paris", Label: "GPE", Span: &types.Span{Start: 0, End: 5}},        // ok
		{Text: "aris in", Label: "MISC", Span: &types.Span{Start: 1, End: 8}},     // overlaps
	}

	segs := Annotate(text, entities)

	require.Len(t, segs, 2)
	assert.Equal(t, "Paris", segs[0].Text)
	assert.NotNil(t, segs[0].Entity)
	assert.Equal(t, " in spring", segs[1].Text)
}

func TestAnnotate_Empty(t *testing.T) {
	assert.Empty(t, Annotate("", nil))
	segs := Annotate("plain", nil)
	require.Len(t, segs, 1)
	assert.Equal(t, "plain", segs[0].Text)
}
