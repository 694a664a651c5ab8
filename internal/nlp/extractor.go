// Package nlp provides the rule-based named entity extractor used to enrich
// analysis prompts, plus span-based annotation for presentation layers.
//
// The extractor is deterministic and has no external model: numeric and
// temporal expressions are matched with regular expressions, and runs of
// capitalized words are classified against small gazetteers.
package nlp

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scrypster/insight/pkg/types"
)

const (
	months   = `January|February|March|April|May|June|July|August|September|October|November|December`
	amount   = `(?:\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`
	scale    = `(?:\s?(?i:million|billion|trillion|thousand)\b|[MBK]n?\b)?`
	scaleWds = `(?:\s(?:million|billion|trillion|thousand))?`
)

type pattern struct {
	re    *regexp.Regexp
	label string
	group int // submatch holding the entity; 0 is the whole match
}

// numericPatterns run before name detection, in priority order. A later
// match that overlaps an earlier one is discarded.
var numericPatterns = []pattern{
	{regexp.MustCompile(`[$€£¥]\s?` + amount + scale), types.LabelMoney, 0},
	{regexp.MustCompile(`\b(?:USD|EUR|GBP|JPY|CHF)\s?` + amount + scale), types.LabelMoney, 0},
	{regexp.MustCompile(`\b` + amount + scaleWds + `\s(?:dollars|euros|pounds|yen)\b`), types.LabelMoney, 0},
	{regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:%|percent\b|per cent\b)`), types.LabelPercent, 0},
	{regexp.MustCompile(`\b(?:` + months + `)(?:\s+\d{1,2}(?:st|nd|rd|th)?)?(?:,?\s+\d{4})?\b`), types.LabelDate, 0},
	{regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+(?:` + months + `)(?:,?\s+\d{4})?\b`), types.LabelDate, 0},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), types.LabelDate, 0},
	{regexp.MustCompile(`\bQ[1-4](?:\s+\d{4})?\b`), types.LabelDate, 0},
	{regexp.MustCompile(`\b(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\b`), types.LabelDate, 0},
	{regexp.MustCompile(`(?i)\b(?:yesterday|today|tomorrow|(?:last|next|this) (?:week|month|year|quarter))\b`), types.LabelDate, 0},
	{regexp.MustCompile(`\b(?:[Ii]n|[Ss]ince)\s+((?:19|20)\d{2})\b`), types.LabelDate, 1},
}

var (
	wordRe       = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’.\-][\p{L}\p{N}]+)*|&`)
	dottedAbbrRe = regexp.MustCompile(`^(?:\p{L}\.)+\p{L}$`)
	acronymRe    = regexp.MustCompile(`^[A-Z]{2,5}$`)
)

// Extractor finds named entities in text. The zero value is ready to use and
// safe for concurrent use.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

type candidate struct {
	start, end int
	label      string
}

// Extract returns the entities found in text ordered by start offset.
// Entities are de-duplicated by (text, label) keeping the first occurrence,
// and their spans never overlap. Empty input yields an empty slice.
func (x *Extractor) Extract(text string) []types.Entity {
	entities := []types.Entity{}
	if strings.TrimSpace(text) == "" {
		return entities
	}

	var claimed []types.Span
	var found []candidate
	claim := func(c candidate) {
		if c.start >= c.end {
			return
		}
		s := types.Span{Start: c.start, End: c.end}
		for _, other := range claimed {
			if other.Overlaps(s) {
				return
			}
		}
		claimed = append(claimed, s)
		found = append(found, c)
	}

	for _, p := range numericPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2*p.group], m[2*p.group+1]
			if start < 0 {
				continue
			}
			claim(candidate{start: start, end: end, label: p.label})
		}
	}

	for _, c := range findNames(text, claimed) {
		claim(c)
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })

	seen := make(map[string]bool, len(found))
	for _, c := range found {
		surface := text[c.start:c.end]
		key := c.label + "\x00" + surface
		if seen[key] {
			continue
		}
		seen[key] = true
		entities = append(entities, types.Entity{
			Text:  surface,
			Label: c.label,
			Span:  &types.Span{Start: c.start, End: c.end},
		})
	}
	return entities
}

type token struct {
	start, end int
	text       string
	lower      string // lowercase, dots removed
	capital    bool
	connector  bool
	blocked    bool // overlaps an already claimed span
}

func tokenize(text string, claimed []types.Span) []token {
	matches := wordRe.FindAllStringIndex(text, -1)
	toks := make([]token, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		w := text[start:end]

		for _, suffix := range []string{"'s", "’s"} {
			if strings.HasSuffix(w, suffix) && len(w) > len(suffix) {
				w = strings.TrimSuffix(w, suffix)
				end -= len(suffix)
				break
			}
		}
		if dottedAbbrRe.MatchString(w) && end < len(text) && text[end] == '.' {
			end++
			w = text[start:end]
		}

		first, _ := utf8.DecodeRuneInString(w)
		lower := strings.ToLower(strings.ReplaceAll(w, ".", ""))
		tok := token{
			start:   start,
			end:     end,
			text:    w,
			lower:   lower,
			capital: unicode.IsUpper(first),
		}
		tok.connector = !tok.capital && connectors[lower]

		span := types.Span{Start: start, End: end}
		for _, c := range claimed {
			if c.Overlaps(span) {
				tok.blocked = true
				break
			}
		}
		toks = append(toks, tok)
	}
	return toks
}

// inlineGap reports whether gap keeps two tokens inside one name.
// A title abbreviation may be followed by its period ("Dr. Smith").
func inlineGap(prev token, gap string) bool {
	if titles[prev.lower] && strings.HasPrefix(gap, ".") {
		gap = gap[1:]
	}
	for _, r := range gap {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

// findNames groups capitalized words into runs and classifies each run.
func findNames(text string, claimed []types.Span) []candidate {
	toks := tokenize(text, claimed)

	var runs [][]token
	var cur, pending []token
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, cur)
		}
		cur, pending = nil, nil
	}

	for i, tok := range toks {
		if i > 0 && !inlineGap(toks[i-1], text[toks[i-1].end:tok.start]) {
			flush()
		}
		switch {
		case tok.blocked:
			flush()
		case tok.capital:
			cur = append(cur, pending...)
			pending = nil
			cur = append(cur, tok)
		case tok.connector && len(cur) > 0 && len(pending) < 2:
			pending = append(pending, tok)
		default:
			flush()
		}
	}
	flush()

	var out []candidate
	for _, run := range runs {
		out = append(out, classifyRun(text, run)...)
	}
	return out
}

func classifyRun(text string, run []token) []candidate {
	titled := false
	for len(run) > 0 && (run[0].connector || stopwords[run[0].lower] || titles[run[0].lower]) {
		if titles[run[0].lower] {
			titled = true
		}
		run = run[1:]
	}
	if len(run) == 0 {
		return nil
	}

	initial := sentenceStart(text, run[0].start)
	label := classify(run, titled, initial)

	if label == types.LabelMisc && hasConnector(run, "and") {
		var out []candidate
		for _, part := range splitOn(run, "and") {
			out = append(out, classifyRun(text, part)...)
		}
		return out
	}
	if label == "" {
		return nil
	}
	return []candidate{{start: run[0].start, end: run[len(run)-1].end, label: label}}
}

func classify(run []token, titled, initial bool) string {
	words := make([]string, len(run))
	for i, t := range run {
		words[i] = t.lower
	}
	key := strings.Join(words, " ")
	first, last := run[0], run[len(run)-1]
	multi := len(run) > 1

	switch {
	case knownOrgs[key]:
		return types.LabelOrganization
	case places[key]:
		return types.LabelGeopolitical
	case multi && orgSuffixes[last.lower]:
		return types.LabelOrganization
	case len(run) > 2 && orgHeads[first.lower] && (run[1].lower == "of" || run[1].lower == "for"):
		return types.LabelOrganization
	case titled:
		return types.LabelPerson
	case firstNames[first.lower] && len(run) <= 3 && !anyConnector(run):
		return types.LabelPerson
	}

	if !multi {
		if stopwords[key] {
			return ""
		}
		if acronymRe.MatchString(first.text) {
			return types.LabelOrganization
		}
		if initial {
			return ""
		}
	}
	return types.LabelMisc
}

func anyConnector(run []token) bool {
	for _, t := range run {
		if t.connector {
			return true
		}
	}
	return false
}

func hasConnector(run []token, word string) bool {
	for _, t := range run {
		if t.connector && t.lower == word {
			return true
		}
	}
	return false
}

func splitOn(run []token, word string) [][]token {
	var parts [][]token
	var cur []token
	for _, t := range run {
		if t.connector && t.lower == word {
			if len(cur) > 0 {
				parts = append(parts, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		parts = append(parts, cur)
	}
	return parts
}

// sentenceStart reports whether offset begins a sentence: only opening
// quotes, brackets and horizontal space separate it from the start of the
// text, a line break, or terminal punctuation.
func sentenceStart(text string, offset int) bool {
	for i := offset; i > 0; {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		i -= size
		switch r {
		case ' ', '\t', '"', '\'', '“', '‘', '(', '[':
			continue
		case '.', '!', '?', '\n', '\r':
			return true
		}
		return false
	}
	return true
}
