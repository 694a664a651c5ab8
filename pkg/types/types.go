// Package types defines the core data structures shared by the Insight
// analysis pipeline: analysis records, extracted entities, memory entries and
// retrieval results, plus the sentinel errors that make up the error taxonomy.
package types

// Sentiment is the overall polarity of an analyzed text.
type Sentiment string

// Sentiment constants. These are the only values an AnalysisRecord may carry.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ValidSentiments lists the accepted sentiment values.
var ValidSentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// IsValid reports whether s is one of the enumerated sentiment values.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Entity label constants produced by the rule-based extractor. The label set
// is open: language models may return labels outside this list.
const (
	LabelPerson       = "PERSON"
	LabelOrganization = "ORG"
	LabelGeopolitical = "GPE"
	LabelDate         = "DATE"
	LabelMoney        = "MONEY"
	LabelPercent      = "PERCENT"
	LabelMisc         = "MISC"
)
