package types

import "time"

// MemoryMetadata is the subset of an analysis persisted alongside its text.
type MemoryMetadata struct {
	Sentiment Sentiment `json:"sentiment"`
	Summary   string    `json:"summary"`
	Intent    string    `json:"intent"`
}

// MetadataFrom extracts the persisted metadata from an analysis record.
func MetadataFrom(r AnalysisRecord) MemoryMetadata {
	return MemoryMetadata{
		Sentiment: r.Sentiment,
		Summary:   r.Summary,
		Intent:    r.Intent,
	}
}

// MemoryEntry is one stored analysis. Entries are append-only: there is no
// update or delete path once written.
type MemoryEntry struct {
	ID         string         `json:"id"`
	SourceText string         `json:"source_text"`
	Metadata   MemoryMetadata `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`

	// Embedding is computed by the memory store from SourceText.
	Embedding []float32 `json:"-"`
}

// Hit is a single ranked search result.
type Hit struct {
	Rank       int         `json:"rank"`
	Similarity float64     `json:"similarity"`
	Entry      MemoryEntry `json:"entry"`
}

// RetrievalResult is the ranked output of a memory search. It is transient
// and owned by the caller.
type RetrievalResult struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	Hits  []Hit  `json:"hits"`
}

// Empty reports whether the search found nothing.
func (r RetrievalResult) Empty() bool { return len(r.Hits) == 0 }

// Documents returns the source texts of the hits in rank order.
func (r RetrievalResult) Documents() []string {
	docs := make([]string, 0, len(r.Hits))
	for _, h := range r.Hits {
		docs = append(docs, h.Entry.SourceText)
	}
	return docs
}
