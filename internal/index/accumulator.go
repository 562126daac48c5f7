package index

import (
	"sort"
	"sync"

	"github.com/dkasten/htsearch/internal/tokenizer"
)

// Accumulator is the in-memory partial inverted index (C2): a mapping
// token -> posting list, built up by successive calls to Ingest and
// periodically drained by Flush, which sorts the tokens. Callers are responsible for honoring the
// doc_id-ordering invariant: Ingest must be called with non-decreasing
// doc_ids within a single Accumulator lifetime, so each token's posting
// list is already sorted by doc_id by construction.
type Accumulator struct {
	mu         sync.Mutex
	postings   map[string][]BuildPosting
	sizeBytes  int64
	spillLimit int64
}

// NewAccumulator creates an empty Accumulator that should flush once its
// estimated footprint exceeds spillLimitBytes.
func NewAccumulator(spillLimitBytes int64) *Accumulator {
	return &Accumulator{
		postings:   make(map[string][]BuildPosting),
		spillLimit: spillLimitBytes,
	}
}

// Ingest folds one document's weighted token stream into the accumulator,
// summing importance and counting term frequency per (token, docID) across
// repeated occurrences within the same document.
func (a *Accumulator) Ingest(docID uint32, tokens []tokenizer.Weighted) {
	type agg struct {
		tf         uint32
		importance uint32
	}
	perToken := make(map[string]*agg, len(tokens))
	for _, tok := range tokens {
		e, ok := perToken[tok.Term]
		if !ok {
			e = &agg{}
			perToken[tok.Term] = e
		}
		e.tf++
		e.importance += uint32(tok.Weight)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for term, e := range perToken {
		a.postings[term] = append(a.postings[term], BuildPosting{
			DocID:      docID,
			TF:         e.tf,
			Importance: e.importance,
		})
		a.sizeBytes += int64(len(term)) + 24
	}
}

// ShouldFlush reports whether the estimated in-memory footprint has crossed
// the configured spill threshold.
func (a *Accumulator) ShouldFlush() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sizeBytes > a.spillLimit
}

// SizeBytes returns the current estimated footprint, for metrics.
func (a *Accumulator) SizeBytes() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sizeBytes
}

// Empty reports whether the accumulator currently holds no postings.
func (a *Accumulator) Empty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.postings) == 0
}

// TokenRecord is one line of a flushed partial index: a token and its
// complete posting list, ready to be written in sorted order.
type TokenRecord struct {
	Token    string
	Postings BuildPostingList
}

// Flush drains the accumulator, returning its contents as token records
// sorted ascending by token, and resets the accumulator to empty.
func (a *Accumulator) Flush() []TokenRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]TokenRecord, 0, len(a.postings))
	for term, postings := range a.postings {
		records = append(records, TokenRecord{Token: term, Postings: postings})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Token < records[j].Token
	})

	a.postings = make(map[string][]BuildPosting)
	a.sizeBytes = 0
	return records
}
