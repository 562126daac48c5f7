// Package query implements the Query Engine (C8): tokenizes a query,
// resolves each term's posting list via the meta-index, accumulates scores
// by summation across terms, and returns the top-k URLs.
package query

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dkasten/htsearch/internal/index"
	"github.com/dkasten/htsearch/internal/metaindex"
	"github.com/dkasten/htsearch/internal/registry"
	"github.com/dkasten/htsearch/internal/tokenizer"
	apperrors "github.com/dkasten/htsearch/pkg/errors"
)

type finalRecord map[string]index.FinalPostingList

// Engine is the process-lifetime, read-only query engine. The meta-index
// and URL registry are loaded once at startup and never mutated; the final
// index file is opened once and read via positioned reads (os.File.ReadAt
// uses pread under the hood, so concurrent queries against the shared
// handle need no external locking).
type Engine struct {
	indexFile *os.File
	meta      *metaindex.Index
	urls      *registry.URLRegistry
	defaultK  int
}

// NewEngine loads the meta-index and URL registry from dir and opens the
// final index file for seeked reads.
func NewEngine(dir string, defaultK int) (*Engine, error) {
	meta, err := metaindex.Load(dir + "/meta_index.bin")
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMetaIndexLoad, 1, "%v", err)
	}
	urls, err := registry.LoadURLs(dir)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrURLRegistryLoad, 1, "%v", err)
	}
	f, err := os.Open(dir + "/index.jsonl")
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrFinalIndexOpen, 1, "%v", err)
	}
	if defaultK <= 0 {
		defaultK = 5
	}
	return &Engine{indexFile: f, meta: meta, urls: urls, defaultK: defaultK}, nil
}

// Close releases the open final-index file handle.
func (e *Engine) Close() error {
	return e.indexFile.Close()
}

// Search tokenizes query (treated as plaintext per C1), deduplicates terms,
// accumulates each term's tf_idf contribution per doc_id, and returns the
// top k URLs by descending score with ties broken by ascending doc_id. An
// empty query, or a query whose terms are all absent from the index,
// returns an empty slice with no error.
func (e *Engine) Search(query string, k int) ([]string, error) {
	if k <= 0 {
		k = e.defaultK
	}
	weighted := tokenizer.TokenizePlainText(query)
	if len(weighted) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(weighted))
	terms := make([]string, 0, len(weighted))
	for _, w := range weighted {
		if _, ok := seen[w.Term]; ok {
			continue
		}
		seen[w.Term] = struct{}{}
		terms = append(terms, w.Term)
	}

	scores := make(map[uint32]float64)
	for _, term := range terms {
		postings, err := e.postingsFor(term)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			scores[p.DocID] += p.Score
		}
	}
	if len(scores) == 0 {
		return nil, nil
	}

	top := TopK(scores, k)
	urls := make([]string, 0, len(top))
	for _, sd := range top {
		if url, ok := e.urls.URL(sd.DocID); ok {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// postingsFor resolves one term's posting list via the meta-index, seeking
// into the shared final-index file handle. A term absent from the
// meta-index contributes nothing (QueryTokenMissing is not an error).
func (e *Engine) postingsFor(term string) (index.FinalPostingList, error) {
	loc, ok := e.meta.Lookup(term)
	if !ok {
		return nil, nil
	}

	buf := make([]byte, loc.Length)
	_, err := e.indexFile.ReadAt(buf, int64(loc.Offset))
	if err != nil {
		return nil, fmt.Errorf("reading posting list for %q: %w", term, err)
	}

	var rec finalRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, fmt.Errorf("parsing posting list for %q: %w", term, err)
	}
	postings, ok := rec[term]
	if !ok {
		return nil, fmt.Errorf("meta-index entry for %q did not match seeked record", term)
	}
	sort.Slice(postings, func(i, j int) bool { return postings[i].DocID < postings[j].DocID })
	return postings, nil
}
