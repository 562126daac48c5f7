// Package merge implements the external k-way merge (C4) that combines the
// partial-index files produced during corpus ingestion into one unified,
// token-sorted index file, streaming the whole way so memory use stays
// O(k) in the number of partial files rather than O(index size).
package merge

import (
	"bufio"
	"container/heap"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dkasten/htsearch/internal/index"
	"github.com/dkasten/htsearch/internal/partial"
)

// unifiedRecord is the on-disk shape of one line of the unified (pre-TF-IDF)
// index file: a single-key object mapping the token to its posting list,
// already concatenated across every partial file that contained it.
type unifiedRecord map[string]index.BuildPostingList

// entry is one partial file's current front-of-stream token, tracked by the
// merge heap.
type entry struct {
	token    string
	postings index.BuildPostingList
	reader   *partial.Reader
	fileIdx  int
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].token != h[j].token {
		return h[i].token < h[j].token
	}
	// Partials were produced over disjoint, ascending doc_id ranges;
	// concatenating in ascending partial-file-id order keeps each merged
	// posting list sorted by doc_id.
	return h[i].fileIdx < h[j].fileIdx
}
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(*entry))
}
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merge performs the k-way streaming merge of partialPaths (assumed to be
// individually token-sorted, as produced by package partial) into
// outputPath, writing one line per token in ascending lexicographic order.
// Each line's posting list is the concatenation of that token's postings
// across every partial, in partial-file order.
//
// Merge fails fatally if any partial file is malformed: indexing cannot
// recover from a corrupt partial.
func Merge(partialPaths []string, outputPath string) (err error) {
	readers := make([]*partial.Reader, 0, len(partialPaths))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	h := &entryHeap{}
	heap.Init(h)
	for idx, path := range partialPaths {
		r, openErr := partial.OpenReader(path)
		if openErr != nil {
			return fmt.Errorf("opening partial index %s: %w", path, openErr)
		}
		readers = append(readers, r)
		token, postings, ok, readErr := r.Next()
		if readErr != nil {
			return fmt.Errorf("reading partial index %s: %w", path, readErr)
		}
		if ok {
			heap.Push(h, &entry{token: token, postings: postings, reader: r, fileIdx: idx})
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating unified index file: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)

	for h.Len() > 0 {
		token := (*h)[0].token
		var merged index.BuildPostingList

		for h.Len() > 0 && (*h)[0].token == token {
			top := heap.Pop(h).(*entry)
			merged = append(merged, top.postings...)

			nextToken, nextPostings, ok, readErr := top.reader.Next()
			if readErr != nil {
				return fmt.Errorf("reading partial index: %w", readErr)
			}
			if ok {
				heap.Push(h, &entry{token: nextToken, postings: nextPostings, reader: top.reader, fileIdx: top.fileIdx})
			}
		}

		line := unifiedRecord{token: merged}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encoding token %q: %w", token, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing unified index file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("syncing unified index file: %w", err)
	}
	return nil
}
