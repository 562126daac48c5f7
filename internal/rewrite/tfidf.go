// Package rewrite streams the unified (construction-phase) index and
// produces the final TF-IDF-scored index, recording each token's byte
// offset and length into the meta-index as it writes (C5 + C6).
package rewrite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/dkasten/htsearch/internal/index"
	"github.com/dkasten/htsearch/internal/metaindex"
)

type unifiedRecord map[string]index.BuildPostingList
type finalRecord map[string]index.FinalPostingList

// Rewrite streams unifiedPath one token at a time, computes each posting's
// weighted TF-IDF score, writes the final index to finalPath, and returns
// the meta-index entries recorded while writing (one per token, in the
// order tokens were written — ascending lexicographic, since the unified
// index is already token-sorted).
func Rewrite(unifiedPath, finalPath string, totalDocs int) ([]metaindex.Entry, error) {
	in, err := os.Open(unifiedPath)
	if err != nil {
		return nil, fmt.Errorf("opening unified index: %w", err)
	}
	defer in.Close()

	out, err := os.Create(finalPath)
	if err != nil {
		return nil, fmt.Errorf("creating final index: %w", err)
	}
	defer out.Close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	w := bufio.NewWriter(out)
	var entries []metaindex.Entry
	var offset int64

	for scanner.Scan() {
		var rec unifiedRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("parsing unified index line: %w", err)
		}
		if len(rec) != 1 {
			return nil, fmt.Errorf("malformed unified index line: expected exactly one token, got %d", len(rec))
		}

		var token string
		var postings index.BuildPostingList
		for t, p := range rec {
			token, postings = t, p
		}

		df := len(postings)
		idf := 0.0
		if df != totalDocs {
			idf = math.Log10(float64(totalDocs) / float64(df))
		}

		final := make(index.FinalPostingList, len(postings))
		for i, p := range postings {
			tfIdf := float64(p.Importance) * (1 + math.Log10(float64(p.TF))) * idf
			final[i] = index.FinalPosting{DocID: p.DocID, Score: tfIdf}
		}

		line := finalRecord{token: final}
		data, err := json.Marshal(line)
		if err != nil {
			return nil, fmt.Errorf("marshaling token %q: %w", token, err)
		}
		data = append(data, '\n')

		n, err := w.Write(data)
		if err != nil {
			return nil, fmt.Errorf("writing final index: %w", err)
		}

		entries = append(entries, metaindex.Entry{
			Token:  token,
			Offset: uint64(offset),
			Length: uint32(n),
		})
		offset += int64(n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading unified index: %w", err)
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flushing final index: %w", err)
	}
	if err := out.Sync(); err != nil {
		return nil, fmt.Errorf("syncing final index: %w", err)
	}
	return entries, nil
}
