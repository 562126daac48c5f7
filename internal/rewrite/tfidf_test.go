package rewrite

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dkasten/htsearch/internal/index"
	"github.com/dkasten/htsearch/internal/metaindex"
)

func writeUnified(t *testing.T, path string, records []unifiedRecord) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating unified index: %v", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			t.Fatalf("encoding unified record: %v", err)
		}
	}
}

func TestRewriteComputesTFIDF(t *testing.T) {
	dir := t.TempDir()
	unifiedPath := filepath.Join(dir, "unified.jsonl")
	finalPath := filepath.Join(dir, "index.jsonl")

	// token "cat" has tf=3, importance=12 in a 2-document corpus where
	// df(cat)=1.
	writeUnified(t, unifiedPath, []unifiedRecord{
		{"cat": index.BuildPostingList{{DocID: 0, TF: 3, Importance: 12}}},
		{"dog": index.BuildPostingList{
			{DocID: 0, TF: 1, Importance: 1},
			{DocID: 1, TF: 3, Importance: 3},
		}},
	})

	entries, err := Rewrite(unifiedPath, finalPath, 2)
	if err != nil {
		t.Fatalf("Rewrite returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 meta-index entries, got %d", len(entries))
	}

	data, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatalf("reading final index: %v", err)
	}
	lines := splitLines(data)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines in final index, got %d", len(lines))
	}

	var catRec finalRecord
	if err := json.Unmarshal(lines[0], &catRec); err != nil {
		t.Fatalf("parsing cat record: %v", err)
	}
	catPostings := catRec["cat"]
	wantCat := 12.0 * (1 + math.Log10(3)) * math.Log10(2.0/1.0)
	if math.Abs(catPostings[0].Score-wantCat) > 1e-9 {
		t.Errorf("cat tf_idf = %v, want %v", catPostings[0].Score, wantCat)
	}

	var dogRec finalRecord
	if err := json.Unmarshal(lines[1], &dogRec); err != nil {
		t.Fatalf("parsing dog record: %v", err)
	}
	dogPostings := dogRec["dog"]
	for _, p := range dogPostings {
		if p.Score != 0 {
			t.Errorf("dog posting %+v should have idf=0 (df==N), got score %v", p, p.Score)
		}
	}
}

func TestRewriteEmitsOffsetsThatSeekCorrectly(t *testing.T) {
	dir := t.TempDir()
	unifiedPath := filepath.Join(dir, "unified.jsonl")
	finalPath := filepath.Join(dir, "index.jsonl")

	writeUnified(t, unifiedPath, []unifiedRecord{
		{"apple": index.BuildPostingList{{DocID: 0, TF: 1, Importance: 1}}},
		{"banana": index.BuildPostingList{{DocID: 0, TF: 2, Importance: 2}, {DocID: 1, TF: 1, Importance: 1}}},
		{"cherry": index.BuildPostingList{{DocID: 0, TF: 1, Importance: 1}}},
	})

	entries, err := Rewrite(unifiedPath, finalPath, 2)
	if err != nil {
		t.Fatalf("Rewrite returned error: %v", err)
	}

	metaPath := filepath.Join(dir, "meta_index.bin")
	if err := metaindex.Write(metaPath, entries); err != nil {
		t.Fatalf("metaindex.Write returned error: %v", err)
	}
	meta, err := metaindex.Load(metaPath)
	if err != nil {
		t.Fatalf("metaindex.Load returned error: %v", err)
	}

	f, err := os.Open(finalPath)
	if err != nil {
		t.Fatalf("opening final index: %v", err)
	}
	defer f.Close()

	for _, e := range entries {
		loc, ok := meta.Lookup(e.Token)
		if !ok {
			t.Fatalf("meta-index missing entry for %q", e.Token)
		}
		buf := make([]byte, loc.Length)
		if _, err := f.ReadAt(buf, int64(loc.Offset)); err != nil {
			t.Fatalf("seeking to %q: %v", e.Token, err)
		}
		var rec finalRecord
		if err := json.Unmarshal(buf, &rec); err != nil {
			t.Fatalf("parsing seeked record for %q: %v", e.Token, err)
		}
		if _, ok := rec[e.Token]; !ok {
			t.Errorf("seeked record for %q did not contain that token: %v", e.Token, rec)
		}
	}
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	return lines
}
