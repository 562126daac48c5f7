package partial

import (
	"testing"

	"github.com/dkasten/htsearch/internal/index"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	records := []index.TokenRecord{
		{Token: "cat", Postings: index.BuildPostingList{{DocID: 0, TF: 3, Importance: 12}}},
		{Token: "dog", Postings: index.BuildPostingList{{DocID: 0, TF: 1, Importance: 1}, {DocID: 1, TF: 3, Importance: 3}}},
	}

	path, err := Write(dir, 1, records)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader returned error: %v", err)
	}
	defer r.Close()

	for _, want := range records {
		token, postings, ok, err := r.Next()
		if err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
		if !ok {
			t.Fatalf("expected record for %q, got end of file", want.Token)
		}
		if token != want.Token {
			t.Errorf("token = %q, want %q", token, want.Token)
		}
		if len(postings) != len(want.Postings) {
			t.Fatalf("postings for %q = %v, want %v", token, postings, want.Postings)
		}
		for i := range postings {
			if postings[i] != want.Postings[i] {
				t.Errorf("posting %d for %q = %+v, want %+v", i, token, postings[i], want.Postings[i])
			}
		}
	}

	_, _, ok, err := r.Next()
	if err != nil {
		t.Fatalf("final Next returned error: %v", err)
	}
	if ok {
		t.Fatal("expected end of file after reading all records")
	}
}

func TestWriteEmptyRecords(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, 1, nil)
	if err != nil {
		t.Fatalf("Write returned error for empty records: %v", err)
	}
	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader returned error: %v", err)
	}
	defer r.Close()
	_, _, ok, err := r.Next()
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if ok {
		t.Fatal("expected no records in an empty partial index")
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(5); got != "partial_5.jsonl" {
		t.Errorf("FileName(5) = %q, want %q", got, "partial_5.jsonl")
	}
}
