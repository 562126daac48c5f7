// Package partial serializes accumulator snapshots to disk as line-delimited
// JSON files (C3) and reads them back one line at a time for the external
// merger, so no partial file is ever fully materialized in memory.
package partial

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkasten/htsearch/internal/index"
)

// record is the on-disk shape of one partial-index line: a single-key
// object mapping the token to its posting list, matching the original
// program's line-delimited JSON layout.
type record map[string]index.BuildPostingList

// FileName returns the partial-index file name for sequence number k.
func FileName(k int) string {
	return fmt.Sprintf("partial_%d.jsonl", k)
}

// Write serializes records (already sorted ascending by token) to
// dir/partial_{k}.jsonl, one token per line. It writes to a temporary file
// and renames on success so a crash mid-write never leaves a half-written
// partial visible to the merger.
func Write(dir string, k int, records []index.TokenRecord) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating index storage directory: %w", err)
	}
	finalPath := filepath.Join(dir, FileName(k))
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating partial index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		line := record{rec.Token: rec.Postings}
		if err := enc.Encode(line); err != nil {
			return "", fmt.Errorf("encoding token %q: %w", rec.Token, err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flushing partial index file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing partial index file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing partial index file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("renaming partial index file: %w", err)
	}
	return finalPath, nil
}

// Reader streams a partial-index file one token record at a time.
type Reader struct {
	f       *os.File
	scanner *bufio.Scanner
}

// OpenReader opens a partial-index file for sequential streaming reads.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening partial index file: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{f: f, scanner: scanner}, nil
}

// Next reads the next token record from the file. It returns ok=false once
// the file is exhausted, with err nil on clean EOF.
func (r *Reader) Next() (token string, postings index.BuildPostingList, ok bool, err error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", nil, false, fmt.Errorf("reading partial index file: %w", err)
		}
		return "", nil, false, nil
	}
	var rec record
	if err := json.Unmarshal(r.scanner.Bytes(), &rec); err != nil {
		return "", nil, false, fmt.Errorf("parsing partial index line: %w", err)
	}
	if len(rec) != 1 {
		return "", nil, false, fmt.Errorf("malformed partial index line: expected exactly one token, got %d", len(rec))
	}
	for tok, postingList := range rec {
		return tok, postingList, true, nil
	}
	panic("unreachable")
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
