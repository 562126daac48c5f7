// Package registry implements the Document Registry (C7): deterministic
// corpus traversal, monotonic doc_id assignment, and persistence of the
// doc_id -> URL mapping to urls.txt.
package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Document is one parsed corpus item ready for tokenization, tagged with
// its assigned doc_id.
type Document struct {
	DocID   uint32
	URL     string
	Content string
}

// corpusRecord is the on-disk shape of one corpus file: { "url", "content" }.
type corpusRecord struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SkipHandler is invoked once per corpus file that could not be parsed,
// so the caller can log CorpusItemMalformed without aborting the run.
type SkipHandler func(path string, err error)

// Walk traverses corpusPath in deterministic sorted order (subdirectory
// then file name), parsing each `{url, content}` JSON file and assigning
// consecutive doc_ids starting at 0 in traversal order. Malformed files are
// reported via onSkip and do not consume a doc_id. It returns the parsed
// documents in doc_id order.
func Walk(corpusPath string, onSkip SkipHandler) ([]Document, error) {
	subdirs, err := os.ReadDir(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}
	subdirNames := make([]string, 0, len(subdirs))
	for _, e := range subdirs {
		if e.IsDir() {
			subdirNames = append(subdirNames, e.Name())
		}
	}
	sort.Strings(subdirNames)

	var docs []Document
	var nextID uint32

	for _, subdir := range subdirNames {
		subdirPath := filepath.Join(corpusPath, subdir)
		files, err := os.ReadDir(subdirPath)
		if err != nil {
			return nil, fmt.Errorf("reading corpus subdirectory %s: %w", subdir, err)
		}
		fileNames := make([]string, 0, len(files))
		for _, f := range files {
			if !f.IsDir() {
				fileNames = append(fileNames, f.Name())
			}
		}
		sort.Strings(fileNames)

		for _, name := range fileNames {
			path := filepath.Join(subdirPath, name)
			data, err := os.ReadFile(path)
			if err != nil {
				if onSkip != nil {
					onSkip(path, err)
				}
				continue
			}
			var rec corpusRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				if onSkip != nil {
					onSkip(path, err)
				}
				continue
			}
			if rec.URL == "" {
				if onSkip != nil {
					onSkip(path, fmt.Errorf("missing url field"))
				}
				continue
			}

			docs = append(docs, Document{
				DocID:   nextID,
				URL:     rec.URL,
				Content: rec.Content,
			})
			nextID++
		}
	}

	return docs, nil
}

// WriteURLs persists the doc_id -> URL mapping as urls.txt: line k (1-indexed)
// is the URL of doc_id = k-1. urls must already be ordered by doc_id.
func WriteURLs(dir string, urls []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index storage directory: %w", err)
	}
	path := filepath.Join(dir, "urls.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating urls.txt: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, url := range urls {
		if _, err := w.WriteString(url); err != nil {
			return fmt.Errorf("writing urls.txt: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing urls.txt: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing urls.txt: %w", err)
	}
	return f.Sync()
}

// URLRegistry is the loaded, query-time doc_id -> URL table.
type URLRegistry struct {
	urls []string
}

// LoadURLs reads urls.txt into memory. Index i corresponds to doc_id i.
func LoadURLs(dir string) (*URLRegistry, error) {
	path := filepath.Join(dir, "urls.txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening urls.txt: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		urls = append(urls, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading urls.txt: %w", err)
	}
	return &URLRegistry{urls: urls}, nil
}

// URL returns the URL for docID, or "" with ok=false if out of range.
func (r *URLRegistry) URL(docID uint32) (string, bool) {
	if int(docID) >= len(r.urls) {
		return "", false
	}
	return r.urls[docID], true
}

// Len returns the number of registered documents.
func (r *URLRegistry) Len() int {
	return len(r.urls)
}
