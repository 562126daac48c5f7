// Package pipeline orchestrates the full indexing run: corpus traversal
// (C7), tokenization (C1) fanned out across an optional worker pool,
// accumulation and spill (C2+C3), the external merge (C4), and the
// TF-IDF rewrite plus meta-index build (C5+C6).
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/dkasten/htsearch/pkg/errors"

	"github.com/dkasten/htsearch/internal/index"
	"github.com/dkasten/htsearch/internal/merge"
	"github.com/dkasten/htsearch/internal/metaindex"
	"github.com/dkasten/htsearch/internal/partial"
	"github.com/dkasten/htsearch/internal/registry"
	"github.com/dkasten/htsearch/internal/rewrite"
	"github.com/dkasten/htsearch/internal/tokenizer"
	"github.com/dkasten/htsearch/pkg/metrics"
)

// Config holds the corpus and storage paths plus the indexing knobs; callers
// fill it from config.Config's CorpusPath and IndexStorage fields.
type Config struct {
	CorpusPath          string
	IndexStorageDir     string
	SpillThresholdBytes int64
	Workers             int
}

// Result summarizes a completed indexing run.
type Result struct {
	DocsIndexed  int
	DocsSkipped  int
	PartialFiles int
}

// Run executes the full indexing pipeline described in spec §2's data flow:
// corpus directory -> registry assigns IDs -> tokenize -> accumulate ->
// spill -> merge -> TF-IDF rewrite + meta-index.
func Run(ctx context.Context, cfg Config, m *metrics.Metrics) (Result, error) {
	logger := slog.Default().With("component", "pipeline")

	var skipped int
	docs, err := registry.Walk(cfg.CorpusPath, func(path string, err error) {
		skipped++
		logger.Warn("skipping malformed corpus item", "path", path, "error", err)
		if m != nil {
			m.DocsSkippedTotal.Inc()
		}
	})
	if err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrCorpusItemMalformed, 1, "reading corpus: %v", err)
	}

	urls := make([]string, len(docs))
	for _, d := range docs {
		urls[d.DocID] = d.URL
	}

	acc := index.NewAccumulator(cfg.SpillThresholdBytes)
	var partialPaths []string
	nextPartial := 1

	flush := func() error {
		if acc.Empty() {
			return nil
		}
		records := acc.Flush()
		path, err := partial.Write(cfg.IndexStorageDir, nextPartial, records)
		if err != nil {
			return apperrors.Newf(apperrors.ErrSpillIO, 1, "writing partial index: %v", err)
		}
		partialPaths = append(partialPaths, path)
		nextPartial++
		if m != nil {
			m.PartialFlushesTotal.Inc()
		}
		return nil
	}

	tokenized, err := tokenizeDocuments(ctx, docs, cfg.Workers, func(docID uint32, tokErr error) {
		skipped++
		logger.Warn("skipping document with undecodable HTML", "doc_id", docID, "error", tokErr)
		if m != nil {
			m.DocsSkippedTotal.Inc()
		}
	})
	if err != nil {
		return Result{}, err
	}

	var indexed int
	for _, td := range tokenized {
		if td.skipped {
			continue
		}
		indexed++
		acc.Ingest(td.docID, td.tokens)
		if m != nil {
			m.DocsIndexedTotal.Inc()
			m.AccumulatorSizeBytes.Set(float64(acc.SizeBytes()))
		}
		if acc.ShouldFlush() {
			if err := flush(); err != nil {
				return Result{}, err
			}
		}
	}
	if err := flush(); err != nil {
		return Result{}, err
	}

	if err := registry.WriteURLs(cfg.IndexStorageDir, urls); err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrSpillIO, 1, "writing url registry: %v", err)
	}

	if len(partialPaths) == 0 {
		return Result{DocsIndexed: indexed, DocsSkipped: skipped, PartialFiles: 0}, nil
	}

	unifiedPath := filepath.Join(cfg.IndexStorageDir, "unified.jsonl")
	if err := merge.Merge(partialPaths, unifiedPath); err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrMergeInputMalformed, 1, "merging partial indexes: %v", err)
	}
	if m != nil {
		m.MergePassesTotal.Inc()
	}
	for _, p := range partialPaths {
		if err := os.Remove(p); err != nil {
			logger.Warn("failed to remove partial index after merge", "path", p, "error", err)
		}
	}

	finalPath := filepath.Join(cfg.IndexStorageDir, "index.jsonl")
	entries, err := rewrite.Rewrite(unifiedPath, finalPath, len(docs))
	if err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrFinalIndexWrite, 1, "rewriting final index: %v", err)
	}
	if err := os.Remove(unifiedPath); err != nil {
		logger.Warn("failed to remove unified index", "path", unifiedPath, "error", err)
	}

	metaPath := filepath.Join(cfg.IndexStorageDir, "meta_index.bin")
	if err := metaindex.Write(metaPath, entries); err != nil {
		return Result{}, apperrors.Newf(apperrors.ErrFinalIndexWrite, 1, "writing meta-index: %v", err)
	}

	return Result{
		DocsIndexed:  indexed,
		DocsSkipped:  skipped,
		PartialFiles: len(partialPaths),
	}, nil
}

type tokenizedDoc struct {
	docID   uint32
	tokens  []tokenizer.Weighted
	skipped bool
}

// tokenizeDocuments fans tokenization out across an errgroup-bounded worker
// pool (spec §5's optional parallelism), preserving doc_id ordering in the
// returned slice regardless of completion order. A document whose HTML
// can't be decoded is reported via onSkip and marked skipped rather than
// aborting the run: its doc_id was already committed by registry.Walk, so
// indexing simply proceeds without its postings, the same as a corpus item
// skipped before a doc_id was assigned.
func tokenizeDocuments(ctx context.Context, docs []registry.Document, workers int, onSkip func(docID uint32, err error)) ([]tokenizedDoc, error) {
	if workers <= 1 {
		out := make([]tokenizedDoc, len(docs))
		for i, d := range docs {
			tokens, err := tokenizeOne(d)
			if err != nil {
				if !errors.Is(err, apperrors.ErrCorpusItemMalformed) {
					return nil, err
				}
				onSkip(d.DocID, err)
				out[i] = tokenizedDoc{docID: d.DocID, skipped: true}
				continue
			}
			out[i] = tokenizedDoc{docID: d.DocID, tokens: tokens}
		}
		return out, nil
	}

	out := make([]tokenizedDoc, len(docs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, d := range docs {
		i, d := i, d
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			tokens, err := tokenizeOne(d)
			if err != nil {
				if !errors.Is(err, apperrors.ErrCorpusItemMalformed) {
					return err
				}
				mu.Lock()
				onSkip(d.DocID, err)
				mu.Unlock()
				out[i] = tokenizedDoc{docID: d.DocID, skipped: true}
				return nil
			}
			out[i] = tokenizedDoc{docID: d.DocID, tokens: tokens}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func tokenizeOne(d registry.Document) ([]tokenizer.Weighted, error) {
	tokens, err := tokenizer.TokenizeHTML(strings.NewReader(d.Content))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrCorpusItemMalformed, 1, "tokenizing doc_id=%d: %v", d.DocID, err)
	}
	return tokens, nil
}
