// Command indexer runs a single batch indexing pass over CORPUS_PATH,
// producing the final index, meta-index, and URL registry in INDEX_STORAGE.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkasten/htsearch/internal/pipeline"
	"github.com/dkasten/htsearch/pkg/config"
	apperrors "github.com/dkasten/htsearch/pkg/errors"
	"github.com/dkasten/htsearch/pkg/logger"
	"github.com/dkasten/htsearch/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional; defaults are used otherwise)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexing run",
		"corpus_path", cfg.CorpusPath,
		"index_storage", cfg.IndexStorage.Dir,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := pipeline.Run(ctx, pipeline.Config{
		CorpusPath:          cfg.CorpusPath,
		IndexStorageDir:     cfg.IndexStorage.Dir,
		SpillThresholdBytes: cfg.IndexStorage.SpillThresholdBytes,
		Workers:             cfg.IndexStorage.Workers,
	}, m)
	elapsed := time.Since(start)
	if m != nil {
		m.IndexBuildDuration.Observe(elapsed.Seconds())
	}
	if err != nil {
		slog.Error("indexing run failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}

	slog.Info("indexing run complete",
		"docs_indexed", result.DocsIndexed,
		"docs_skipped", result.DocsSkipped,
		"partial_files", result.PartialFiles,
		"elapsed", elapsed,
	)
}
