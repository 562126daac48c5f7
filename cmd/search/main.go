// Command search loads a previously built index and runs an interactive
// query REPL, printing the top-k URLs for each query until an empty line
// is entered.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dkasten/htsearch/internal/query"
	"github.com/dkasten/htsearch/pkg/config"
	apperrors "github.com/dkasten/htsearch/pkg/errors"
	"github.com/dkasten/htsearch/pkg/logger"
	"github.com/dkasten/htsearch/pkg/metrics"
	pkgredis "github.com/dkasten/htsearch/pkg/redis"
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

	engine, err := query.NewEngine(cfg.IndexStorage.Dir, cfg.Search.DefaultTopK)
	if err != nil {
		slog.Error("failed to load index", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
	defer engine.Close()

	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				slog.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	cached := query.NewCachedEngine(engine, redisClient, cfg.Redis, m)

	slog.Info("search engine ready", "index_storage", cfg.IndexStorage.Dir)
	runREPL(cached, cfg.Search.DefaultTopK, m)
}

func runREPL(engine *query.CachedEngine, defaultK int, m *metrics.Metrics) {
	reader := bufio.NewScanner(os.Stdin)
	var queryNum int

	for {
		fmt.Print("Input Query: ")
		if !reader.Scan() {
			return
		}
		input := reader.Text()
		if input == "" {
			return
		}

		queryNum++
		queryID := fmt.Sprintf("q-%d", queryNum)
		ctx := logger.WithQueryID(context.Background(), queryID)
		log := logger.FromContext(ctx)
		log.Info("query received", "text", input)

		hitsBefore, missesBefore := engine.Stats()
		start := time.Now()
		urls, err := engine.Search(ctx, input, defaultK)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
			log.Error("query failed", "error", err, "elapsed", elapsed)
			if m != nil {
				m.QueriesTotal.WithLabelValues("error").Inc()
			}
			continue
		}
		log.Info("query completed", "result_count", len(urls), "elapsed", elapsed)

		if m != nil {
			hitsAfter, missesAfter := engine.Stats()
			cacheStatus := "uncached"
			switch {
			case hitsAfter > hitsBefore:
				cacheStatus = "hit"
			case missesAfter > missesBefore:
				cacheStatus = "miss"
			}
			m.QueriesTotal.WithLabelValues("ok").Inc()
			m.QueryLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
			m.QueryResultSize.Observe(float64(len(urls)))
		}

		fmt.Printf("(%.4f seconds)\n", elapsed.Seconds())
		if len(urls) == 0 {
			fmt.Println()
			continue
		}
		for i, url := range urls {
			fmt.Printf("%d: %s\n", i+1, url)
		}
		fmt.Println()
	}
}
