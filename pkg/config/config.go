// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem the indexer and query engine depend on (corpus/index
// paths, indexing thresholds, the optional result cache, logging, metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. CorpusPath and
// IndexStorage are the only two contractual keys; everything else is an
// ambient knob with a sensible default.
type Config struct {
	CorpusPath   string        `yaml:"corpusPath"`
	IndexStorage IndexerConfig `yaml:"indexStorage"`
	Search       SearchConfig  `yaml:"search"`
	Redis        RedisConfig   `yaml:"redis"`
	Logging      LoggingConfig `yaml:"logging"`
	Metrics      MetricsConfig `yaml:"metrics"`
}

// IndexerConfig controls where index artifacts live and when the in-memory
// posting accumulator spills to disk.
type IndexerConfig struct {
	// Dir is INDEX_STORAGE: the directory holding index.jsonl,
	// meta_index.bin, urls.txt, and transient partial_*.jsonl files.
	Dir string `yaml:"dir"`
	// SpillThresholdBytes is the estimated in-memory accumulator footprint
	// (spec default 256 MiB) that triggers a synchronous flush to a
	// partial-index file.
	SpillThresholdBytes int64 `yaml:"spillThresholdBytes"`
	// Workers is the number of tokenizer worker goroutines fanning into the
	// single accumulator (0 or 1 disables the worker pool).
	Workers int `yaml:"workers"`
}

// SearchConfig controls query execution defaults.
type SearchConfig struct {
	DefaultTopK int `yaml:"defaultTopK"`
}

// RedisConfig controls the optional query-result cache. Addr == "" disables
// caching entirely; query.NewEngine never requires it.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls whether Prometheus collectors are registered and
// scraped.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Port is the local port cmd/search serves /metrics on when Enabled.
	Port int `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment
// variable overrides. It returns a Config populated with sensible defaults
// for any value the file or environment leaves unset.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		CorpusPath: "./corpus",
		IndexStorage: IndexerConfig{
			Dir:                 "./index-storage",
			SpillThresholdBytes: 256 * 1024 * 1024,
			Workers:             4,
		},
		Search: SearchConfig{
			DefaultTopK: 5,
		},
		Redis: RedisConfig{
			Addr:     "",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads HTSEARCH_* environment variables and overrides
// the corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTSEARCH_CORPUS_PATH"); v != "" {
		cfg.CorpusPath = v
	}
	if v := os.Getenv("HTSEARCH_INDEX_STORAGE"); v != "" {
		cfg.IndexStorage.Dir = v
	}
	if v := os.Getenv("HTSEARCH_SPILL_THRESHOLD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.IndexStorage.SpillThresholdBytes = n
		}
	}
	if v := os.Getenv("HTSEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IndexStorage.Workers = n
		}
	}
	if v := os.Getenv("HTSEARCH_DEFAULT_TOPK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultTopK = n
		}
	}
	if v := os.Getenv("HTSEARCH_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HTSEARCH_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HTSEARCH_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HTSEARCH_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("HTSEARCH_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = n
		}
	}
}
