package query

import (
	"context"
	"testing"

	"github.com/dkasten/htsearch/internal/index"
	"github.com/dkasten/htsearch/pkg/config"
)

func TestCachedEngineFallsThroughWithoutClient(t *testing.T) {
	dir := t.TempDir()
	buildFixture(t, dir, map[string]index.FinalPostingList{
		"cat": {{DocID: 0, Score: 1.0}},
	}, []string{"https://doc/0"})

	engine, err := NewEngine(dir, 5)
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	defer engine.Close()

	cached := NewCachedEngine(engine, nil, config.RedisConfig{}, nil)
	urls, err := cached.Search(context.Background(), "cat", 5)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://doc/0" {
		t.Fatalf("Search = %v, want [https://doc/0]", urls)
	}

	hits, misses := cached.Stats()
	if hits != 0 || misses != 0 {
		t.Errorf("expected no cache activity without a client, got hits=%d misses=%d", hits, misses)
	}
}

func TestCachedEngineCloseDelegatesToEngine(t *testing.T) {
	dir := t.TempDir()
	buildFixture(t, dir, map[string]index.FinalPostingList{
		"cat": {{DocID: 0, Score: 1.0}},
	}, []string{"https://doc/0"})

	engine, err := NewEngine(dir, 5)
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	cached := NewCachedEngine(engine, nil, config.RedisConfig{}, nil)
	if err := cached.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

// TestBuildKeyIsStableAndDistinguishesK checks that cache keys are
// deterministic for the same (query, k) pair and differ across k.
func TestBuildKeyIsStableAndDistinguishesK(t *testing.T) {
	c := &CachedEngine{}
	k1a := c.buildKey("cat", 5)
	k1b := c.buildKey("cat", 5)
	if k1a != k1b {
		t.Errorf("buildKey not deterministic: %q vs %q", k1a, k1b)
	}
	k2 := c.buildKey("cat", 10)
	if k1a == k2 {
		t.Errorf("buildKey did not distinguish different k values: %q", k1a)
	}
	k3 := c.buildKey("dog", 5)
	if k1a == k3 {
		t.Errorf("buildKey did not distinguish different queries: %q", k1a)
	}
}
