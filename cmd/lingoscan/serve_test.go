package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBuildServeConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "service:\n  concurrency: 3\n  max_pages: 50\n  ignore_patterns: [\"/admin/*\"]\n")
	dbDir := filepath.Join(t.TempDir(), "db")

	cmd := NewServeCmd()
	args := []string{"-c", path, "--listen", "127.0.0.1:9999", "--max-pages", "10", "--delay", "1s", "--robots", "--db-dir", dbDir}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildServeConfig(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.ValidateService(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:9999" || cfg.CrawlMaxPages != 10 || cfg.CrawlDelay != time.Second {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("concurrency = %d, want value from file", cfg.Concurrency)
	}
	if !cfg.RespectRobots || !cfg.SaveToDB || cfg.DBDir != dbDir {
		t.Errorf("robots=%v db=%v dir=%q", cfg.RespectRobots, cfg.SaveToDB, cfg.DBDir)
	}

	opts := serviceOptions(cfg, nil)
	if opts.MaxPages != 10 || opts.Concurrency != 3 || len(opts.IgnorePatterns) != 1 || opts.Delay != time.Second {
		t.Errorf("unexpected service options %+v", opts)
	}
}
