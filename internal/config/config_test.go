package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML, formatYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected driver 'sqlite', got %q", cfg.Database.Driver)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Enrichment.Timeout.Duration != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Enrichment.Timeout.Duration)
	}
	if cfg.Enrichment.CacheTTL.Duration != time.Hour {
		t.Errorf("expected 1h ttl, got %v", cfg.Enrichment.CacheTTL.Duration)
	}
	if cfg.Graph.MaxDepth != 10 {
		t.Errorf("expected max depth 10, got %d", cfg.Graph.MaxDepth)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
server:
  port: 9000
enrichment:
  timeout: 2s
`)
	cfg, err := parse(data, formatYAML)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Enrichment.Timeout.Duration != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.Enrichment.Timeout.Duration)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Enrichment.CacheTTL.Duration != time.Hour {
		t.Errorf("expected default ttl, got %v", cfg.Enrichment.CacheTTL.Duration)
	}
	if cfg.Graph.Backend != "sql" {
		t.Errorf("expected default graph backend, got %q", cfg.Graph.Backend)
	}
}

func TestParseTOMLConfig(t *testing.T) {
	data := []byte(`
[server]
port = 7000
request_timeout = "3s"

[graph]
backend = "neo4j"
max_depth = 4
`)
	cfg, err := parse(data, formatTOML)
	if err != nil {
		t.Fatalf("failed to parse toml config: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout.Duration != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.Server.RequestTimeout.Duration)
	}
	if cfg.Graph.Backend != "neo4j" || cfg.Graph.MaxDepth != 4 {
		t.Errorf("unexpected graph config: %+v", cfg.Graph)
	}
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	_, err := parse([]byte("database:\n  driver: oracle\n"), formatYAML)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := parse([]byte("enrichment:\n  timeout: soon\n"), formatYAML)
	if err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Enrichment.Enabled {
		t.Error("expected enrichment enabled from file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONTEXTAPI_PORT", "9123")
	t.Setenv("CONTEXTAPI_DATABASE_DRIVER", "postgres")
	t.Setenv("CONTEXTAPI_DATABASE_URL", "postgres://localhost/news")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Server.Port != 9123 {
		t.Errorf("expected port 9123, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.URL != "postgres://localhost/news" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
}

func TestGetDatabasePath(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDatabasePath() == "" {
		t.Error("expected non-empty default database path")
	}

	cfg.Database.Path = "/custom/news.db"
	if cfg.GetDatabasePath() != "/custom/news.db" {
		t.Errorf("expected '/custom/news.db', got %q", cfg.GetDatabasePath())
	}
}
