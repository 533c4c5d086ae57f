package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.IndexTTL != 5*time.Minute {
		t.Errorf("Search.IndexTTL = %v, want 5m", cfg.Search.IndexTTL)
	}
	if cfg.Search.MinScore != 6 {
		t.Errorf("Search.MinScore = %f, want 6", cfg.Search.MinScore)
	}
	if cfg.Search.MaxResults != 10 {
		t.Errorf("Search.MaxResults = %d, want 10", cfg.Search.MaxResults)
	}
	if cfg.Kafka.Topics.CatalogEvents != "catalog-events" {
		t.Errorf("CatalogEvents topic = %q", cfg.Kafka.Topics.CatalogEvents)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9000
search:
  maxResults: 5
  indexTTL: 2m
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("Search.MaxResults = %d, want 5", cfg.Search.MaxResults)
	}
	if cfg.Search.IndexTTL != 2*time.Minute {
		t.Errorf("Search.IndexTTL = %v, want 2m", cfg.Search.IndexTTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want default 5432", cfg.Postgres.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MS_SERVER_PORT", "9999")
	t.Setenv("MS_POSTGRES_HOST", "db.internal")
	t.Setenv("MS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MS_SEARCH_INDEX_TTL", "90s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q", cfg.Postgres.Host)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Search.IndexTTL != 90*time.Second {
		t.Errorf("Search.IndexTTL = %v, want 90s", cfg.Search.IndexTTL)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432, Database: "storefront",
		User: "app", Password: "secret", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=app password=secret dbname=storefront sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
