package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr=%q", cfg.HTTPAddr)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("StorageBackend=%q", cfg.StorageBackend)
	}
	if ttl, err := cfg.ParseTokenTTL(); err != nil || ttl != time.Hour {
		t.Fatalf("TokenTTL=%v err=%v", ttl, err)
	}
	if d, err := cfg.ParseSessionInitTimeout(); err != nil || d != 5*time.Second {
		t.Fatalf("SessionInitTimeout=%v err=%v", d, err)
	}
}

func TestLoad_RequiresTokenSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing TOKEN_SECRET")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/club-test.db")
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.StorageBackend != "sqlite" || cfg.SQLitePath != "/tmp/club-test.db" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if ttl, _ := cfg.ParseTokenTTL(); ttl != 30*time.Minute {
		t.Fatalf("ttl=%v", ttl)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("STORAGE_BACKEND", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing DATABASE_URL")
	}
}
