package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GNOTE_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8091" || cfg.Sink != SinkSQLite || cfg.WorkerCount != 4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error without an API key")
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gnote.yaml")
	body := "port: \"9000\"\napi_key: from-file\nsink: pathstore\nworker_count: 2\njob_ttl: 30m\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GNOTE_CONFIG", path)
	t.Setenv("WORKER_COUNT", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port from file, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected env to override file, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %v", cfg.JobTTL)
	}
	if cfg.DocsRoot != "./docs" {
		t.Errorf("expected unset fields to keep defaults, got %q", cfg.DocsRoot)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("port: [unclosed"), 0o600)
	t.Setenv("GNOTE_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_UnknownSink(t *testing.T) {
	cfg := defaults()
	cfg.APIKey = "k"
	cfg.Sink = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown sink")
	}
}
