package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Sink kinds.
const (
	SinkSQLite    = "sqlite"
	SinkPathstore = "pathstore"
	SinkMemory    = "memory"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Document source
	DocsRoot string `yaml:"docs_root"`

	// Sync sink
	Sink            string `yaml:"sink"`
	SQLitePath      string `yaml:"sqlite_path"`
	PathstoreURL    string `yaml:"pathstore_url"`
	PathstoreAPIKey string `yaml:"pathstore_api_key"`

	// Bulk refresh
	WorkerCount  int           `yaml:"worker_count"`
	MaxQueueSize int           `yaml:"max_queue_size"`
	JobTTL       time.Duration `yaml:"job_ttl"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	StatsWindow time.Duration `yaml:"stats_window"`
	LogLevel    string        `yaml:"log_level"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

func defaults() Config {
	return Config{
		Port:                 "8091",
		DocsRoot:             "./docs",
		Sink:                 SinkSQLite,
		SQLitePath:           "./data/gnote.sqlite",
		PathstoreURL:         "http://localhost:8080",
		WorkerCount:          4,
		MaxQueueSize:         100,
		JobTTL:               time.Hour,
		MaxUploadBytes:       52428800, // 50MB
		StatsWindow:          time.Hour,
		LogLevel:             "info",
		PDFFallbackPdftotext: true,
	}
}

// Load builds the config from defaults, then the YAML file named by
// GNOTE_CONFIG (if set), then environment variables.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("GNOTE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("GNOTE_API_KEY", cfg.APIKey)
	cfg.DocsRoot = envOr("GNOTE_DOCS_ROOT", cfg.DocsRoot)
	cfg.Sink = envOr("GNOTE_SINK", cfg.Sink)
	cfg.SQLitePath = envOr("GNOTE_SQLITE_PATH", cfg.SQLitePath)
	cfg.PathstoreURL = envOr("PATHSTORE_URL", cfg.PathstoreURL)
	cfg.PathstoreAPIKey = envOr("PATHSTORE_API_KEY", cfg.PathstoreAPIKey)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	d := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = d.StatsWindow
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("GNOTE_API_KEY is required")
	}
	if c.DocsRoot == "" {
		return fmt.Errorf("GNOTE_DOCS_ROOT is required")
	}
	switch c.Sink {
	case SinkSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("GNOTE_SQLITE_PATH is required for the sqlite sink")
		}
	case SinkPathstore:
		if c.PathstoreURL == "" {
			return fmt.Errorf("PATHSTORE_URL is required for the pathstore sink")
		}
	case SinkMemory:
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
