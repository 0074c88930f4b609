// Package config carries process-wide configuration for the maintenance
// tools. Values are resolved defaults → YAML file → environment, and the
// resulting Config is passed into components explicitly; nothing below the
// CLI reads ambient environment state, which keeps the packages testable
// against fixture stores and stub services.
package config

import (
	"fmt"
	"time"
)

// Config is the full tool configuration.
type Config struct {
	// ArchiveRoot is the archive directory holding media and the
	// embeddings database.
	ArchiveRoot string `koanf:"archive_root"`

	// DBPath is the SQLite database path. Empty means
	// <archive_root>/.embeddings.db.
	DBPath string `koanf:"db_path"`

	Ollama    Ollama    `koanf:"ollama"`
	Embedding Embedding `koanf:"embedding"`
	Vision    Vision    `koanf:"vision"`
	Prune     Prune     `koanf:"prune"`
}

// Ollama locates the embedding/vision service.
type Ollama struct {
	BaseURL string `koanf:"base_url"`

	// Per-call timeouts, in seconds.
	EmbedTimeoutSec    int `koanf:"embed_timeout_sec"`
	GenerateTimeoutSec int `koanf:"generate_timeout_sec"`
	TagsTimeoutSec     int `koanf:"tags_timeout_sec"`
}

// Embedding configures the backfill populator.
type Embedding struct {
	Model      string `koanf:"model"`
	Dimensions int    `koanf:"dimensions"`
	DelayMS    int    `koanf:"delay_ms"`
}

// Vision configures the image-analysis run.
type Vision struct {
	// Model must be on the vetted list; empty selects the default.
	Model       string  `koanf:"model"`
	DelayMS     int     `koanf:"delay_ms"`
	Temperature float64 `koanf:"temperature"`
}

// Prune configures the shadow-table pruner.
type Prune struct {
	// BatchSize is the max identifiers per IN clause.
	BatchSize int `koanf:"batch_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Ollama: Ollama{
			BaseURL:            "http://localhost:11434",
			EmbedTimeoutSec:    30,
			GenerateTimeoutSec: 180,
			TagsTimeoutSec:     5,
		},
		Embedding: Embedding{
			Model:      "nomic-embed-text",
			Dimensions: 768,
			DelayMS:    50,
		},
		Vision: Vision{
			DelayMS:     500,
			Temperature: 0.3,
		},
		Prune: Prune{
			BatchSize: 500,
		},
	}
}

// Validate checks the fields every tool depends on.
func (c Config) Validate() error {
	if c.ArchiveRoot == "" && c.DBPath == "" {
		return fmt.Errorf("config: archive_root or db_path must be set")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("config: embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Prune.BatchSize <= 0 {
		return fmt.Errorf("config: prune.batch_size must be positive, got %d", c.Prune.BatchSize)
	}
	return nil
}

// Database returns the effective database path.
func (c Config) Database() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return c.ArchiveRoot + "/.embeddings.db"
}

// EmbedDelay returns the populator's inter-item delay.
func (c Config) EmbedDelay() time.Duration {
	return time.Duration(c.Embedding.DelayMS) * time.Millisecond
}

// VisionDelay returns the analyzer's inter-image delay.
func (c Config) VisionDelay() time.Duration {
	return time.Duration(c.Vision.DelayMS) * time.Millisecond
}
