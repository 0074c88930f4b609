package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ARCHIVE_VEC_"

// envKeys maps environment variables onto config keys. Anything outside
// this map is ignored so unrelated ARCHIVE_VEC_* variables cannot clobber
// nested config.
var envKeys = map[string]string{
	"ARCHIVE_VEC_ARCHIVE_ROOT": "archive_root",
	"ARCHIVE_VEC_DB_PATH":      "db_path",
	"ARCHIVE_VEC_OLLAMA_URL":   "ollama.base_url",
	"ARCHIVE_VEC_EMBED_MODEL":  "embedding.model",
	"ARCHIVE_VEC_VISION_MODEL": "vision.model",
}

// Load resolves configuration from defaults, an optional YAML file and the
// environment, in that order. An empty path skips the file layer; a named
// file that does not exist is an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := loadStruct(k, defaults); err != nil {
		return Config{}, err
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// loadStruct seeds the koanf tree from a Config by round-tripping it
// through YAML, keeping the defaults in one place.
func loadStruct(k *koanf.Koanf, c Config) error {
	raw, err := yaml.Parser().Marshal(map[string]interface{}{
		"archive_root": c.ArchiveRoot,
		"db_path":      c.DBPath,
		"ollama": map[string]interface{}{
			"base_url":             c.Ollama.BaseURL,
			"embed_timeout_sec":    c.Ollama.EmbedTimeoutSec,
			"generate_timeout_sec": c.Ollama.GenerateTimeoutSec,
			"tags_timeout_sec":     c.Ollama.TagsTimeoutSec,
		},
		"embedding": map[string]interface{}{
			"model":      c.Embedding.Model,
			"dimensions": c.Embedding.Dimensions,
			"delay_ms":   c.Embedding.DelayMS,
		},
		"vision": map[string]interface{}{
			"model":       c.Vision.Model,
			"delay_ms":    c.Vision.DelayMS,
			"temperature": c.Vision.Temperature,
		},
		"prune": map[string]interface{}{
			"batch_size": c.Prune.BatchSize,
		},
	})
	if err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	return nil
}
