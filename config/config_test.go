package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 768, cfg.Embedding.Dimensions)
	assert.Equal(t, 500, cfg.Prune.BatchSize)
	assert.Equal(t, 50*time.Millisecond, cfg.EmbedDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.VisionDelay())
	assert.Empty(t, cfg.Vision.Model)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
archive_root: /srv/archive
embedding:
  model: mxbai-embed-large
  dimensions: 1024
prune:
  batch_size: 100
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/archive", cfg.ArchiveRoot)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedding.Model)
	assert.Equal(t, 1024, cfg.Embedding.Dimensions)
	assert.Equal(t, 100, cfg.Prune.BatchSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archive_root: /srv/archive\n"), 0o644))

	t.Setenv("ARCHIVE_VEC_OLLAMA_URL", "http://ollama.internal:11434")
	t.Setenv("ARCHIVE_VEC_VISION_MODEL", "llava:13b")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://ollama.internal:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llava:13b", cfg.Vision.Model)
	assert.Equal(t, "/srv/archive", cfg.ArchiveRoot)
}

func TestLoadUnknownEnvIgnored(t *testing.T) {
	t.Setenv("ARCHIVE_VEC_BOGUS", "value")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Ollama.BaseURL, cfg.Ollama.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate(), "no paths set")

	cfg.ArchiveRoot = "/srv/archive"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/srv/archive/.embeddings.db", cfg.Database())

	cfg.DBPath = "/tmp/other.db"
	assert.Equal(t, "/tmp/other.db", cfg.Database())

	cfg.Embedding.Dimensions = 0
	assert.Error(t, cfg.Validate())
}
