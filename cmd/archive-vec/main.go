// Package main implements the archive-vec CLI: maintenance tools for the
// archive's SQLite vector store (noise cleanup, embedding backfill, image
// analysis and the service probe).
package main

import (
	"database/sql"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tembra/archive-vec/config"
	"github.com/tembra/archive-vec/engine"
	"github.com/tembra/archive-vec/ollama"
)

var (
	configPath  string
	dbPath      string
	archiveRoot string
	verbose     bool

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "archive-vec",
	Short: "Maintenance tools for the archive's SQLite vector store",
	Long: `archive-vec maintains the embeddings database of a media archive:
classifying and pruning noise rows from the vector index, backfilling
embeddings for analyzed images, running a vision model over unanalyzed
images, and probing the local model service.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&archiveRoot, "archive", "", "archive root directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the layered configuration and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if archiveRoot != "" {
		cfg.ArchiveRoot = archiveRoot
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return c.Build()
}

func openStore(cfg config.Config) (*sql.DB, error) {
	return engine.Open(cfg.Database())
}

func newOllama(cfg config.Config, log *zap.Logger) *ollama.Client {
	return ollama.NewClient(ollama.Config{
		BaseURL:         cfg.Ollama.BaseURL,
		EmbedTimeout:    time.Duration(cfg.Ollama.EmbedTimeoutSec) * time.Second,
		GenerateTimeout: time.Duration(cfg.Ollama.GenerateTimeoutSec) * time.Second,
		TagsTimeout:     time.Duration(cfg.Ollama.TagsTimeoutSec) * time.Second,
	}, log)
}
