package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tembra/archive-vec/config"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check the model service and required models",
	Long: `Check that the local model service is reachable, that the configured
embedding model is installed, and which vetted vision model would be used.

Exits non-zero when the service is unreachable or the embedding model is
missing.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	// The probe touches only the model service, so no database path is
	// required.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	client := newOllama(cfg, log)

	models, err := client.InstalledModels(ctx)
	if err != nil {
		return fmt.Errorf("service at %s: %w", cfg.Ollama.BaseURL, err)
	}
	fmt.Printf("Service %s: %d models installed\n", cfg.Ollama.BaseURL, len(models))

	if err := client.EnsureEmbedModel(ctx, cfg.Embedding.Model); err != nil {
		return err
	}
	fmt.Printf("Embedding model %s: installed\n", cfg.Embedding.Model)

	vision, err := client.ResolveVisionModel(ctx, cfg.Vision.Model)
	if err != nil {
		return err
	}
	fmt.Printf("Vision model: %s\n", vision)
	return nil
}
