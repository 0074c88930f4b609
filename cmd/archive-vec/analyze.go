package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tembra/archive-vec/vision"
)

var (
	analyzeModel    string
	analyzeContinue bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [n]",
	Short: "Run a vision model over unanalyzed archive images",
	Long: `Walk the archive for images without an analysis row, describe each with
a local vision model and store the structured result.

The optional n bounds one run (0 or omitted means all unanalyzed images).
Only vetted vision models are used: an unknown --model falls back to the
default, and a vetted but uninstalled model falls back to the first vetted
model that is installed.

Examples:
  # Analyze everything unanalyzed
  archive-vec analyze

  # Analyze 20 images with a specific model
  archive-vec analyze 20 --model llava:13b

  # Keep going in batches of 20 until done
  archive-vec analyze 20 --continue`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "vision model (must be vetted; empty selects the default)")
	analyzeCmd.Flags().BoolVar(&analyzeContinue, "continue", false, "repeat batches until no images remain")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	max := 0
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid image count %q", args[0])
		}
		max = n
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ArchiveRoot == "" {
		return fmt.Errorf("analyze requires an archive root (--archive or archive_root in config)")
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	client := newOllama(cfg, log)

	requested := analyzeModel
	if requested == "" {
		requested = cfg.Vision.Model
	}
	model, err := client.ResolveVisionModel(ctx, requested)
	if err != nil {
		return err
	}
	fmt.Printf("Using vision model %s\n", model)

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	analyzer := vision.New(db, client, log)
	opts := vision.Options{
		Root:        cfg.ArchiveRoot,
		Model:       model,
		MaxImages:   max,
		Delay:       cfg.VisionDelay(),
		Temperature: cfg.Vision.Temperature,
	}

	for {
		summary, err := analyzer.Run(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Analyzed %d of %d images (%d errors), %d analyses stored\n",
			summary.Processed, summary.Unanalyzed, summary.Errors, summary.Total)
		if !analyzeContinue || max == 0 || summary.Processed == 0 {
			return nil
		}
	}
}
