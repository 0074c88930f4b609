package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tembra/archive-vec/populate"
)

var backfillContinue bool

var backfillCmd = &cobra.Command{
	Use:   "backfill [batch-size]",
	Short: "Generate embeddings for analyzed images that lack them",
	Long: `Generate embeddings for image descriptions that do not have one yet
and store them in the relational table and, when present, the vector index.

The optional batch-size bounds one run (0 or omitted means all pending).
Interrupted runs resume where they left off: only descriptions without a
stored embedding are selected.

Examples:
  # Embed everything pending
  archive-vec backfill

  # Embed 50, then stop
  archive-vec backfill 50

  # Embed in batches of 50 until drained
  archive-vec backfill 50 --continue`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().BoolVar(&backfillContinue, "continue", false, "repeat batches until no candidates remain")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	batch := 0
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid batch size %q", args[0])
		}
		batch = n
	}

	cfg, err := loadConfig()
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

	if err := client.EnsureEmbedModel(ctx, cfg.Embedding.Model); err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	populator := populate.New(db, client, log)
	opts := populate.Options{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  batch,
		Delay:      cfg.EmbedDelay(),
	}

	for {
		summary, err := populator.Run(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Processed %d of %d candidates (%d errors), %d embeddings stored\n",
			summary.Processed, summary.Candidates, summary.Errors, summary.Total)
		if !summary.IndexAvailable {
			fmt.Println("Vector index table not found; embeddings stored relationally only.")
		}
		// --continue loops bounded runs until a pass makes no progress.
		if !backfillContinue || batch == 0 || summary.Processed == 0 {
			return nil
		}
	}
}
