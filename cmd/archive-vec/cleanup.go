package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tembra/archive-vec/noise"
	"github.com/tembra/archive-vec/prune"
	"github.com/tembra/archive-vec/shadow"
)

var cleanupExecute bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Classify noise messages and prune them from the vector index",
	Long: `Classify messages against the noise rules and remove the matching
entries from the message index's shadow tables.

The default is a dry run: every rule is evaluated and the would-be
deletions are reported, but nothing is removed. Pass --execute to delete.

Examples:
  # Report what would be pruned
  archive-vec cleanup

  # Actually prune
  archive-vec cleanup --execute`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupExecute, "execute", false, "perform deletions (default is dry run)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()

	report, err := noise.NewClassifier(db, nil, log).Classify(ctx)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	for _, rc := range report.PerRule {
		fmt.Printf("  %-28s %6d\n", rc.Rule, rc.Matches)
	}
	fmt.Printf("Noise messages (unique): %d\n", report.Unique())

	if report.Unique() == 0 {
		fmt.Println("Nothing to prune.")
		return nil
	}

	pruner := prune.New(db, shadow.Messages(), log)
	result, err := pruner.Run(ctx, report.IDs, prune.Options{
		Execute:   cleanupExecute,
		BatchSize: cfg.Prune.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}

	if !result.Executed {
		fmt.Printf("Dry run: %d of %d indexed entries would be removed (re-run with --execute)\n",
			result.Resolved, result.TotalBefore)
		return nil
	}

	for _, tc := range result.Deleted {
		log.Info("pruned shadow table",
			zap.String("table", tc.Table),
			zap.Int64("rows", tc.Deleted))
	}
	fmt.Printf("Pruned %d entries: index %d -> %d\n",
		result.Removed(), result.TotalBefore, result.TotalAfter)
	return nil
}
