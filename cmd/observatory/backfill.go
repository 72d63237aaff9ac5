package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ai-roundtable/observatory/pkg/backfill"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.Flags().String("file", "", "path to the legacy export (CSV or JSONL)")
	backfillCmd.Flags().Bool("jsonl", false, "treat --file as newline-delimited JSON instead of CSV")
	_ = backfillCmd.MarkFlagRequired("file")
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Replay a legacy export through snapshot, cluster, materialize, and score",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		path, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}
		isJSONL, err := cmd.Flags().GetBool("jsonl")
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := newApp(ctx, configDir)
		if err != nil {
			return err
		}
		defer a.close()

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("observatory: open backfill file: %w", err)
		}
		defer f.Close()

		runner := backfill.NewRunner(a.processor, a.judge, a.materializer, a.store)
		stats, err := runner.Run(ctx, f, isJSONL)
		if err != nil {
			return fmt.Errorf("observatory: backfill run: %w", err)
		}

		slog.Info("backfill: complete", "rows", stats.Rows, "snapshots", stats.Snapshot, "events", stats.Events, "failed", stats.Failed)
		return nil
	},
}
