package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ai-roundtable/observatory/pkg/queue"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(triggerBriefingCmd)
}

var triggerBriefingCmd = &cobra.Command{
	Use:   "trigger-briefing [YYYY-MM-DD]",
	Short: "Enqueue a daily roundtable briefing job for one day, defaulting to today in the scheduler's timezone",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := bootstrap(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := newApp(ctx, configDir)
		if err != nil {
			return err
		}
		defer a.close()

		loc, err := time.LoadLocation(a.cfg.Scheduler.Timezone)
		if err != nil {
			loc = time.UTC
		}
		date := time.Now().In(loc).Format("2006-01-02")
		if len(args) == 1 {
			if _, err := a.resolveBriefingDay(args[0]); err != nil {
				return err
			}
			date = args[0]
		}

		if err := addJSON(ctx, a.queues[queue.NameBriefing], briefingJob{Date: date}); err != nil {
			return err
		}
		slog.Info("trigger-briefing: enqueued briefing job", "date", date)
		return nil
	},
}
