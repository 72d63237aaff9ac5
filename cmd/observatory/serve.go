package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ai-roundtable/observatory/pkg/api"
	"github.com/ai-roundtable/observatory/pkg/queue"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("http-port", getEnv("HTTP_PORT", "8080"), "port for the operator status server")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run every pipeline worker, the scheduler, and the operator status server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		httpPort, err := cmd.Flags().GetString("http-port")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, err := newApp(ctx, configDir)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.armSchedule(); err != nil {
			return fmt.Errorf("observatory: arm schedule: %w", err)
		}

		a.startWorkers(ctx)
		a.scheduler.Start(ctx)
		go a.sweeper.Run(ctx)
		go a.retention.Run(ctx)

		srv := &http.Server{Addr: ":" + httpPort, Handler: api.NewServer(a.db.Pool(), a.queues, a.workers).Router()}
		go func() {
			slog.Info("observatory: status server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("observatory: status server failed", "error", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		slog.Info("observatory: shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)

		a.scheduler.Stop()
		a.stopWorkers()
		cancel()
		return nil
	},
}

// armSchedule registers the two recurring cron jobs: periodic feed ingest
// and the daily briefing trigger.
func (a *app) armSchedule() error {
	emptyPayload, err := json.Marshal(struct{}{})
	if err != nil {
		return err
	}
	if err := a.scheduler.UpsertJobScheduler("ingest", a.cfg.Scheduler.IngestCron, queue.JobSpec{
		QueueName: queue.NameIngestTrigger,
		Payload:   emptyPayload,
	}); err != nil {
		return err
	}

	briefingPayload, err := json.Marshal(briefingJob{})
	if err != nil {
		return err
	}
	return a.scheduler.UpsertJobScheduler("briefing", a.cfg.Scheduler.BriefingCron, queue.JobSpec{
		QueueName: queue.NameBriefing,
		Payload:   briefingPayload,
	})
}
