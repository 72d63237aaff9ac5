// Package retention runs the periodic housekeeping the pipeline's
// RetentionConfig describes: force-resolving stale QUARANTINED events,
// clearing raw snapshot text past its retention window, and purging
// dead-lettered queue jobs past their TTL.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

type eventStore interface {
	QuarantinedEventsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
	SetEventStatus(ctx context.Context, eventID string, from *models.EventStatus, to models.EventStatus, confidence *models.Confidence, reason string) error
	ClearStaleSnapshotText(ctx context.Context, cutoff time.Time) (int, error)
}

// DeadLetterQueue is the subset of *pkg/queue.Queue the loop purges.
type DeadLetterQueue interface {
	PurgeDead(ctx context.Context, cutoff time.Time) (int, error)
}

// Runner executes one pass of every retention rule on each tick.
type Runner struct {
	store  eventStore
	queues []DeadLetterQueue
	cfg    *config.RetentionConfig
}

func NewRunner(store eventStore, queues []DeadLetterQueue, cfg *config.RetentionConfig) *Runner {
	return &Runner{store: store, queues: queues, cfg: cfg}
}

// Run blocks, sweeping on each CleanupInterval tick until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	interval := r.cfg.CleanupInterval
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	r.resolveStaleQuarantine(ctx)
	r.clearStaleSnapshotText(ctx)
	r.purgeDeadLetters(ctx)
}

func (r *Runner) resolveStaleQuarantine(ctx context.Context) {
	cutoff := time.Now().Add(-r.cfg.QuarantineTTL)
	ids, err := r.store.QuarantinedEventsOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("retention: list stale quarantined events", "error", err)
		return
	}
	from := models.StatusQuarantined
	for _, id := range ids {
		if err := r.store.SetEventStatus(ctx, id, &from, models.StatusBlocked, nil, "quarantine ttl exceeded"); err != nil {
			slog.Error("retention: force-resolve quarantined event", "event_id", id, "error", err)
		}
	}
	if len(ids) > 0 {
		slog.Info("retention: force-resolved stale quarantined events", "count", len(ids))
	}
}

func (r *Runner) clearStaleSnapshotText(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -r.cfg.SnapshotRawHTMLDays)
	n, err := r.store.ClearStaleSnapshotText(ctx, cutoff)
	if err != nil {
		slog.Error("retention: clear stale snapshot text", "error", err)
		return
	}
	if n > 0 {
		slog.Info("retention: cleared stale snapshot text", "count", n)
	}
}

func (r *Runner) purgeDeadLetters(ctx context.Context) {
	cutoff := time.Now().Add(-r.cfg.DeadLetterTTL)
	for _, q := range r.queues {
		n, err := q.PurgeDead(ctx, cutoff)
		if err != nil {
			slog.Error("retention: purge dead letters", "error", err)
			continue
		}
		if n > 0 {
			slog.Info("retention: purged dead-lettered jobs", "count", n)
		}
	}
}
