package enrich

import (
	"context"
	"log/slog"
	"time"
)

type sweepStore interface {
	EventsAwaitingRelationshipExtract(ctx context.Context) ([]string, error)
}

// EnqueueFunc re-enqueues relationship-extract for one event.
type EnqueueFunc func(ctx context.Context, eventID string) error

// Sweeper is the crash-recovery path for Coordinator: a process restart
// loses in-flight fan-in state, so this periodically re-scans for events
// with both parent artifacts present and no relationship-extract artifact,
// and re-enqueues them.
type Sweeper struct {
	store    sweepStore
	enqueue  EnqueueFunc
	interval time.Duration
}

func NewSweeper(store sweepStore, enqueue EnqueueFunc, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{store: store, enqueue: enqueue, interval: interval}
}

// Run blocks, sweeping on each tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	ids, err := s.store.EventsAwaitingRelationshipExtract(ctx)
	if err != nil {
		slog.Error("enrich: sweeper failed to list events", "error", err)
		return
	}
	for _, id := range ids {
		if err := s.enqueue(ctx, id); err != nil {
			slog.Error("enrich: sweeper failed to re-enqueue relationship-extract", "event_id", id, "error", err)
		}
	}
	if len(ids) > 0 {
		slog.Info("enrich: sweeper re-enqueued stalled events", "count", len(ids))
	}
}
