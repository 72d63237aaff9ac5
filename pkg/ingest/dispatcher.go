// Package ingest runs every feed adapter in sequence and enqueues one
// snapshot job per item it normalizes.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ai-roundtable/observatory/pkg/feeds"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/ai-roundtable/observatory/pkg/queue"
)

// DispatchResult reports one adapter's outcome for operator visibility and
// logging; Err is non-nil only if enqueueing (not fetching — adapters never
// surface fetch errors) failed for one or more items.
type DispatchResult struct {
	SourceType string
	Items      int
	Err        error
}

// Dispatcher invokes every registered adapter and feeds their output into
// the snapshot queue.
type Dispatcher struct {
	adapters     map[string]feeds.Adapter
	snapshotJobs *queue.Queue
}

func NewDispatcher(adapters map[string]feeds.Adapter, snapshotJobs *queue.Queue) *Dispatcher {
	return &Dispatcher{adapters: adapters, snapshotJobs: snapshotJobs}
}

// Run invokes every adapter sequentially — no cross-run state, no
// concurrency between sources — and enqueues one snapshot job per item.
// It returns one DispatchResult per source, in a stable source-name order,
// regardless of individual adapter or enqueue failures.
func (d *Dispatcher) Run(ctx context.Context) []DispatchResult {
	names := make([]string, 0, len(d.adapters))
	for name := range d.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]DispatchResult, 0, len(names))
	for _, name := range names {
		adapter := d.adapters[name]
		items, err := adapter.Fetch(ctx)
		if err != nil {
			// Adapters are documented to never return an error; treat one
			// that does exactly like an empty fetch.
			slog.Warn("ingest: adapter returned an error despite contract", "source", name, "error", err)
			items = nil
		}

		result := DispatchResult{SourceType: name, Items: len(items)}
		for _, item := range items {
			if enqueueErr := d.enqueue(ctx, item); enqueueErr != nil {
				result.Err = enqueueErr
				slog.Error("ingest: failed to enqueue snapshot job", "source", name, "external_id", item.ExternalID, "error", enqueueErr)
			}
		}
		slog.Info("ingest: dispatched source", "source", name, "items", result.Items)
		results = append(results, result)
	}
	return results
}

func (d *Dispatcher) enqueue(ctx context.Context, item models.RawItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("ingest: marshal raw item: %w", err)
	}
	if _, err := d.snapshotJobs.Add(ctx, payload, queue.AddOptions{}); err != nil {
		return fmt.Errorf("ingest: enqueue snapshot job: %w", err)
	}
	return nil
}
