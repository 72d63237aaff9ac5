package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ai-roundtable/observatory/pkg/cluster"
	"github.com/ai-roundtable/observatory/pkg/materialize"
	"github.com/ai-roundtable/observatory/pkg/queue"
)

// clusterJob carries one processed snapshot to the cluster-judge stage.
// Note the snapshot queue itself carries models.RawItem JSON directly,
// marshaled by pkg/ingest's Dispatcher — there is no wrapper job type for it.
type clusterJob struct {
	SnapshotID  string     `json:"snapshot_id"`
	SourceType  string     `json:"source_type"`
	SourceID    string     `json:"source_id"`
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"published_at"`
}

// materializeJob carries the judge's decision to the materialize stage.
type materializeJob struct {
	Decision cluster.Decision  `json:"decision"`
	Input    materialize.Input `json:"input"`
}

// eventJob is the payload shared by every stage past materialization that
// operates on an already-identified event: score, enrich, entity-extract,
// topic-assign, relationship-extract, watchlist-match.
type eventJob struct {
	EventID string `json:"event_id"`
}

// briefingJob names the day (YYYY-MM-DD, in the scheduler's timezone) the
// briefing queue should generate a roundtable for.
type briefingJob struct {
	Date string `json:"date"`
}

func addJSON(ctx context.Context, q *queue.Queue, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("observatory: marshal job payload: %w", err)
	}
	if _, err := q.Add(ctx, payload, queue.AddOptions{}); err != nil {
		return fmt.Errorf("observatory: enqueue onto %s: %w", q.Name(), err)
	}
	return nil
}

func addEventJob(ctx context.Context, q *queue.Queue, eventID string) error {
	return addJSON(ctx, q, eventJob{EventID: eventID})
}
