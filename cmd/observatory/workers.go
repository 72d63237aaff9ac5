package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ai-roundtable/observatory/pkg/cluster"
	"github.com/ai-roundtable/observatory/pkg/enrich"
	"github.com/ai-roundtable/observatory/pkg/materialize"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/ai-roundtable/observatory/pkg/queue"
	"github.com/ai-roundtable/observatory/pkg/scoring"
	"github.com/ai-roundtable/observatory/pkg/snapshot"
)

// buildWorkers wires one queue.Worker per pipeline queue, its handler
// closing over the stage object(s) it drives and, where the stage's
// success should advance the pipeline, the next queue to enqueue onto.
// Chaining lives inside each handler body rather than in an OnCompleted
// hook: OnCompleted only ever sees success/failure, not the stage's output.
func (a *app) buildWorkers() {
	a.workers[queue.NameIngestTrigger] = queue.NewWorker(a.queues[queue.NameIngestTrigger], a.cfg.Queue, a.handleIngestTrigger)
	a.workers[queue.NameSnapshot] = queue.NewWorker(a.queues[queue.NameSnapshot], a.cfg.Queue, a.handleSnapshot)
	a.workers[queue.NameCluster] = queue.NewWorker(a.queues[queue.NameCluster], a.cfg.Queue, a.handleCluster)
	a.workers[queue.NameMaterialize] = queue.NewWorker(a.queues[queue.NameMaterialize], a.cfg.Queue, a.handleMaterialize)
	a.workers[queue.NameScore] = queue.NewWorker(a.queues[queue.NameScore], a.cfg.Queue, a.handleScore)
	a.workers[queue.NameEnrich] = queue.NewWorker(a.queues[queue.NameEnrich], a.cfg.Queue, a.handleEnrich)
	a.workers[queue.NameEntityExtract] = queue.NewWorker(a.queues[queue.NameEntityExtract], a.cfg.Queue, a.handleEntityExtract)
	a.workers[queue.NameTopicAssign] = queue.NewWorker(a.queues[queue.NameTopicAssign], a.cfg.Queue, a.handleTopicAssign)
	a.workers[queue.NameRelationshipExtract] = queue.NewWorker(a.queues[queue.NameRelationshipExtract], a.cfg.Queue, a.handleRelationshipExtract)
	a.workers[queue.NameWatchlistMatch] = queue.NewWorker(a.queues[queue.NameWatchlistMatch], a.cfg.Queue, a.handleWatchlistMatch)
	a.workers[queue.NameBriefing] = queue.NewWorker(a.queues[queue.NameBriefing], a.cfg.Queue, a.handleBriefing)
}

// startWorkers starts every registered worker's pool.
func (a *app) startWorkers(ctx context.Context) {
	for name, w := range a.workers {
		slog.Info("observatory: starting worker", "queue", name)
		w.Start(ctx)
	}
}

// stopWorkers gracefully stops every registered worker's pool.
func (a *app) stopWorkers() {
	for name, w := range a.workers {
		slog.Info("observatory: stopping worker", "queue", name)
		w.Stop()
	}
}

// handleIngestTrigger runs every feed adapter once, logging per-source
// dispatch results. This is the scheduler's recurring ingest job.
func (a *app) handleIngestTrigger(ctx context.Context, job *queue.Job) error {
	results := a.dispatcher.Run(ctx)
	for _, r := range results {
		if r.Err != nil {
			slog.Error("observatory: ingest dispatch reported errors", "source", r.SourceType, "items", r.Items, "error", r.Err)
		}
	}
	return nil
}

// handleSnapshot decodes a raw feed item, runs it through the snapshot
// processor, and enqueues the result onto the cluster queue.
func (a *app) handleSnapshot(ctx context.Context, job *queue.Job) error {
	var item models.RawItem
	if err := json.Unmarshal(job.Payload, &item); err != nil {
		return fmt.Errorf("observatory: decode snapshot job: %w", err)
	}

	out, err := a.processor.Process(ctx, snapshot.Input{
		SourceType:  item.SourceType,
		SourceID:    item.ExternalID,
		URL:         item.URL,
		Title:       item.Title,
		Author:      item.Author,
		PublishedAt: item.PublishedAt,
	})
	if err != nil {
		return fmt.Errorf("observatory: process snapshot: %w", err)
	}

	return addJSON(ctx, a.queues[queue.NameCluster], clusterJob{
		SnapshotID:  out.SnapshotID,
		SourceType:  out.SourceType,
		SourceID:    out.SourceID,
		Title:       out.Title,
		PublishedAt: out.PublishedAt,
	})
}

// handleCluster runs the cluster judge against one processed snapshot and
// enqueues its decision onto the materialize queue.
func (a *app) handleCluster(ctx context.Context, job *queue.Job) error {
	var in clusterJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode cluster job: %w", err)
	}

	publishedAt := time.Now()
	if in.PublishedAt != nil {
		publishedAt = *in.PublishedAt
	}

	decision, err := a.judge.Decide(ctx, cluster.Snapshot{ID: in.SnapshotID, Title: in.Title, PublishedAt: publishedAt})
	if err != nil {
		return fmt.Errorf("observatory: cluster judge: %w", err)
	}
	if decision.Outcome == cluster.OutcomeSkipped {
		return nil
	}

	return addJSON(ctx, a.queues[queue.NameMaterialize], materializeJob{
		Decision: decision,
		Input: materialize.Input{
			SnapshotID:  in.SnapshotID,
			SourceType:  in.SourceType,
			Title:       in.Title,
			PublishedAt: publishedAt,
		},
	})
}

// handleMaterialize applies a cluster decision to the event store and
// enqueues the affected event onto the score queue.
func (a *app) handleMaterialize(ctx context.Context, job *queue.Job) error {
	var in materializeJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode materialize job: %w", err)
	}

	result, err := a.materializer.Apply(ctx, in.Decision, in.Input)
	if err != nil {
		return fmt.Errorf("observatory: materialize: %w", err)
	}

	return addEventJob(ctx, a.queues[queue.NameScore], result.EventID)
}

// handleScore computes the event's trust profile, scores it, and either
// quarantines it or advances it to PUBLISHED and enqueues enrichment.
func (a *app) handleScore(ctx context.Context, job *queue.Job) error {
	var in eventJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode score job: %w", err)
	}

	profile, err := a.store.TrustProfileForEvent(ctx, in.EventID)
	if err != nil {
		return fmt.Errorf("observatory: load trust profile: %w", err)
	}

	confidence, status := scoring.Score(profile)
	from := models.StatusRaw
	reason := "scored from evidence trust profile"
	if err := a.store.SetEventStatus(ctx, in.EventID, &from, status, &confidence, reason); err != nil {
		return fmt.Errorf("observatory: set scored status: %w", err)
	}

	if status != models.StatusPublished {
		return nil
	}
	return addEventJob(ctx, a.queues[queue.NameEnrich], in.EventID)
}

// eventContext assembles an enrich.EventContext from the store for eventID.
func (a *app) eventContext(ctx context.Context, eventID string) (enrich.EventContext, error) {
	ev, err := a.store.GetEvent(ctx, eventID)
	if err != nil {
		return enrich.EventContext{}, fmt.Errorf("observatory: load event: %w", err)
	}
	facts, err := a.store.EvidenceTextForEvent(ctx, eventID)
	if err != nil {
		return enrich.EventContext{}, fmt.Errorf("observatory: load evidence text: %w", err)
	}
	return enrich.EventContext{EventID: eventID, Title: ev.Title, Facts: facts}, nil
}

// quarantine directly force-quarantines an event when a required enrichment
// stage fails outright, per pkg/enrich/orchestrator.go's documented
// contract that enrichment itself never mutates status.
func (a *app) quarantine(ctx context.Context, eventID, reason string) error {
	from := models.StatusPublished
	if err := a.store.SetEventStatus(ctx, eventID, &from, models.StatusQuarantined, nil, reason); err != nil {
		return fmt.Errorf("observatory: quarantine event: %w", err)
	}
	return nil
}

// handleEnrich runs the required-artifact orchestrator, then fans out to
// entity-extract and topic-assign.
func (a *app) handleEnrich(ctx context.Context, job *queue.Job) error {
	var in eventJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode enrich job: %w", err)
	}

	evCtx, err := a.eventContext(ctx, in.EventID)
	if err != nil {
		return err
	}

	if err := a.orchestrator.Enrich(ctx, evCtx); err != nil {
		if qerr := a.quarantine(ctx, in.EventID, "required artifact enrichment failed"); qerr != nil {
			return qerr
		}
		slog.Warn("observatory: quarantined event after orchestrator failure", "event_id", in.EventID, "error", err)
		return nil
	}

	if err := addEventJob(ctx, a.queues[queue.NameEntityExtract], in.EventID); err != nil {
		return err
	}
	return addEventJob(ctx, a.queues[queue.NameTopicAssign], in.EventID)
}

// handleEntityExtract runs entity extraction, then signals the fan-in
// coordinator and enqueues relationship-extract once topic-assign has also
// completed.
func (a *app) handleEntityExtract(ctx context.Context, job *queue.Job) error {
	var in eventJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode entity-extract job: %w", err)
	}

	evCtx, err := a.eventContext(ctx, in.EventID)
	if err != nil {
		return err
	}

	if err := a.entities.Extract(ctx, evCtx); err != nil {
		if qerr := a.quarantine(ctx, in.EventID, "entity extraction failed"); qerr != nil {
			return qerr
		}
		slog.Warn("observatory: quarantined event after entity-extract failure", "event_id", in.EventID, "error", err)
		return nil
	}

	if a.coordinator.EntityDone(in.EventID) {
		return addEventJob(ctx, a.queues[queue.NameRelationshipExtract], in.EventID)
	}
	return nil
}

// handleTopicAssign runs topic assignment, then signals the fan-in
// coordinator symmetrically to handleEntityExtract.
func (a *app) handleTopicAssign(ctx context.Context, job *queue.Job) error {
	var in eventJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode topic-assign job: %w", err)
	}

	evCtx, err := a.eventContext(ctx, in.EventID)
	if err != nil {
		return err
	}

	if err := a.topics.Assign(ctx, evCtx); err != nil {
		if qerr := a.quarantine(ctx, in.EventID, "topic assignment failed"); qerr != nil {
			return qerr
		}
		slog.Warn("observatory: quarantined event after topic-assign failure", "event_id", in.EventID, "error", err)
		return nil
	}

	if a.coordinator.TopicDone(in.EventID) {
		return addEventJob(ctx, a.queues[queue.NameRelationshipExtract], in.EventID)
	}
	return nil
}

// handleRelationshipExtract runs the terminal enrichment stage, advances
// the event to ENRICHED on success, and enqueues watchlist-match.
func (a *app) handleRelationshipExtract(ctx context.Context, job *queue.Job) error {
	var in eventJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode relationship-extract job: %w", err)
	}

	evCtx, err := a.eventContext(ctx, in.EventID)
	if err != nil {
		return err
	}

	if err := a.relations.Extract(ctx, evCtx); err != nil {
		if qerr := a.quarantine(ctx, in.EventID, "relationship extraction failed"); qerr != nil {
			return qerr
		}
		slog.Warn("observatory: quarantined event after relationship-extract failure", "event_id", in.EventID, "error", err)
		return nil
	}

	from := models.StatusPublished
	if err := a.store.SetEventStatus(ctx, in.EventID, &from, models.StatusEnriched, nil, "enrichment complete"); err != nil {
		return fmt.Errorf("observatory: advance event to enriched: %w", err)
	}

	return addEventJob(ctx, a.queues[queue.NameWatchlistMatch], in.EventID)
}

// handleWatchlistMatch checks the enriched event against the configured
// watchlist, logging any hit, then fires the broadcast hook unconditionally
// — broadcast announces every event that reaches this terminal step, not
// only watchlist hits, so it still fires with an empty (default) watchlist.
func (a *app) handleWatchlistMatch(ctx context.Context, job *queue.Job) error {
	var in eventJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode watchlist-match job: %w", err)
	}

	result, err := a.matcher.Match(ctx, in.EventID)
	if err != nil {
		return fmt.Errorf("observatory: watchlist match: %w", err)
	}
	if result.Matched {
		slog.Info("observatory: watchlist match", "event_id", in.EventID, "entities", result.EntitySlugs, "topics", result.TopicSlugs)
	}

	if err := a.hook.Notify(ctx, in.EventID); err != nil {
		slog.Error("observatory: broadcast hook failed", "event_id", in.EventID, "error", err)
	}
	return nil
}

// handleBriefing runs the daily briefing generator for one day. An empty
// Date defaults to yesterday in the scheduler's timezone — the recurring
// cron trigger registers one static payload, so "yesterday" has to be
// resolved here at fire time rather than at registration time.
func (a *app) handleBriefing(ctx context.Context, job *queue.Job) error {
	var in briefingJob
	if err := json.Unmarshal(job.Payload, &in); err != nil {
		return fmt.Errorf("observatory: decode briefing job: %w", err)
	}

	day, err := a.resolveBriefingDay(in.Date)
	if err != nil {
		return err
	}

	if err := a.briefing.Run(ctx, day); err != nil {
		return fmt.Errorf("observatory: generate briefing: %w", err)
	}
	return nil
}

func (a *app) resolveBriefingDay(date string) (time.Time, error) {
	if date == "" {
		loc, err := time.LoadLocation(a.cfg.Scheduler.Timezone)
		if err != nil {
			loc = time.UTC
		}
		return time.Now().In(loc).AddDate(0, 0, -1), nil
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("observatory: parse briefing date %q: %w", date, err)
	}
	return day, nil
}
