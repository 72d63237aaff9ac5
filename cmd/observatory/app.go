package main

import (
	"context"
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/artifact"
	"github.com/ai-roundtable/observatory/pkg/briefing"
	"github.com/ai-roundtable/observatory/pkg/broadcast"
	"github.com/ai-roundtable/observatory/pkg/cluster"
	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/database"
	"github.com/ai-roundtable/observatory/pkg/enrich"
	"github.com/ai-roundtable/observatory/pkg/feeds"
	"github.com/ai-roundtable/observatory/pkg/ingest"
	"github.com/ai-roundtable/observatory/pkg/llm"
	"github.com/ai-roundtable/observatory/pkg/materialize"
	"github.com/ai-roundtable/observatory/pkg/queue"
	"github.com/ai-roundtable/observatory/pkg/retention"
	"github.com/ai-roundtable/observatory/pkg/snapshot"
	"github.com/ai-roundtable/observatory/pkg/store"
	"github.com/ai-roundtable/observatory/pkg/watchlist"
	"github.com/redis/go-redis/v9"
)

// app bundles every long-lived dependency the pipeline's subcommands share.
// Built once per process invocation by newApp.
type app struct {
	cfg *config.Config
	db  *database.Client
	rdb *redis.Client

	store *store.Store

	queues  map[string]*queue.Queue
	workers map[string]*queue.Worker

	router    *llm.Router
	validator *artifact.Validator

	dispatcher   *ingest.Dispatcher
	processor    *snapshot.Processor
	judge        *cluster.Judge
	materializer *materialize.Materializer
	orchestrator *enrich.Orchestrator
	entities     *enrich.EntityExtractor
	topics       *enrich.TopicAssigner
	relations    *enrich.RelationshipExtractor
	coordinator  *enrich.Coordinator
	sweeper      *enrich.Sweeper
	matcher      *watchlist.Matcher
	hook         *broadcast.Hook
	briefing     *briefing.Generator
	retention    *retention.Runner

	scheduler *queue.Scheduler
}

// newApp loads configuration and builds every pipeline component, but
// starts nothing — callers decide what to run.
func newApp(ctx context.Context, configDir string) (*app, error) {
	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("observatory: initialize config: %w", err)
	}

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("observatory: load database config: %w", err)
	}
	dbClient, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("observatory: connect database: %w", err)
	}

	rdb, err := queue.NewRedisClient(cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("observatory: connect redis: %w", err)
	}
	queues := queue.NewManager(rdb, cfg.Queue)

	router, err := llm.NewRouter(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("observatory: build llm router: %w", err)
	}

	validator, err := artifact.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("observatory: build schema validator: %w", err)
	}

	st := store.New(dbClient.Pool())

	adapters := feeds.NewRegistry(cfg.Feeds)
	dispatcher := ingest.NewDispatcher(adapters, queues[queue.NameSnapshot])

	processor := snapshot.NewProcessor(st, cfg.TrustTier, 0)
	judge := cluster.NewJudge(st, router, validator)
	materializer := materialize.NewMaterializer(st)

	orchestrator := enrich.NewOrchestrator(router, st, validator)
	entityExtractor := enrich.NewEntityExtractor(router, st, validator)
	topicAssigner := enrich.NewTopicAssigner(router, st, validator)
	relationshipExtractor := enrich.NewRelationshipExtractor(router, st, validator)
	coordinator := enrich.NewCoordinator()

	relationshipQueue := queues[queue.NameRelationshipExtract]
	enqueueRelationships := func(ctx context.Context, eventID string) error {
		return addEventJob(ctx, relationshipQueue, eventID)
	}
	sweeper := enrich.NewSweeper(st, enqueueRelationships, cfg.Queue.SweepInterval)

	matcher := watchlist.NewMatcher(st, cfg.Watchlist)
	hook := broadcast.NewHook(cfg.Broadcast.URL)
	briefingGen := briefing.NewGenerator(router, st, validator)

	deadLetterQueues := make([]retention.DeadLetterQueue, 0, len(queues))
	for _, q := range queues {
		deadLetterQueues = append(deadLetterQueues, q)
	}
	retentionRunner := retention.NewRunner(st, deadLetterQueues, cfg.Retention)

	scheduler := queue.NewScheduler(queues, cfg.Scheduler.Timezone)

	a := &app{
		cfg:          cfg,
		db:           dbClient,
		rdb:          rdb,
		store:        st,
		queues:       queues,
		workers:      make(map[string]*queue.Worker),
		router:       router,
		validator:    validator,
		dispatcher:   dispatcher,
		processor:    processor,
		judge:        judge,
		materializer: materializer,
		orchestrator: orchestrator,
		entities:     entityExtractor,
		topics:       topicAssigner,
		relations:    relationshipExtractor,
		coordinator:  coordinator,
		sweeper:      sweeper,
		matcher:      matcher,
		hook:         hook,
		briefing:     briefingGen,
		retention:    retentionRunner,
		scheduler:    scheduler,
	}
	a.buildWorkers()
	return a, nil
}

func (a *app) close() {
	a.db.Close()
	_ = a.rdb.Close()
}
