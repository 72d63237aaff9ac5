package queue

import (
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Queue names, one per pipeline stage plus the daily briefing trigger.
const (
	NameIngestTrigger       = "ingest-trigger"
	NameSnapshot            = "snapshot"
	NameCluster             = "cluster"
	NameMaterialize         = "materialize"
	NameScore               = "score"
	NameEnrich              = "enrich"
	NameEntityExtract       = "entity-extract"
	NameTopicAssign         = "topic-assign"
	NameRelationshipExtract = "relationship-extract"
	NameWatchlistMatch      = "watchlist-match"
	NameBriefing            = "briefing"
)

// allNames lists every queue the pipeline uses, in pipeline order.
var allNames = []string{
	NameIngestTrigger,
	NameSnapshot,
	NameCluster,
	NameMaterialize,
	NameScore,
	NameEnrich,
	NameEntityExtract,
	NameTopicAssign,
	NameRelationshipExtract,
	NameWatchlistMatch,
	NameBriefing,
}

// NewRedisClient opens a client against cfg.RedisURL.
func NewRedisClient(cfg *config.QueueConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewManager builds every pipeline queue over one shared Redis client.
func NewManager(rdb *redis.Client, cfg *config.QueueConfig) map[string]*Queue {
	queues := make(map[string]*Queue, len(allNames))
	for _, name := range allNames {
		queues[name] = NewQueue(rdb, name, cfg)
	}
	return queues
}
