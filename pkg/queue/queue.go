package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Queue is one named backlog (snapshot, cluster, materialize, score, enrich,
// entity-extract, topic-assign, relationship-extract, watchlist-match,
// briefing). Jobs move pending -> inflight -> (ack | scheduled retry | dead).
type Queue struct {
	name string
	rdb  *redis.Client
	cfg  *config.QueueConfig
}

// NewQueue wraps a named queue around a shared Redis client.
func NewQueue(rdb *redis.Client, name string, cfg *config.QueueConfig) *Queue {
	return &Queue{name: name, rdb: rdb, cfg: cfg}
}

func (q *Queue) Name() string { return q.name }

func (q *Queue) pendingKey() string   { return fmt.Sprintf("queue:%s:pending", q.name) }
func (q *Queue) scheduledKey() string { return fmt.Sprintf("queue:%s:scheduled", q.name) }
func (q *Queue) inflightKey() string  { return fmt.Sprintf("queue:%s:inflight", q.name) }
func (q *Queue) deadKey() string      { return fmt.Sprintf("queue:%s:dead", q.name) }
func (q *Queue) leasedKey() string    { return fmt.Sprintf("queue:%s:leased", q.name) }

// AddOptions configures Add.
type AddOptions struct {
	// Delay schedules the job for not-before-time Delay from now instead of
	// pushing it straight onto the pending list.
	Delay time.Duration
}

// Add enqueues payload, returning the job envelope that was pushed.
func (q *Queue) Add(ctx context.Context, payload json.RawMessage, opts AddOptions) (*Job, error) {
	job := newJob(q.name, payload)
	encoded, err := job.encode()
	if err != nil {
		return nil, fmt.Errorf("queue: encode job: %w", err)
	}

	if opts.Delay > 0 {
		score := float64(time.Now().Add(opts.Delay).Unix())
		if err := q.rdb.ZAdd(ctx, q.scheduledKey(), redis.Z{Score: score, Member: encoded}).Err(); err != nil {
			return nil, fmt.Errorf("queue: schedule job: %w", err)
		}
		return job, nil
	}

	if err := q.rdb.LPush(ctx, q.pendingKey(), encoded).Err(); err != nil {
		return nil, fmt.Errorf("queue: enqueue job: %w", err)
	}
	return job, nil
}

// promoteScheduled moves due entries from the scheduled sorted set onto the
// pending list. Best-effort: a race between the ZRANGEBYSCORE read and the
// ZREM below can double-promote under concurrent pollers, which is
// acceptable for at-least-once delivery.
func (q *Queue) promoteScheduled(ctx context.Context) error {
	now := float64(time.Now().Unix())
	members, err := q.rdb.ZRangeByScore(ctx, q.scheduledKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%f", now),
	}).Result()
	if err != nil {
		return fmt.Errorf("queue: scan scheduled: %w", err)
	}

	for _, member := range members {
		removed, err := q.rdb.ZRem(ctx, q.scheduledKey(), member).Result()
		if err != nil || removed == 0 {
			// Another poller already claimed it.
			continue
		}
		if err := q.rdb.LPush(ctx, q.pendingKey(), member).Err(); err != nil {
			return fmt.Errorf("queue: promote scheduled job: %w", err)
		}
	}
	return nil
}

// retryBackoff returns the delay before attempt N is retried: base * 2^(N-1).
func retryBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
}

// requeue re-encodes job with attempt+1 and either schedules a backoff retry
// or, once MaxRetries attempts have been made, moves it to the dead list.
func (q *Queue) requeue(ctx context.Context, job *Job, cause error) error {
	job.Attempt++
	encoded, err := job.encode()
	if err != nil {
		return fmt.Errorf("queue: encode retry: %w", err)
	}

	if job.Attempt >= q.cfg.MaxRetries {
		if err := q.rdb.LPush(ctx, q.deadKey(), encoded).Err(); err != nil {
			return fmt.Errorf("queue: dead-letter job %s: %w", job.ID, err)
		}
		return fmt.Errorf("%w: job %s (%v)", ErrMaxRetriesExceeded, job.ID, cause)
	}

	delay := retryBackoff(q.cfg.RetryBackoffBase, job.Attempt)
	score := float64(time.Now().Add(delay).Unix())
	return q.rdb.ZAdd(ctx, q.scheduledKey(), redis.Z{Score: score, Member: encoded}).Err()
}

// Depth reports the length of each internal structure, used by pkg/api's
// /status/queues operator endpoint.
type Depth struct {
	Pending   int64
	Scheduled int64
	Inflight  int64
	Dead      int64
}

// PurgeDead drops dead-letter entries created before the cutoff, the queue
// half of the retention loop's dead-letter TTL; entries failing to decode
// are dropped too rather than kept around forever.
func (q *Queue) PurgeDead(ctx context.Context, cutoff time.Time) (int, error) {
	encoded, err := q.rdb.LRange(ctx, q.deadKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: list dead: %w", err)
	}

	purged := 0
	for _, raw := range encoded {
		job, decodeErr := decodeJob(raw)
		if decodeErr != nil || job.CreatedAt.Before(cutoff) {
			if err := q.rdb.LRem(ctx, q.deadKey(), 1, raw).Err(); err != nil {
				return purged, fmt.Errorf("queue: purge dead job: %w", err)
			}
			purged++
		}
	}
	return purged, nil
}

func (q *Queue) Depth(ctx context.Context) (Depth, error) {
	pending, err := q.rdb.LLen(ctx, q.pendingKey()).Result()
	if err != nil {
		return Depth{}, err
	}
	scheduled, err := q.rdb.ZCard(ctx, q.scheduledKey()).Result()
	if err != nil {
		return Depth{}, err
	}
	inflight, err := q.rdb.LLen(ctx, q.inflightKey()).Result()
	if err != nil {
		return Depth{}, err
	}
	dead, err := q.rdb.LLen(ctx, q.deadKey()).Result()
	if err != nil {
		return Depth{}, err
	}
	return Depth{Pending: pending, Scheduled: scheduled, Inflight: inflight, Dead: dead}, nil
}
