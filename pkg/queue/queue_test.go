package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func testQueueConfig() *config.QueueConfig {
	cfg := config.DefaultQueueConfig()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.PollIntervalJitter = 0
	cfg.JobTimeout = 200 * time.Millisecond
	cfg.GracefulShutdownTimeout = time.Second
	cfg.SweepInterval = 20 * time.Millisecond
	cfg.MaxRetries = 2
	cfg.RetryBackoffBase = 10 * time.Millisecond
	return cfg
}

func TestQueue_AddPushesPending(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testQueueConfig()
	q := NewQueue(rdb, "snapshot", cfg)
	ctx := context.Background()

	job, err := q.Add(ctx, json.RawMessage(`{"url":"https://example.com"}`), AddOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, depth.Pending)
	require.EqualValues(t, 0, depth.Scheduled)
}

func TestQueue_AddWithDelaySchedules(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testQueueConfig()
	q := NewQueue(rdb, "snapshot", cfg)
	ctx := context.Background()

	_, err := q.Add(ctx, json.RawMessage(`{}`), AddOptions{Delay: time.Hour})
	require.NoError(t, err)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, depth.Pending)
	require.EqualValues(t, 1, depth.Scheduled)
}

func TestQueue_PromoteScheduledMovesDueJobs(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testQueueConfig()
	q := NewQueue(rdb, "cluster", cfg)
	ctx := context.Background()

	_, err := q.Add(ctx, json.RawMessage(`{}`), AddOptions{Delay: -time.Second})
	require.NoError(t, err)

	require.NoError(t, q.promoteScheduled(ctx))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, depth.Pending)
	require.EqualValues(t, 0, depth.Scheduled)
}

func TestQueue_RetryBackoffDoublesPerAttempt(t *testing.T) {
	base := 2 * time.Second
	require.Equal(t, 2*time.Second, retryBackoff(base, 1))
	require.Equal(t, 4*time.Second, retryBackoff(base, 2))
	require.Equal(t, 8*time.Second, retryBackoff(base, 3))
}

func TestQueue_RequeueDeadLettersPastMaxRetries(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testQueueConfig()
	cfg.MaxRetries = 1
	q := NewQueue(rdb, "enrich", cfg)
	ctx := context.Background()

	job := newJob("enrich", json.RawMessage(`{}`))
	job.Attempt = 1 // already retried once

	err := q.requeue(ctx, job, errors.New("handler failed"))
	require.ErrorIs(t, err, ErrMaxRetriesExceeded)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, depth.Dead)
	require.EqualValues(t, 0, depth.Scheduled)
}
