package queue

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWorker_ProcessesJobAndFiresCompletedHook(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testQueueConfig()
	q := NewQueue(rdb, "snapshot", cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var processed int32
	var completedCalls int32
	handler := func(_ context.Context, job *Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	}

	w := NewWorker(q, cfg, handler)
	w.OnCompleted(func(job *Job, err error) {
		require.NoError(t, err)
		atomic.AddInt32(&completedCalls, 1)
	})
	w.Start(ctx)
	defer w.Stop()

	_, err := q.Add(context.Background(), json.RawMessage(`{"url":"https://example.com"}`), AddOptions{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&processed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&completedCalls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	depth, err := q.Depth(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, depth.Inflight)
	require.EqualValues(t, 0, depth.Pending)
}

func TestWorker_RetriesOnHandlerError(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testQueueConfig()
	cfg.MaxRetries = 3
	q := NewQueue(rdb, "cluster", cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int32
	handler := func(_ context.Context, job *Job) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return assertErr
		}
		return nil
	}

	w := NewWorker(q, cfg, handler)
	w.Start(ctx)
	defer w.Stop()

	_, err := q.Add(context.Background(), json.RawMessage(`{}`), AddOptions{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) >= 3
	}, 3*time.Second, 10*time.Millisecond)
}

var assertErr = errTest("handler failure")

type errTest string

func (e errTest) Error() string { return string(e) }
