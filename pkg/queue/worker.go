package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Handler processes one job's payload. A returned error triggers a
// backoff retry, or dead-lettering once MaxRetries is exhausted.
type Handler func(ctx context.Context, job *Job) error

// CompletedFunc is the completion-hook primitive: called after every job
// resolves, whether by ack or by terminal dead-letter, so a handler's
// success can enqueue the next queue's job from inside the hook.
type CompletedFunc func(job *Job, err error)

// WorkerStatus reports whether a worker slot is idle or processing a job.
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// Worker runs a bounded-concurrency pool of handler goroutines against one
// Queue, plus a scheduled-job promoter and an in-flight sweeper.
type Worker struct {
	queue       *Queue
	cfg         *config.QueueConfig
	handler     Handler
	onCompleted CompletedFunc

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu     sync.RWMutex
	slots  []slotHealth
}

type slotHealth struct {
	status            WorkerStatus
	currentJobID      string
	jobsProcessed     int
	lastActivity      time.Time
}

// SlotHealth is a worker slot's exported health snapshot.
type SlotHealth struct {
	Status        WorkerStatus
	CurrentJobID  string
	JobsProcessed int
	LastActivity  time.Time
}

// NewWorker builds a worker pool for queue, sized by cfg.WorkerCount.
func NewWorker(q *Queue, cfg *config.QueueConfig, handler Handler) *Worker {
	return &Worker{
		queue:   q,
		cfg:     cfg,
		handler: handler,
		stopCh:  make(chan struct{}),
		slots:   make([]slotHealth, cfg.WorkerCount),
	}
}

// OnCompleted registers the completion hook. Must be called before Start.
func (w *Worker) OnCompleted(fn CompletedFunc) { w.onCompleted = fn }

// Start launches the handler goroutines plus the scheduled-job promoter and
// in-flight sweeper, all stopped together by Stop.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.WorkerCount; i++ {
		w.wg.Add(1)
		go w.runSlot(ctx, i)
	}
	w.wg.Add(1)
	go w.runPromoter(ctx)
	w.wg.Add(1)
	go w.runSweeper(ctx)
}

// Stop signals all goroutines to stop and waits up to
// GracefulShutdownTimeout for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(w.cfg.GracefulShutdownTimeout):
		slog.Warn("queue worker: graceful shutdown timed out", "queue", w.queue.Name())
	}
}

// Health returns a snapshot of every worker slot.
func (w *Worker) Health() []SlotHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]SlotHealth, len(w.slots))
	for i, s := range w.slots {
		out[i] = SlotHealth{
			Status:        s.status,
			CurrentJobID:  s.currentJobID,
			JobsProcessed: s.jobsProcessed,
			LastActivity:  s.lastActivity,
		}
	}
	return out
}

func (w *Worker) runSlot(ctx context.Context, slot int) {
	defer w.wg.Done()
	log := slog.With("queue", w.queue.Name(), "slot", slot)
	w.setSlot(slot, WorkerStatusIdle, "")

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		job, encoded, err := w.claim(ctx)
		if err != nil {
			if errors.Is(err, ErrNoJobsAvailable) {
				continue
			}
			log.Error("claim failed", "error", err)
			w.sleep(time.Second)
			continue
		}

		w.process(ctx, slot, job, encoded)
	}
}

// claim blocks (up to PollInterval) popping the next pending job into the
// in-flight list, recording a lease timestamp for the sweeper.
func (w *Worker) claim(ctx context.Context) (*Job, string, error) {
	timeout := w.cfg.PollInterval
	if timeout <= 0 {
		timeout = time.Second
	}
	encoded, err := w.queue.rdb.BRPopLPush(ctx, w.queue.pendingKey(), w.queue.inflightKey(), timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, "", ErrNoJobsAvailable
	}
	if err != nil {
		return nil, "", fmt.Errorf("queue: claim: %w", err)
	}

	job, err := decodeJob(encoded)
	if err != nil {
		// Unreadable envelope: drop it from in-flight so it cannot wedge the
		// list forever, and surface the error.
		_ = w.queue.rdb.LRem(ctx, w.queue.inflightKey(), 1, encoded).Err()
		return nil, "", fmt.Errorf("queue: decode claimed job: %w", err)
	}

	if err := w.queue.rdb.HSet(ctx, w.queue.leasedKey(), job.ID, time.Now().Unix()).Err(); err != nil {
		slog.Warn("queue: failed to record lease", "job_id", job.ID, "error", err)
	}

	return job, encoded, nil
}

func (w *Worker) process(ctx context.Context, slot int, job *Job, encoded string) {
	log := slog.With("queue", w.queue.Name(), "job_id", job.ID, "attempt", job.Attempt)
	w.setSlot(slot, WorkerStatusWorking, job.ID)
	defer w.setSlot(slot, WorkerStatusIdle, "")

	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	err := w.handler(jobCtx, job)

	if err == nil {
		w.ack(context.Background(), job, encoded)
		log.Info("job completed")
		w.fireCompleted(job, nil)
		w.bumpProcessed(slot)
		return
	}

	log.Warn("job failed, requeueing", "error", err)
	if reqErr := w.queue.requeue(context.Background(), job, err); reqErr != nil && !errors.Is(reqErr, ErrMaxRetriesExceeded) {
		log.Error("failed to requeue job", "error", reqErr)
	}
	w.ack(context.Background(), job, encoded) // remove the original in-flight entry; requeue already re-pushed it
	w.fireCompleted(job, err)
	w.bumpProcessed(slot)
}

func (w *Worker) ack(ctx context.Context, job *Job, encoded string) {
	if err := w.queue.rdb.LRem(ctx, w.queue.inflightKey(), 1, encoded).Err(); err != nil {
		slog.Warn("queue: failed to remove in-flight entry", "job_id", job.ID, "error", err)
	}
	if err := w.queue.rdb.HDel(ctx, w.queue.leasedKey(), job.ID).Err(); err != nil {
		slog.Warn("queue: failed to clear lease", "job_id", job.ID, "error", err)
	}
}

func (w *Worker) fireCompleted(job *Job, err error) {
	if w.onCompleted != nil {
		w.onCompleted(job, err)
	}
}

func (w *Worker) setSlot(slot int, status WorkerStatus, jobID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots[slot].status = status
	w.slots[slot].currentJobID = jobID
	w.slots[slot].lastActivity = time.Now()
}

func (w *Worker) bumpProcessed(slot int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots[slot].jobsProcessed++
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// runPromoter periodically moves due scheduled jobs onto the pending list.
func (w *Worker) runPromoter(ctx context.Context) {
	defer w.wg.Done()
	interval := w.cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.queue.promoteScheduled(ctx); err != nil {
				slog.Warn("queue: promote scheduled failed", "queue", w.queue.Name(), "error", err)
			}
		}
	}
}

// runSweeper periodically requeues in-flight jobs whose lease has expired,
// i.e. the worker that claimed them died or is stuck past JobTimeout.
func (w *Worker) runSweeper(ctx context.Context) {
	defer w.wg.Done()
	interval := w.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sweepInflight(ctx); err != nil {
				slog.Warn("queue: sweep in-flight failed", "queue", w.queue.Name(), "error", err)
			}
		}
	}
}

func (w *Worker) sweepInflight(ctx context.Context) error {
	entries, err := w.queue.rdb.LRange(ctx, w.queue.inflightKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("scan inflight: %w", err)
	}

	leases, err := w.queue.rdb.HGetAll(ctx, w.queue.leasedKey()).Result()
	if err != nil {
		return fmt.Errorf("read leases: %w", err)
	}

	now := time.Now()
	for _, encoded := range entries {
		job, err := decodeJob(encoded)
		if err != nil {
			continue
		}
		leasedAtStr, ok := leases[job.ID]
		if !ok {
			continue
		}
		var leasedAtUnix int64
		if _, err := fmt.Sscanf(leasedAtStr, "%d", &leasedAtUnix); err != nil {
			continue
		}
		leasedAt := time.Unix(leasedAtUnix, 0)
		if now.Sub(leasedAt) < w.cfg.JobTimeout {
			continue
		}

		removed, err := w.queue.rdb.LRem(ctx, w.queue.inflightKey(), 1, encoded).Result()
		if err != nil || removed == 0 {
			continue
		}
		_ = w.queue.rdb.HDel(ctx, w.queue.leasedKey(), job.ID).Err()

		if reqErr := w.queue.requeue(ctx, job, fmt.Errorf("lease expired after %v", w.cfg.JobTimeout)); reqErr != nil && !errors.Is(reqErr, ErrMaxRetriesExceeded) {
			slog.Error("queue: failed to requeue abandoned job", "job_id", job.ID, "error", reqErr)
		}
	}
	return nil
}
