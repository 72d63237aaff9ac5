package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// JobSpec is the payload a repeatable job enqueues each time it fires.
type JobSpec struct {
	QueueName string
	Payload   json.RawMessage
}

type scheduledEntry struct {
	pattern  string
	spec     JobSpec
	nextFire time.Time
}

// Scheduler arms repeatable jobs (feed ingestion, daily briefing) against a
// registry of named queues. Cron support is deliberately narrow: only the
// three shapes this system needs, `*/N * * * *` (every N minutes),
// `M */N * * *` (every N hours, at minute M), and `M H * * *` (daily at
// H:M), since no cron dependency exists anywhere in the example pack for
// this scope.
type Scheduler struct {
	queues map[string]*Queue
	loc    *time.Location

	mu   sync.Mutex
	jobs map[string]*scheduledEntry

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler builds a scheduler over the given named queue registry.
// timezone is an IANA name (e.g. "UTC"); an unrecognized name falls back to UTC.
func NewScheduler(queues map[string]*Queue, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("queue scheduler: unknown timezone, defaulting to UTC", "timezone", timezone)
		loc = time.UTC
	}
	return &Scheduler{
		queues: queues,
		loc:    loc,
		jobs:   make(map[string]*scheduledEntry),
		stopCh: make(chan struct{}),
	}
}

// UpsertJobScheduler registers (or replaces) a repeatable job. pattern is
// evaluated against the scheduler's timezone.
func (s *Scheduler) UpsertJobScheduler(name string, pattern string, spec JobSpec) error {
	if _, ok := s.queues[spec.QueueName]; !ok {
		return fmt.Errorf("queue scheduler: unknown queue %q for job %q", spec.QueueName, name)
	}

	next, err := nextFire(pattern, time.Now().In(s.loc))
	if err != nil {
		return fmt.Errorf("queue scheduler: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = &scheduledEntry{pattern: pattern, spec: spec, nextFire: next}
	return nil
}

// Start begins the tick loop that fires due jobs and re-arms them.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().In(s.loc)

	s.mu.Lock()
	due := make([]string, 0)
	for name, entry := range s.jobs {
		if !now.Before(entry.nextFire) {
			due = append(due, name)
		}
	}
	s.mu.Unlock()

	for _, name := range due {
		s.mu.Lock()
		entry := s.jobs[name]
		s.mu.Unlock()
		if entry == nil {
			continue
		}

		q := s.queues[entry.spec.QueueName]
		if _, err := q.Add(ctx, entry.spec.Payload, AddOptions{}); err != nil {
			slog.Error("queue scheduler: failed to enqueue repeatable job", "job", name, "error", err)
		}

		next, err := nextFire(entry.pattern, now)
		if err != nil {
			slog.Error("queue scheduler: failed to re-arm job", "job", name, "error", err)
			continue
		}
		s.mu.Lock()
		entry.nextFire = next
		s.mu.Unlock()
	}
}

// nextFire computes the next fire time strictly after from for the
// supported cron shapes.
func nextFire(pattern string, from time.Time) (time.Time, error) {
	fields := strings.Fields(pattern)
	if len(fields) != 5 {
		return time.Time{}, fmt.Errorf("unsupported cron pattern %q: expected 5 fields", pattern)
	}
	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	if dom != "*" || month != "*" || dow != "*" {
		return time.Time{}, fmt.Errorf("unsupported cron pattern %q: only minute/hour fields may be constrained", pattern)
	}

	if strings.HasPrefix(minute, "*/") && hour == "*" {
		n, err := strconv.Atoi(strings.TrimPrefix(minute, "*/"))
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("unsupported cron minute step %q", minute)
		}
		truncated := from.Truncate(time.Minute)
		for next := truncated.Add(time.Minute); ; next = next.Add(time.Minute) {
			if next.Minute()%n == 0 && next.After(from) {
				return next, nil
			}
		}
	}

	if minute != "*" && strings.HasPrefix(hour, "*/") {
		m, err1 := strconv.Atoi(minute)
		n, err2 := strconv.Atoi(strings.TrimPrefix(hour, "*/"))
		if err1 != nil || err2 != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("unsupported cron hour step %q", pattern)
		}
		candidate := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), m, 0, 0, from.Location())
		for {
			if candidate.Hour()%n == 0 && candidate.After(from) {
				return candidate, nil
			}
			candidate = candidate.Add(time.Hour)
		}
	}

	if minute != "*" && hour != "*" {
		m, err1 := strconv.Atoi(minute)
		h, err2 := strconv.Atoi(hour)
		if err1 != nil || err2 != nil {
			return time.Time{}, fmt.Errorf("unsupported cron daily spec %q", pattern)
		}
		next := time.Date(from.Year(), from.Month(), from.Day(), h, m, 0, 0, from.Location())
		if !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}
		return next, nil
	}

	return time.Time{}, fmt.Errorf("unsupported cron pattern %q", pattern)
}
