package config

import "time"

// QueueConfig contains Redis-backed queue and worker pool configuration.
// These values control how jobs are polled, leased, retried, and dead-lettered.
type QueueConfig struct {
	// RedisURL is the connection string for the queue substrate (redis://host:port/db).
	RedisURL string `yaml:"redis_url,omitempty"`

	// WorkerCount is the number of worker goroutines per queue per process.
	WorkerCount int `yaml:"worker_count"`

	// PollInterval is the base interval for pending-list polling.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollIntervalJitter is the random jitter added to PollInterval.
	// Actual interval: PollInterval ± PollIntervalJitter.
	PollIntervalJitter time.Duration `yaml:"poll_interval_jitter"`

	// JobTimeout is the maximum time a job may sit on the in-flight list before
	// the sweeper considers it abandoned and requeues it.
	JobTimeout time.Duration `yaml:"job_timeout"`

	// GracefulShutdownTimeout is the max time to wait for in-flight jobs to
	// finish during shutdown.
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`

	// MaxRetries is the number of attempts before a job is moved to the dead list.
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoffBase is the base duration for exponential backoff between
	// retries (attempt N waits RetryBackoffBase * 2^(N-1)).
	RetryBackoffBase time.Duration `yaml:"retry_backoff_base"`

	// SweepInterval is how often the in-flight sweeper scans for abandoned jobs.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultQueueConfig returns the built-in queue defaults.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		RedisURL:                "redis://localhost:6379/0",
		WorkerCount:             4,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		JobTimeout:              5 * time.Minute,
		GracefulShutdownTimeout: 30 * time.Second,
		MaxRetries:              5,
		RetryBackoffBase:        2 * time.Second,
		SweepInterval:           1 * time.Minute,
	}
}
