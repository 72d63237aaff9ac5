package config

import "time"

// RetentionConfig controls data retention and cleanup behavior.
type RetentionConfig struct {
	// SnapshotRawHTMLDays is how many days to keep the raw fetched HTML/text of
	// an EvidenceSnapshot before it is cleared (the row and hash survive).
	SnapshotRawHTMLDays int `yaml:"snapshot_raw_html_days"`

	// QuarantineTTL is the maximum age of a QUARANTINED event before the
	// cleanup loop force-resolves it to BLOCKED.
	QuarantineTTL time.Duration `yaml:"quarantine_ttl"`

	// DeadLetterTTL is how long dead-lettered queue jobs are retained for
	// operator inspection before being purged.
	DeadLetterTTL time.Duration `yaml:"dead_letter_ttl"`

	// CleanupInterval is how often the cleanup loop runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		SnapshotRawHTMLDays: 30,
		QuarantineTTL:       72 * time.Hour,
		DeadLetterTTL:       14 * 24 * time.Hour,
		CleanupInterval:     12 * time.Hour,
	}
}
