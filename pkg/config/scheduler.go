package config

// SchedulerConfig holds the cron expressions that drive the two recurring
// triggers: feed ingestion and daily briefing generation.
type SchedulerConfig struct {
	// IngestCron fires the ingest dispatcher. Default: every 2 hours.
	IngestCron string `yaml:"ingest_cron"`

	// BriefingCron fires briefing generation for "yesterday" in the configured
	// timezone. Default: 05:00 daily.
	BriefingCron string `yaml:"briefing_cron"`

	// Timezone is the IANA timezone name used to resolve BriefingCron and the
	// "current day" boundary for top-N event selection.
	Timezone string `yaml:"timezone"`
}

// DefaultSchedulerConfig returns the built-in scheduler defaults.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		IngestCron:   "0 */2 * * *",
		BriefingCron: "0 5 * * *",
		Timezone:     "UTC",
	}
}
