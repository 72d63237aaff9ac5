package config

import "time"

// FeedConfig describes one of the eleven source adapters: whether it runs,
// the environment variables its credentials live in, and its rate limit.
type FeedConfig struct {
	// Enabled toggles whether the ingest dispatcher invokes this adapter.
	Enabled bool `yaml:"enabled"`

	// CredentialEnv names the environment variables the adapter reads for
	// auth, keyed by role (e.g. "client_id", "client_secret", "api_key").
	// Adapters that need no credentials (Hacker News, Lobsters, arXiv,
	// GitHub Trending) leave this empty.
	CredentialEnv map[string]string `yaml:"credential_env,omitempty"`

	// MinCallInterval is the configured minimum spacing between calls to this
	// source. No adapter reads it; calls are not spaced by it.
	MinCallInterval time.Duration `yaml:"min_call_interval"`

	// FetchTimeout bounds a single Fetch call.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// FeedsConfig holds one FeedConfig per adapter, keyed by SourceType.
type FeedsConfig struct {
	Sources map[string]*FeedConfig `yaml:"sources"`
}

// DefaultFeedsConfig returns the built-in feed defaults for all eleven sources.
func DefaultFeedsConfig() *FeedsConfig {
	const defaultInterval = 2 * time.Second
	const defaultTimeout = 15 * time.Second

	bare := func() *FeedConfig {
		return &FeedConfig{Enabled: true, MinCallInterval: defaultInterval, FetchTimeout: defaultTimeout}
	}

	return &FeedsConfig{
		Sources: map[string]*FeedConfig{
			"hackernews": bare(),
			"github_trending": bare(),
			"arxiv":      bare(),
			"devto":      bare(),
			"lobsters":   bare(),
			"huggingface": bare(),
			"llm_leaderboard": bare(),
			"newsapi": {
				Enabled:         true,
				CredentialEnv:   map[string]string{"api_key": "NEWSAPI_KEY"},
				MinCallInterval: defaultInterval,
				FetchTimeout:    defaultTimeout,
			},
			"youtube": {
				Enabled:         true,
				CredentialEnv:   map[string]string{"api_key": "YOUTUBE_API_KEY"},
				MinCallInterval: defaultInterval,
				FetchTimeout:    defaultTimeout,
			},
			"reddit": {
				Enabled: true,
				CredentialEnv: map[string]string{
					"client_id":     "REDDIT_CLIENT_ID",
					"client_secret": "REDDIT_CLIENT_SECRET",
				},
				MinCallInterval: defaultInterval,
				FetchTimeout:    defaultTimeout,
			},
			"producthunt": {
				Enabled: true,
				CredentialEnv: map[string]string{
					"client_id":     "PRODUCTHUNT_CLIENT_ID",
					"client_secret": "PRODUCTHUNT_CLIENT_SECRET",
				},
				MinCallInterval: defaultInterval,
				FetchTimeout:    defaultTimeout,
			},
		},
	}
}
