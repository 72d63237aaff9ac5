package config

// Config is the umbrella configuration object that encapsulates all
// subsystem settings and registries. This is the primary object returned
// by Initialize() and threaded through every component.
type Config struct {
	configDir string // Configuration directory path (for reference)

	Queue     *QueueConfig
	LLM       *LLMConfig
	Feeds     *FeedsConfig
	Scheduler *SchedulerConfig
	Retention *RetentionConfig
	TrustTier *TrustTierConfig
	Briefing  *BriefingConfig
	Broadcast *BroadcastConfig
	Watchlist *WatchlistConfig

	LLMProviderRegistry *LLMProviderRegistry
}

// Initialize is defined in loader.go

// ConfigStats contains statistics about loaded configuration.
type ConfigStats struct {
	Feeds        int
	LLMProviders int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		Feeds:        len(c.Feeds.Sources),
		LLMProviders: c.LLMProviderRegistry.Len(),
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetFeed retrieves a feed configuration by source type.
func (c *Config) GetFeed(sourceType string) (*FeedConfig, error) {
	cfg, ok := c.Feeds.Sources[sourceType]
	if !ok {
		return nil, ErrFeedNotFound
	}
	return cfg, nil
}

// GetLLMProvider retrieves an LLM provider configuration by name.
// This is a convenience method that wraps LLMProviderRegistry.Get().
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}

// TrustTierOf resolves the trust tier for a source domain, falling back to
// the configured default when the domain has no explicit override.
func (c *Config) TrustTierOf(domain string) string {
	if tier, ok := c.TrustTier.Overrides[domain]; ok {
		return tier
	}
	return c.TrustTier.DefaultTier
}
