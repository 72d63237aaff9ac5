package config

// WatchlistConfig names the entities and topics an operator wants every
// new event checked against, the terminal fan-in stage before broadcast.
type WatchlistConfig struct {
	// EntitySlugs are entity slugs that mark an event as watchlist-matched.
	EntitySlugs []string `yaml:"entity_slugs,omitempty"`

	// TopicSlugs are topic slugs that mark an event as watchlist-matched.
	TopicSlugs []string `yaml:"topic_slugs,omitempty"`
}

// DefaultWatchlistConfig returns an empty watchlist (no event ever matches).
func DefaultWatchlistConfig() *WatchlistConfig {
	return &WatchlistConfig{}
}
