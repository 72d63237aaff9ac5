package config

// BriefingConfig holds daily briefing settings. It is loaded and merged like
// every other section, but pkg/briefing does not read it: the generator
// always covers its own fixed top 5 events, and the roundtable personas and
// turn rules are fixed by the briefing schema and
// artifact.ValidateRoundtableStructure.
type BriefingConfig struct {
	// TopN is the configured number of events for the roundtable (not read
	// by the generator).
	TopN int `yaml:"top_n"`

	// Personas is the configured list of roundtable speaker personas (not
	// read by the generator or the validator).
	Personas []string `yaml:"personas"`

	// MinTurnsPerPersona is the configured minimum number of turns per
	// persona (not read by the validator).
	MinTurnsPerPersona int `yaml:"min_turns_per_persona"`
}

// DefaultBriefingConfig returns the built-in briefing defaults.
func DefaultBriefingConfig() *BriefingConfig {
	return &BriefingConfig{
		TopN:               8,
		Personas:           []string{"GM", "Engineer", "Skeptic"},
		MinTurnsPerPersona: 1,
	}
}

// BroadcastConfig holds the outbound notification hook settings.
type BroadcastConfig struct {
	// URL is the base broadcast endpoint; "/api/sse/broadcast" is appended
	// by pkg/broadcast. Empty disables the hook entirely.
	URL string `yaml:"url,omitempty"`

	// Timeout is the configured bound for a single notify POST. pkg/broadcast
	// does not read it; the hook always uses its own fixed 10s timeout.
	Timeout string `yaml:"timeout,omitempty"`
}

// DefaultBroadcastConfig returns the built-in broadcast defaults (disabled).
func DefaultBroadcastConfig() *BroadcastConfig {
	return &BroadcastConfig{Timeout: "5s"}
}
