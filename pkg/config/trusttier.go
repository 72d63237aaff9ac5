package config

// TrustTierConfig maps source domains to a trust tier used by the confidence
// scorer. Domains absent from Overrides fall back to DefaultTier.
type TrustTierConfig struct {
	DefaultTier string            `yaml:"default_tier"`
	Overrides   map[string]string `yaml:"overrides,omitempty"`
}

// DefaultTrustTierConfig returns the built-in domain-to-tier mapping.
// Authoritative sources are primary publishers and official blogs; standard
// is the general case; low covers forums and social aggregators.
func DefaultTrustTierConfig() *TrustTierConfig {
	return &TrustTierConfig{
		DefaultTier: "STANDARD",
		Overrides: map[string]string{
			"openai.com":            "AUTHORITATIVE",
			"anthropic.com":         "AUTHORITATIVE",
			"deepmind.google":       "AUTHORITATIVE",
			"ai.meta.com":           "AUTHORITATIVE",
			"blog.google":           "AUTHORITATIVE",
			"arxiv.org":             "AUTHORITATIVE",
			"huggingface.co":        "AUTHORITATIVE",
			"news.ycombinator.com":  "STANDARD",
			"reddit.com":            "LOW",
			"lobste.rs":             "STANDARD",
		},
	}
}
