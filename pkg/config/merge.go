package config

// mergeFeeds merges built-in and user-defined feed configurations.
// User-defined sources override built-in sources with the same key; a
// built-in source left out of the user file is kept unmodified.
func mergeFeeds(builtin map[string]*FeedConfig, user map[string]*FeedConfig) map[string]*FeedConfig {
	result := make(map[string]*FeedConfig, len(builtin))
	for name, cfg := range builtin {
		cfgCopy := *cfg
		result[name] = &cfgCopy
	}
	for name, cfg := range user {
		cfgCopy := *cfg
		result[name] = &cfgCopy
	}
	return result
}

// mergeLLMProviders merges built-in and user-defined LLM provider configurations.
// User-defined providers override built-in providers with the same name.
func mergeLLMProviders(builtin map[string]*LLMProviderConfig, user map[string]*LLMProviderConfig) map[string]*LLMProviderConfig {
	result := make(map[string]*LLMProviderConfig, len(builtin))
	for name, cfg := range builtin {
		cfgCopy := *cfg
		result[name] = &cfgCopy
	}
	for name, cfg := range user {
		cfgCopy := *cfg
		result[name] = &cfgCopy
	}
	return result
}
