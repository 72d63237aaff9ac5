package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeFeeds_UserOverridesBuiltin(t *testing.T) {
	builtin := map[string]*FeedConfig{
		"hackernews": {Enabled: true, MinCallInterval: 2 * time.Second},
		"arxiv":      {Enabled: true, MinCallInterval: 2 * time.Second},
	}
	user := map[string]*FeedConfig{
		"hackernews": {Enabled: false, MinCallInterval: 10 * time.Second},
	}

	merged := mergeFeeds(builtin, user)

	assert.Len(t, merged, 2)
	assert.False(t, merged["hackernews"].Enabled)
	assert.Equal(t, 10*time.Second, merged["hackernews"].MinCallInterval)
	assert.True(t, merged["arxiv"].Enabled)
}

func TestMergeFeeds_DoesNotMutateInputs(t *testing.T) {
	builtin := map[string]*FeedConfig{"arxiv": {Enabled: true}}
	user := map[string]*FeedConfig{}

	merged := mergeFeeds(builtin, user)
	merged["arxiv"].Enabled = false

	assert.True(t, builtin["arxiv"].Enabled, "merge must defensive-copy, not alias, built-in entries")
}

func TestMergeLLMProviders_UserAddsNewProvider(t *testing.T) {
	builtin := map[string]*LLMProviderConfig{
		"ollama": {BaseURL: "http://localhost:11434", Model: "llama3.1:8b"},
	}
	user := map[string]*LLMProviderConfig{
		"deepseek": {BaseURL: "https://api.deepseek.com", Model: "deepseek-chat"},
	}

	merged := mergeLLMProviders(builtin, user)

	assert.Len(t, merged, 2)
	assert.Equal(t, "llama3.1:8b", merged["ollama"].Model)
	assert.Equal(t, "deepseek-chat", merged["deepseek"].Model)
}
