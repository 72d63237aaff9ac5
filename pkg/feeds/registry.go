package feeds

import "github.com/ai-roundtable/observatory/pkg/config"

// NewRegistry builds one adapter per enabled source in cfg, keyed by
// SourceType. Disabled sources are simply absent rather than wired with a
// no-op — the dispatcher only ever sees adapters it should call.
func NewRegistry(cfg *config.FeedsConfig) map[string]Adapter {
	adapters := map[string]Adapter{
		"hackernews":      NewHackerNewsAdapter(cfg.Sources["hackernews"]),
		"github_trending": NewGitHubTrendingAdapter(cfg.Sources["github_trending"]),
		"arxiv":           NewArxivAdapter(cfg.Sources["arxiv"]),
		"reddit":          NewRedditAdapter(cfg.Sources["reddit"]),
		"devto":           NewDevToAdapter(cfg.Sources["devto"]),
		"lobsters":        NewLobstersAdapter(cfg.Sources["lobsters"]),
		"huggingface":     NewHuggingFaceAdapter(cfg.Sources["huggingface"]),
		"llm_leaderboard": NewLLMLeaderboardAdapter(cfg.Sources["llm_leaderboard"]),
		"youtube":         NewYouTubeAdapter(cfg.Sources["youtube"]),
		"producthunt":     NewProductHuntAdapter(cfg.Sources["producthunt"]),
		"newsapi":         NewNewsAPIAdapter(cfg.Sources["newsapi"]),
	}

	enabled := make(map[string]Adapter, len(adapters))
	for name, adapter := range adapters {
		source := cfg.Sources[name]
		if source != nil && !source.Enabled {
			continue
		}
		enabled[name] = adapter
	}
	return enabled
}
