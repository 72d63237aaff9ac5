package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const llmLeaderboardURL = "https://huggingface.co/api/spaces/lmsys/chatbot-arena-leaderboard/leaderboard"

// leaderboardEntry models the leaderboard source as a generic scored-items
// feed: a rank, a model name, and a numeric score. Leaderboard providers
// vary their JSON shape; this adapter treats whatever it receives the same
// way once decoded to this shape.
type leaderboardEntry struct {
	Rank  int     `json:"rank"`
	Model string  `json:"model"`
	Score float64 `json:"score"`
	Org   string  `json:"organization"`
}

// LLMLeaderboardAdapter reads a ranked model leaderboard as a generic
// scored-items feed; each entry becomes one RawItem ranked by its position.
type LLMLeaderboardAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
}

func NewLLMLeaderboardAdapter(cfg *config.FeedConfig) *LLMLeaderboardAdapter {
	return &LLMLeaderboardAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.FetchTimeout}}
}

func (a *LLMLeaderboardAdapter) SourceType() string { return "llm_leaderboard" }

func (a *LLMLeaderboardAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, llmLeaderboardURL, nil)
	if err != nil {
		slog.Warn("llm_leaderboard: build request failed", "error", err)
		return nil, nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Warn("llm_leaderboard: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var entries []leaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		slog.Warn("llm_leaderboard: decode failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(entries))
	for _, e := range entries {
		score := e.Score
		items = append(items, models.RawItem{
			SourceType: "llm_leaderboard",
			ExternalID: fmt.Sprintf("%s-%d", e.Model, e.Rank),
			URL:        "https://huggingface.co/" + e.Model,
			Title:      fmt.Sprintf("#%d %s (%s)", e.Rank, e.Model, e.Org),
			Author:     e.Org,
			Score:      &score,
		})
	}
	return items, nil
}
