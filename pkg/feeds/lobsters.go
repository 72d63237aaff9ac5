package feeds

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const lobstersHottestURL = "https://lobste.rs/hottest.json"

type lobstersStory struct {
	ShortID       string   `json:"short_id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Score         int      `json:"score"`
	CreatedAt     string   `json:"created_at"`
	SubmitterUser string   `json:"submitter_user"`
	Tags          []string `json:"tags"`
}

// LobstersAdapter reads lobste.rs' public .json listing endpoints.
type LobstersAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
}

func NewLobstersAdapter(cfg *config.FeedConfig) *LobstersAdapter {
	return &LobstersAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.FetchTimeout}}
}

func (a *LobstersAdapter) SourceType() string { return "lobsters" }

func (a *LobstersAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lobstersHottestURL, nil)
	if err != nil {
		slog.Warn("lobsters: build request failed", "error", err)
		return nil, nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Warn("lobsters: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var stories []lobstersStory
	if err := json.NewDecoder(resp.Body).Decode(&stories); err != nil {
		slog.Warn("lobsters: decode failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(stories))
	for _, s := range stories {
		score := float64(s.Score)
		raw := models.RawItem{
			SourceType: "lobsters",
			ExternalID: s.ShortID,
			URL:        s.URL,
			Title:      s.Title,
			Author:     s.SubmitterUser,
			Score:      &score,
			Tags:       s.Tags,
		}
		if t, ok := parseRFC3339(s.CreatedAt); ok {
			raw.PublishedAt = &t
		}
		items = append(items, raw)
	}
	return items, nil
}
