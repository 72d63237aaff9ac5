package feeds

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const devtoArticlesURL = "https://dev.to/api/articles?top=1"

type devtoArticle struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	PublishedAt  string   `json:"published_at"`
	PositiveRxns int      `json:"positive_reactions_count"`
	Tags         []string `json:"tag_list"`
	User         struct {
		Name string `json:"name"`
	} `json:"user"`
}

// DevToAdapter reads dev.to's public REST articles endpoint.
type DevToAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
}

func NewDevToAdapter(cfg *config.FeedConfig) *DevToAdapter {
	return &DevToAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.FetchTimeout}}
}

func (a *DevToAdapter) SourceType() string { return "devto" }

func (a *DevToAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, devtoArticlesURL, nil)
	if err != nil {
		slog.Warn("devto: build request failed", "error", err)
		return nil, nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Warn("devto: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var articles []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		slog.Warn("devto: decode failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(articles))
	for _, art := range articles {
		score := float64(art.PositiveRxns)
		raw := models.RawItem{
			SourceType: "devto",
			ExternalID: itoa(art.ID),
			URL:        art.URL,
			Title:      art.Title,
			Author:     art.User.Name,
			Score:      &score,
			Tags:       art.Tags,
		}
		if t, ok := parseRFC3339(art.PublishedAt); ok {
			raw.PublishedAt = &t
		}
		items = append(items, raw)
	}
	return items, nil
}
