package feeds

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const huggingfaceTrendingURL = "https://huggingface.co/api/models?sort=trendingScore&direction=-1&limit=25"

type huggingfaceModel struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	Downloads int      `json:"downloads"`
	Likes     int      `json:"likes"`
	CreatedAt string   `json:"createdAt"`
	Tags      []string `json:"tags"`
}

// HuggingFaceAdapter reads the public models-listing REST endpoint, sorted
// by trending score.
type HuggingFaceAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
}

func NewHuggingFaceAdapter(cfg *config.FeedConfig) *HuggingFaceAdapter {
	return &HuggingFaceAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.FetchTimeout}}
}

func (a *HuggingFaceAdapter) SourceType() string { return "huggingface" }

func (a *HuggingFaceAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, huggingfaceTrendingURL, nil)
	if err != nil {
		slog.Warn("huggingface: build request failed", "error", err)
		return nil, nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Warn("huggingface: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var models_ []huggingfaceModel
	if err := json.NewDecoder(resp.Body).Decode(&models_); err != nil {
		slog.Warn("huggingface: decode failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(models_))
	for _, m := range models_ {
		score := float64(m.Likes)
		raw := models.RawItem{
			SourceType: "huggingface",
			ExternalID: m.ID,
			URL:        "https://huggingface.co/" + m.ID,
			Title:      m.ID,
			Author:     m.Author,
			Score:      &score,
			Tags:       m.Tags,
		}
		if t, ok := parseRFC3339(m.CreatedAt); ok {
			raw.PublishedAt = &t
		}
		items = append(items, raw)
	}
	return items, nil
}
