package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// YouTubeAdapter queries the Data API v3 search.list endpoint for recent AI
// videos, authenticated with a plain API key.
type YouTubeAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
	apiKey string
}

func NewYouTubeAdapter(cfg *config.FeedConfig) *YouTubeAdapter {
	return &YouTubeAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		apiKey: os.Getenv(cfg.CredentialEnv["api_key"]),
	}
}

func (a *YouTubeAdapter) SourceType() string { return "youtube" }

func (a *YouTubeAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", "artificial intelligence OR LLM OR machine learning")
	q.Set("type", "video")
	q.Set("order", "date")
	q.Set("maxResults", "25")
	q.Set("key", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeSearchURL+"?"+q.Encode(), nil)
	if err != nil {
		slog.Warn("youtube: build request failed", "error", err)
		return nil, nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Warn("youtube: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var parsed youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		slog.Warn("youtube: decode failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.ID.VideoID == "" {
			continue
		}
		raw := models.RawItem{
			SourceType: "youtube",
			ExternalID: it.ID.VideoID,
			URL:        fmt.Sprintf("https://www.youtube.com/watch?v=%s", it.ID.VideoID),
			Title:      it.Snippet.Title,
			Author:     it.Snippet.ChannelTitle,
		}
		if t, ok := parseRFC3339(it.Snippet.PublishedAt); ok {
			raw.PublishedAt = &t
		}
		items = append(items, raw)
	}
	return items, nil
}
