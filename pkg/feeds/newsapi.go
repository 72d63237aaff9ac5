package feeds

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const newsapiEverythingURL = "https://newsapi.org/v2/everything"

type newsapiResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
		Author string `json:"author"`
	} `json:"articles"`
}

// NewsAPIAdapter queries the /v2/everything endpoint for AI-related
// coverage, authenticated with an API key header.
type NewsAPIAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
	apiKey string
}

func NewNewsAPIAdapter(cfg *config.FeedConfig) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		apiKey: os.Getenv(cfg.CredentialEnv["api_key"]),
	}
}

func (a *NewsAPIAdapter) SourceType() string { return "newsapi" }

func (a *NewsAPIAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	q := url.Values{}
	q.Set("q", "artificial intelligence OR LLM")
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "25")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsapiEverythingURL+"?"+q.Encode(), nil)
	if err != nil {
		slog.Warn("newsapi: build request failed", "error", err)
		return nil, nil
	}
	req.Header.Set("X-Api-Key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Warn("newsapi: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var parsed newsapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		slog.Warn("newsapi: decode failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(parsed.Articles))
	for _, art := range parsed.Articles {
		if art.URL == "" {
			continue
		}
		author := art.Author
		if author == "" {
			author = art.Source.Name
		}
		raw := models.RawItem{
			SourceType: "newsapi",
			ExternalID: art.URL,
			URL:        art.URL,
			Title:      art.Title,
			Author:     author,
		}
		if t, ok := parseRFC3339(art.PublishedAt); ok {
			raw.PublishedAt = &t
		}
		items = append(items, raw)
	}
	return items, nil
}
