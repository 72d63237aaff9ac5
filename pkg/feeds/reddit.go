package feeds

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
	"golang.org/x/oauth2/clientcredentials"
)

const redditTopURL = "https://oauth.reddit.com/r/artificial+MachineLearning+LocalLLaMA/top?limit=25&t=day"

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID        string  `json:"id"`
				Title     string  `json:"title"`
				URL       string  `json:"url"`
				Author    string  `json:"author"`
				Score     int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
				LinkFlair string  `json:"link_flair_text"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditAdapter authenticates with OAuth2 client-credentials and reads a
// fixed set of AI-relevant subreddits. Reddit's API terms require a
// descriptive, non-default User-Agent on every request.
type RedditAdapter struct {
	cfg        *config.FeedConfig
	httpClient *http.Client
}

func NewRedditAdapter(cfg *config.FeedConfig) *RedditAdapter {
	tokenCfg := clientcredentials.Config{
		ClientID:     os.Getenv(cfg.CredentialEnv["client_id"]),
		ClientSecret: os.Getenv(cfg.CredentialEnv["client_secret"]),
		TokenURL:     "https://www.reddit.com/api/v1/access_token",
	}
	return &RedditAdapter{
		cfg:        cfg,
		httpClient: tokenCfg.Client(context.Background()),
	}
}

func (a *RedditAdapter) SourceType() string { return "reddit" }

func (a *RedditAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, redditTopURL, nil)
	if err != nil {
		slog.Warn("reddit: build request failed", "error", err)
		return nil, nil
	}
	req.Header.Set("User-Agent", "ai-roundtable-observatory/1.0 (by /u/ai-roundtable-bot)")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		slog.Warn("reddit: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		slog.Warn("reddit: decode failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		d := c.Data
		score := float64(d.Score)
		raw := models.RawItem{
			SourceType: "reddit",
			ExternalID: d.ID,
			URL:        d.URL,
			Title:      d.Title,
			Author:     d.Author,
			Score:      &score,
		}
		if d.LinkFlair != "" {
			raw.Tags = []string{d.LinkFlair}
		}
		if d.CreatedUTC > 0 {
			t := unixToTime(int64(d.CreatedUTC))
			raw.PublishedAt = &t
		}
		items = append(items, raw)
	}
	return items, nil
}
