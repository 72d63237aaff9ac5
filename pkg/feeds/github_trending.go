package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const githubTrendingURL = "https://github.com/trending?since=daily"

// GitHubTrendingAdapter scrapes the trending page; GitHub has no public
// trending API.
type GitHubTrendingAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
}

func NewGitHubTrendingAdapter(cfg *config.FeedConfig) *GitHubTrendingAdapter {
	return &GitHubTrendingAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.FetchTimeout}}
}

func (a *GitHubTrendingAdapter) SourceType() string { return "github_trending" }

func (a *GitHubTrendingAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubTrendingURL, nil)
	if err != nil {
		slog.Warn("github_trending: build request failed", "error", err)
		return nil, nil
	}
	req.Header.Set("User-Agent", "ai-roundtable-observatory/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		slog.Warn("github_trending: fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		slog.Warn("github_trending: parse failed", "error", err)
		return nil, nil
	}

	var items []models.RawItem
	doc.Find("article.Box-row").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("h2 a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		repo := strings.TrimPrefix(strings.TrimSpace(href), "/")
		if repo == "" {
			return
		}
		description := strings.TrimSpace(s.Find("p").First().Text())
		starsText := strings.TrimSpace(s.Find("a.Link--muted").First().Text())

		items = append(items, models.RawItem{
			SourceType: "github_trending",
			ExternalID: repo,
			URL:        "https://github.com/" + repo,
			Title:      fmt.Sprintf("%s — %s", repo, description),
			Tags:       []string{starsText},
		})
	})

	return items, nil
}
