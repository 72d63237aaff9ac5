package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
)

const (
	hnTopStoriesURL = "https://hacker-news.firebaseio.com/v0/topstories.json"
	hnItemURLFormat = "https://hacker-news.firebaseio.com/v0/item/%d.json"
	hnFanOut        = 10
)

type hnItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	By    string `json:"by"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

// HackerNewsAdapter fetches top stories via the public Firebase JSON API.
type HackerNewsAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
}

func NewHackerNewsAdapter(cfg *config.FeedConfig) *HackerNewsAdapter {
	return &HackerNewsAdapter{cfg: cfg, client: &http.Client{Timeout: cfg.FetchTimeout}}
}

func (a *HackerNewsAdapter) SourceType() string { return "hackernews" }

func (a *HackerNewsAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	ids, err := a.fetchIDs(ctx)
	if err != nil {
		slog.Warn("hackernews: failed to list top stories", "error", err)
		return nil, nil
	}
	if len(ids) > 30 {
		ids = ids[:30]
	}

	items := make([]models.RawItem, 0, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, hnFanOut)

	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(id int) {
			defer wg.Done()
			defer func() { <-sem }()

			item, err := a.fetchItem(ctx, id)
			if err != nil || item == nil || item.Type != "story" {
				return
			}
			mu.Lock()
			items = append(items, toRawItem(*item))
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return items, nil
}

func (a *HackerNewsAdapter) fetchIDs(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hnTopStoriesURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (a *HackerNewsAdapter) fetchItem(ctx context.Context, id int) (*hnItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(hnItemURLFormat, id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var item hnItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

func toRawItem(item hnItem) models.RawItem {
	score := float64(item.Score)
	url := item.URL
	if url == "" {
		url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
	}
	raw := models.RawItem{
		SourceType: "hackernews",
		ExternalID: fmt.Sprintf("%d", item.ID),
		URL:        url,
		Title:      item.Title,
		Author:     item.By,
		Score:      &score,
	}
	if item.Time > 0 {
		t := unixToTime(item.Time)
		raw.PublishedAt = &t
	}
	return raw
}
