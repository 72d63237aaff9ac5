package feeds

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/mmcdole/gofeed"
)

const arxivFeedURL = "http://export.arxiv.org/rss/cs.AI"

// ArxivAdapter reads the cs.AI Atom/RSS feed via gofeed.
type ArxivAdapter struct {
	cfg    *config.FeedConfig
	client *http.Client
	parser *gofeed.Parser
}

func NewArxivAdapter(cfg *config.FeedConfig) *ArxivAdapter {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	parser := gofeed.NewParser()
	parser.Client = client
	return &ArxivAdapter{cfg: cfg, client: client, parser: parser}
}

func (a *ArxivAdapter) SourceType() string { return "arxiv" }

func (a *ArxivAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	feed, err := a.parser.ParseURLWithContext(arxivFeedURL, ctx)
	if err != nil {
		slog.Warn("arxiv: fetch failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		var author string
		if len(entry.Authors) > 0 {
			author = entry.Authors[0].Name
		}
		raw := models.RawItem{
			SourceType: "arxiv",
			ExternalID: entry.GUID,
			URL:        entry.Link,
			Title:      entry.Title,
			Author:     author,
		}
		if entry.PublishedParsed != nil {
			raw.PublishedAt = entry.PublishedParsed
		}
		items = append(items, raw)
	}
	return items, nil
}
