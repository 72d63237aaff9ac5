package feeds

import (
	"context"
	"log/slog"
	"os"

	"github.com/ai-roundtable/observatory/pkg/config"
	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/shurcooL/graphql"
	"golang.org/x/oauth2/clientcredentials"
)

const producthuntGraphQLURL = "https://api.producthunt.com/v2/api/graphql"

// producthuntPostsQuery mirrors the subset of ProductHunt's GraphQL schema
// this adapter reads: today's posts ordered by vote count.
type producthuntPostsQuery struct {
	Posts struct {
		Edges []struct {
			Node struct {
				ID         graphql.String
				Name       graphql.String
				Tagline    graphql.String
				URL        graphql.String
				VotesCount graphql.Int
				CreatedAt  graphql.String
			}
		}
	} `graphql:"posts(order: VOTES, first: 25)"`
}

// ProductHuntAdapter authenticates with OAuth2 client-credentials and reads
// today's top posts over GraphQL.
type ProductHuntAdapter struct {
	cfg    *config.FeedConfig
	client *graphql.Client
}

func NewProductHuntAdapter(cfg *config.FeedConfig) *ProductHuntAdapter {
	tokenCfg := clientcredentials.Config{
		ClientID:     os.Getenv(cfg.CredentialEnv["client_id"]),
		ClientSecret: os.Getenv(cfg.CredentialEnv["client_secret"]),
		TokenURL:     "https://api.producthunt.com/v2/oauth/token",
	}
	httpClient := tokenCfg.Client(context.Background())
	return &ProductHuntAdapter{
		cfg:    cfg,
		client: graphql.NewClient(producthuntGraphQLURL, httpClient),
	}
}

func (a *ProductHuntAdapter) SourceType() string { return "producthunt" }

func (a *ProductHuntAdapter) Fetch(ctx context.Context) ([]models.RawItem, error) {
	var query producthuntPostsQuery
	if err := a.client.Query(ctx, &query, nil); err != nil {
		slog.Warn("producthunt: query failed", "error", err)
		return nil, nil
	}

	items := make([]models.RawItem, 0, len(query.Posts.Edges))
	for _, edge := range query.Posts.Edges {
		n := edge.Node
		score := float64(n.VotesCount)
		raw := models.RawItem{
			SourceType: "producthunt",
			ExternalID: string(n.ID),
			URL:        string(n.URL),
			Title:      string(n.Name) + " — " + string(n.Tagline),
			Score:      &score,
		}
		if t, ok := parseRFC3339(string(n.CreatedAt)); ok {
			raw.PublishedAt = &t
		}
		items = append(items, raw)
	}
	return items, nil
}
