package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jonathan/trendcast/internal/fetch"
	"github.com/jonathan/trendcast/internal/types"
)

// DefaultHackerNewsBaseURL is the Algolia-hosted HN search API.
const DefaultHackerNewsBaseURL = "https://hn.algolia.com/api/v1"

// HackerNewsClient collects stories via the Algolia search API.
type HackerNewsClient struct {
	BaseURL string
	Opts    *fetch.Options
}

// NewHackerNewsClient creates a Hacker News collector.
func NewHackerNewsClient() *HackerNewsClient {
	return &HackerNewsClient{BaseURL: DefaultHackerNewsBaseURL, Opts: fetch.DefaultOptions()}
}

// SourceType implements Client.
func (c *HackerNewsClient) SourceType() types.SourceType {
	return types.SourceHackerNews
}

// hnSearchResponse mirrors the Algolia search response.
type hnSearchResponse struct {
	Hits []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		ObjectID    string `json:"objectID"`
		Author      string `json:"author"`
		Points      int    `json:"points"`
		NumComments int    `json:"num_comments"`
		CreatedAt   string `json:"created_at"`
	} `json:"hits"`
}

// Collect searches front-page-quality stories for each configured query.
// Recognized parameters: "queries" ([]string), "min_points" (int, default
// 50), "limit" (int). With no queries it returns the current front page.
func (c *HackerNewsClient) Collect(ctx context.Context, params map[string]any) (*types.RawData, error) {
	queries := stringSliceParam(params, "queries")
	minPoints := intParam(params, "min_points", 50)
	limit := intParam(params, "limit", 30)

	if len(queries) == 0 {
		queries = []string{""}
	}

	raw := &types.RawData{SourceType: types.SourceHackerNews, CollectedAt: time.Now().UTC()}
	seen := make(map[string]bool)

	for _, q := range queries {
		searchURL := fmt.Sprintf("%s/search?query=%s&tags=story&numericFilters=points>%d&hitsPerPage=%d",
			c.BaseURL, url.QueryEscape(q), minPoints, limit)

		var resp hnSearchResponse
		if err := fetch.JSON(ctx, searchURL, c.Opts, &resp); err != nil {
			return nil, wrapFetchErr(types.SourceHackerNews, err)
		}

		for _, hit := range resp.Hits {
			if seen[hit.ObjectID] {
				continue
			}
			seen[hit.ObjectID] = true

			storyURL := hit.URL
			if storyURL == "" {
				storyURL = "https://news.ycombinator.com/item?id=" + hit.ObjectID
			}
			raw.Stories = append(raw.Stories, types.HNStory{
				Title:       hit.Title,
				URL:         storyURL,
				ObjectID:    hit.ObjectID,
				Author:      hit.Author,
				Points:      hit.Points,
				NumComments: hit.NumComments,
				CreatedAt:   hit.CreatedAt,
			})
		}
	}

	return raw, nil
}
