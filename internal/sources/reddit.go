package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jonathan/trendcast/internal/fetch"
	"github.com/jonathan/trendcast/internal/types"
)

// DefaultRedditBaseURL is the public Reddit JSON listing endpoint.
const DefaultRedditBaseURL = "https://www.reddit.com"

// RedditClient collects top posts from a list of subreddits via the public
// JSON listing API (no OAuth needed for read-only listings).
type RedditClient struct {
	BaseURL string
	Opts    *fetch.Options
}

// NewRedditClient creates a Reddit collector with default options.
func NewRedditClient() *RedditClient {
	return &RedditClient{BaseURL: DefaultRedditBaseURL, Opts: fetch.DefaultOptions()}
}

// SourceType implements Client.
func (c *RedditClient) SourceType() types.SourceType {
	return types.SourceReddit
}

// redditListing mirrors the relevant parts of Reddit's listing response.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				URL         string  `json:"url"`
				Permalink   string  `json:"permalink"`
				Subreddit   string  `json:"subreddit"`
				Author      string  `json:"author"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				UpvoteRatio float64 `json:"upvote_ratio"`
				SelfText    string  `json:"selftext"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Collect fetches the top daily posts for each configured subreddit.
// Recognized parameters: "subreddits" ([]string, required), "limit" (int),
// "time_range" (hour/day/week/month/year/all).
func (c *RedditClient) Collect(ctx context.Context, params map[string]any) (*types.RawData, error) {
	subreddits := stringSliceParam(params, "subreddits")
	if len(subreddits) == 0 {
		return nil, &SourceUnavailableError{Source: types.SourceReddit, Message: "no subreddits configured"}
	}
	limit := intParam(params, "limit", 25)
	timeRange := stringParam(params, "time_range", "day")

	raw := &types.RawData{SourceType: types.SourceReddit, CollectedAt: time.Now().UTC()}
	for _, sub := range subreddits {
		listingURL := fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=%s",
			c.BaseURL, url.PathEscape(sub), limit, url.QueryEscape(timeRange))

		var listing redditListing
		if err := fetch.JSON(ctx, listingURL, c.Opts, &listing); err != nil {
			return nil, wrapFetchErr(types.SourceReddit, err)
		}

		for _, child := range listing.Data.Children {
			d := child.Data
			postURL := d.URL
			if postURL == "" && d.Permalink != "" {
				postURL = c.BaseURL + d.Permalink
			}
			raw.RedditPosts = append(raw.RedditPosts, types.RedditPost{
				Title:       d.Title,
				URL:         postURL,
				Subreddit:   d.Subreddit,
				Author:      d.Author,
				Score:       d.Score,
				NumComments: d.NumComments,
				UpvoteRatio: d.UpvoteRatio,
				SelfText:    d.SelfText,
				CreatedUTC:  d.CreatedUTC,
			})
		}
	}

	return raw, nil
}
