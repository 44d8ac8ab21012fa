package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/trendcast/internal/fetch"
	"github.com/jonathan/trendcast/internal/types"
)

// DefaultGitHubBaseURL is the GitHub REST API root.
const DefaultGitHubBaseURL = "https://api.github.com"

// GitHubClient collects trending repositories via the search API, ordered by
// stars over a recent creation window.
type GitHubClient struct {
	BaseURL string
	Token   string // optional; raises the unauthenticated rate limit
	Opts    *fetch.Options
}

// NewGitHubClient creates a GitHub collector. token may be empty.
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{BaseURL: DefaultGitHubBaseURL, Token: token, Opts: fetch.DefaultOptions()}
}

// SourceType implements Client.
func (c *GitHubClient) SourceType() types.SourceType {
	return types.SourceGitHub
}

// githubSearchResponse mirrors the repository search response.
type githubSearchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		Language    string `json:"language"`
		Stars       int    `json:"stargazers_count"`
		Forks       int    `json:"forks_count"`
		OpenIssues  int    `json:"open_issues_count"`
	} `json:"items"`
}

// Collect searches recently created repositories matching the configured
// topics. Recognized parameters: "topics" ([]string), "language" (string),
// "min_stars" (int), "created_within_days" (creation window, default 7),
// "limit" (int).
func (c *GitHubClient) Collect(ctx context.Context, params map[string]any) (*types.RawData, error) {
	topics := stringSliceParam(params, "topics")
	language := stringParam(params, "language", "")
	minStars := intParam(params, "min_stars", 0)
	days := intParam(params, "created_within_days", 7)
	limit := intParam(params, "limit", 25)

	var qualifiers []string
	for _, t := range topics {
		qualifiers = append(qualifiers, "topic:"+t)
	}
	if language != "" {
		qualifiers = append(qualifiers, "language:"+language)
	}
	if minStars > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf("stars:>=%d", minStars))
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	qualifiers = append(qualifiers, "created:>"+since)

	searchURL := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		c.BaseURL, url.QueryEscape(strings.Join(qualifiers, " ")), limit)

	opts := c.Opts
	if c.Token != "" {
		opts = &fetch.Options{
			Timeout:   c.Opts.Timeout,
			UserAgent: c.Opts.UserAgent,
			Headers:   map[string]string{"Authorization": "Bearer " + c.Token},
		}
	}

	var resp githubSearchResponse
	if err := fetch.JSON(ctx, searchURL, opts, &resp); err != nil {
		return nil, wrapFetchErr(types.SourceGitHub, err)
	}

	raw := &types.RawData{SourceType: types.SourceGitHub, CollectedAt: time.Now().UTC()}
	for _, item := range resp.Items {
		raw.Repos = append(raw.Repos, types.GitHubRepo{
			FullName:    item.FullName,
			URL:         item.HTMLURL,
			Description: item.Description,
			Language:    item.Language,
			Stars:       item.Stars,
			Forks:       item.Forks,
			OpenIssues:  item.OpenIssues,
		})
	}
	return raw, nil
}
