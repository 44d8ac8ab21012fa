package types

import "time"

// RawData is the tagged union returned by every source collector. SourceType
// discriminates which variant slice is populated; consumers switch on it
// instead of probing map keys.
type RawData struct {
	SourceType  SourceType   `json:"source_type"`
	CollectedAt time.Time    `json:"collected_at"`
	RedditPosts []RedditPost `json:"reddit_posts,omitempty"`
	Repos       []GitHubRepo `json:"repos,omitempty"`
	Stories     []HNStory    `json:"stories,omitempty"`
	Trends      []TrendEntry `json:"trends,omitempty"`
}

// ItemCount returns the number of items in whichever variant is populated.
func (r *RawData) ItemCount() int {
	switch r.SourceType {
	case SourceReddit:
		return len(r.RedditPosts)
	case SourceGitHub:
		return len(r.Repos)
	case SourceHackerNews:
		return len(r.Stories)
	case SourceGoogleTrends:
		return len(r.Trends)
	}
	return 0
}

// RedditPost is one post from a subreddit listing.
type RedditPost struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio,omitempty"`
	SelfText    string  `json:"selftext,omitempty"`
	CreatedUTC  float64 `json:"created_utc"`
}

// GitHubRepo is one repository from a search result.
type GitHubRepo struct {
	FullName    string `json:"full_name"`
	URL         string `json:"html_url"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	OpenIssues  int    `json:"open_issues_count"`
}

// HNStory is one story from a Hacker News search.
type HNStory struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ObjectID    string `json:"object_id"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// TrendEntry is one trending search topic.
type TrendEntry struct {
	Title          string `json:"title"`
	URL            string `json:"url,omitempty"`
	ApproxTraffic  string `json:"approx_traffic,omitempty"`
	TrafficVolume  int    `json:"traffic_volume"`
	RelatedQueries string `json:"related_queries,omitempty"`
}

// AnalyzedData is the output of the analysis step: structured insights plus
// an overall summary.
type AnalyzedData struct {
	SourceType SourceType `json:"source_type"`
	Insights   []Insight  `json:"insights"`
	Summary    string     `json:"summary,omitempty"`
	AnalyzedAt time.Time  `json:"analyzed_at"`
}
