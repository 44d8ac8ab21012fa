package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trendcast/internal/types"
)

func TestRedditCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/top.json", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "week", r.URL.Query().Get("t"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"children": [
			{"data": {"title": "Go 1.25", "url": "https://example.com/go", "subreddit": "golang", "score": 500, "num_comments": 120, "upvote_ratio": 0.97}},
			{"data": {"title": "Self post", "permalink": "/r/golang/comments/abc", "subreddit": "golang", "score": 40, "num_comments": 10, "selftext": "body"}}
		]}}`))
	}))
	defer srv.Close()

	c := NewRedditClient()
	c.BaseURL = srv.URL

	raw, err := c.Collect(context.Background(), map[string]any{
		"subreddits": []any{"golang"},
		"limit":      float64(10),
		"time_range": "week",
	})
	require.NoError(t, err)

	assert.Equal(t, types.SourceReddit, raw.SourceType)
	require.Len(t, raw.RedditPosts, 2)
	assert.Equal(t, "Go 1.25", raw.RedditPosts[0].Title)
	assert.Equal(t, 500, raw.RedditPosts[0].Score)
	// Self posts get a permalink-derived URL.
	assert.Equal(t, srv.URL+"/r/golang/comments/abc", raw.RedditPosts[1].URL)
}

func TestRedditCollect_RequiresSubreddits(t *testing.T) {
	c := NewRedditClient()
	_, err := c.Collect(context.Background(), nil)
	var unavailable *SourceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, types.SourceReddit, unavailable.Source)
}

func TestHackerNewsCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": [
			{"title": "Show HN: thing", "url": "https://example.com/t", "objectID": "1", "points": 300, "num_comments": 80},
			{"title": "Ask HN: question", "objectID": "2", "points": 90, "num_comments": 200},
			{"title": "Show HN: thing", "url": "https://example.com/t", "objectID": "1", "points": 300, "num_comments": 80}
		]}`))
	}))
	defer srv.Close()

	c := NewHackerNewsClient()
	c.BaseURL = srv.URL

	raw, err := c.Collect(context.Background(), map[string]any{"queries": []any{"go", "go"}})
	require.NoError(t, err)

	// Duplicate object IDs across queries collapse to one story.
	require.Len(t, raw.Stories, 2)
	assert.Equal(t, "Show HN: thing", raw.Stories[0].Title)
	// Link-less stories point at the HN discussion.
	assert.Equal(t, "https://news.ycombinator.com/item?id=2", raw.Stories[1].URL)
}

func TestGitHubCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		q := r.URL.Query().Get("q")
		assert.Contains(t, q, "topic:cli")
		assert.Contains(t, q, "language:go")
		assert.Contains(t, q, "stars:>=100")
		assert.Contains(t, q, "created:>")
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"full_name": "acme/tool", "html_url": "https://github.com/acme/tool", "description": "a tool", "language": "Go", "stargazers_count": 1200, "forks_count": 90}
		]}`))
	}))
	defer srv.Close()

	c := NewGitHubClient("tok")
	c.BaseURL = srv.URL

	raw, err := c.Collect(context.Background(), map[string]any{
		"topics":    []any{"cli"},
		"language":  "go",
		"min_stars": float64(100),
	})
	require.NoError(t, err)

	require.Len(t, raw.Repos, 1)
	assert.Equal(t, "acme/tool", raw.Repos[0].FullName)
	assert.Equal(t, 1200, raw.Repos[0].Stars)
}

func TestGoogleTrendsCollect_Feed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GB", r.URL.Query().Get("geo"))
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0"?>
<rss><channel>
  <item>
    <title>solar eclipse</title>
    <link>https://trends.example/eclipse</link>
    <approx_traffic>2M+</approx_traffic>
    <news_item><news_item_title>Eclipse visible today</news_item_title></news_item>
  </item>
  <item>
    <title>election results</title>
    <link>https://trends.example/election</link>
    <approx_traffic>500K+</approx_traffic>
  </item>
</channel></rss>`))
	}))
	defer srv.Close()

	c := NewGoogleTrendsClient(false)
	c.FeedURL = srv.URL

	raw, err := c.Collect(context.Background(), map[string]any{"geo": "GB", "limit": float64(1)})
	require.NoError(t, err)

	require.Len(t, raw.Trends, 1)
	assert.Equal(t, "solar eclipse", raw.Trends[0].Title)
	assert.Equal(t, 2_000_000, raw.Trends[0].TrafficVolume)
	assert.Equal(t, "Eclipse visible today", raw.Trends[0].RelatedQueries)
}

func TestParseTraffic(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"20,000+", 20000},
		{"2M+", 2_000_000},
		{"500K+", 500_000},
		{"1.5M", 1_500_000},
		{"", 0},
		{"lots", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTraffic(tt.in), "parseTraffic(%q)", tt.in)
	}
}

func TestParseTrendingPage(t *testing.T) {
	html := `<table>
		<tr data-row-id="1"><td>ai news</td><td class="search-count">100K+</td></tr>
		<tr data-row-id="2"><td>sports final</td><td class="search-count">50K+</td></tr>
	</table>`

	trends, err := parseTrendingPage(html, 1)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "ai news", trends[0].Title)
	assert.Equal(t, 100_000, trends[0].TrafficVolume)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(NewRedditClient(), NewHackerNewsClient())

	c, err := registry.For(types.SourceReddit)
	require.NoError(t, err)
	assert.Equal(t, types.SourceReddit, c.SourceType())

	_, err = registry.For(types.SourceGitHub)
	assert.Error(t, err)
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"list_any":    []any{"a", 1, "b"},
		"list_string": []string{"x"},
		"single":      "y",
		"num":         float64(7),
		"exact":       3,
	}

	assert.Equal(t, []string{"a", "b"}, stringSliceParam(params, "list_any"))
	assert.Equal(t, []string{"x"}, stringSliceParam(params, "list_string"))
	assert.Equal(t, []string{"y"}, stringSliceParam(params, "single"))
	assert.Nil(t, stringSliceParam(nil, "anything"))

	assert.Equal(t, "y", stringParam(params, "single", "def"))
	assert.Equal(t, "def", stringParam(params, "missing", "def"))

	assert.Equal(t, 7, intParam(params, "num", 0))
	assert.Equal(t, 3, intParam(params, "exact", 0))
	assert.Equal(t, 9, intParam(params, "missing", 9))
}
