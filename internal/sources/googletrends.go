package sources

import (
	"context"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/trendcast/internal/fetch"
	"github.com/jonathan/trendcast/internal/types"
)

// DefaultTrendsFeedURL is the daily trending-searches RSS feed; geo is
// appended as a query parameter.
const DefaultTrendsFeedURL = "https://trends.google.com/trending/rss"

// DefaultTrendsPageURL is the trending-now page used as a browser-rendered
// fallback when the feed is unavailable.
const DefaultTrendsPageURL = "https://trends.google.com/trending"

// GoogleTrendsClient collects trending search topics. The primary path is
// the public RSS feed; when that fails and browser fallback is enabled, the
// trending page is rendered headlessly and scraped instead.
type GoogleTrendsClient struct {
	FeedURL    string
	PageURL    string
	UseBrowser bool
	Verbose    bool
	Opts       *fetch.Options
}

// NewGoogleTrendsClient creates a Google Trends collector.
func NewGoogleTrendsClient(useBrowser bool) *GoogleTrendsClient {
	return &GoogleTrendsClient{
		FeedURL:    DefaultTrendsFeedURL,
		PageURL:    DefaultTrendsPageURL,
		UseBrowser: useBrowser,
		Opts:       fetch.DefaultOptions(),
	}
}

// SourceType implements Client.
func (c *GoogleTrendsClient) SourceType() types.SourceType {
	return types.SourceGoogleTrends
}

// trendsFeed mirrors the RSS feed structure, including the ht: extension
// fields Google uses for traffic estimates.
type trendsFeed struct {
	Channel struct {
		Items []struct {
			Title         string `xml:"title"`
			Link          string `xml:"link"`
			ApproxTraffic string `xml:"approx_traffic"`
			NewsItems     []struct {
				Title string `xml:"news_item_title"`
			} `xml:"news_item"`
		} `xml:"item"`
	} `xml:"channel"`
}

// Collect fetches trending topics. Recognized parameters: "geo" (ISO country
// code, default US), "limit" (int).
func (c *GoogleTrendsClient) Collect(ctx context.Context, params map[string]any) (*types.RawData, error) {
	geo := stringParam(params, "geo", "US")
	limit := intParam(params, "limit", 20)

	raw := &types.RawData{SourceType: types.SourceGoogleTrends, CollectedAt: time.Now().UTC()}

	result, err := fetch.URL(ctx, c.FeedURL+"?geo="+geo, c.Opts)
	if err == nil {
		var feed trendsFeed
		if xmlErr := xml.Unmarshal([]byte(result.Body), &feed); xmlErr == nil && len(feed.Channel.Items) > 0 {
			for i, item := range feed.Channel.Items {
				if i >= limit {
					break
				}
				var related []string
				for _, n := range item.NewsItems {
					related = append(related, n.Title)
				}
				raw.Trends = append(raw.Trends, types.TrendEntry{
					Title:          item.Title,
					URL:            item.Link,
					ApproxTraffic:  item.ApproxTraffic,
					TrafficVolume:  parseTraffic(item.ApproxTraffic),
					RelatedQueries: strings.Join(related, "; "),
				})
			}
			return raw, nil
		}
	}

	// Feed path failed; scrape the rendered trending page if allowed.
	if !c.UseBrowser {
		return nil, wrapFetchErr(types.SourceGoogleTrends, err)
	}

	html, berr := fetch.WithBrowser(ctx, c.PageURL+"?geo="+geo, 60*time.Second, c.Verbose)
	if berr != nil {
		return nil, &SourceUnavailableError{Source: types.SourceGoogleTrends, Message: "feed and browser fallback both failed", Cause: berr}
	}

	trends, perr := parseTrendingPage(html, limit)
	if perr != nil {
		return nil, &SourceUnavailableError{Source: types.SourceGoogleTrends, Message: "failed to parse trending page", Cause: perr}
	}
	raw.Trends = trends
	return raw, nil
}

// parseTrendingPage extracts trend rows from the rendered trending-now page.
func parseTrendingPage(html string, limit int) ([]types.TrendEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var trends []types.TrendEntry
	doc.Find("tr[data-row-id], div[data-term]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find("[data-term-title], .trend-title").First().Text())
		if title == "" {
			// Fall back to the first cell's text for table layouts.
			title = strings.TrimSpace(s.Find("td").First().Text())
		}
		if title == "" {
			return true
		}
		traffic := strings.TrimSpace(s.Find(".search-count, [data-search-volume]").First().Text())
		trends = append(trends, types.TrendEntry{
			Title:         title,
			ApproxTraffic: traffic,
			TrafficVolume: parseTraffic(traffic),
		})
		return len(trends) < limit
	})
	return trends, nil
}

// parseTraffic converts strings like "20,000+" or "2M+" to an integer
// estimate. Unknown formats yield 0.
func parseTraffic(s string) int {
	s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}

	multiplier := 1
	switch {
	case strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "K")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(n * float64(multiplier))
}
