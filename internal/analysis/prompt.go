package analysis

import (
	"fmt"
	"strings"

	"github.com/jonathan/trendcast/internal/types"
)

// maxItemsInPrompt bounds how much raw data is rendered into a single prompt.
const maxItemsInPrompt = 50

// buildPrompt renders raw data into an analysis prompt. Each source variant
// has its own rendering so the model sees the fields that matter for it.
func buildPrompt(raw *types.RawData, cfg *types.Configuration) string {
	var b strings.Builder

	b.WriteString("You are a trend analyst for short-form video content.\n")
	b.WriteString("Analyze the following items and extract the most promising content opportunities.\n\n")

	if cfg != nil {
		if instruction, ok := cfg.Parameters["instruction"].(string); ok && instruction != "" {
			b.WriteString("Focus: " + instruction + "\n\n")
		} else if cfg.Description != "" {
			b.WriteString("Focus: " + cfg.Description + "\n\n")
		}
	}

	switch raw.SourceType {
	case types.SourceReddit:
		b.WriteString("Source: Reddit top posts\n\n")
		for i, p := range raw.RedditPosts {
			if i >= maxItemsInPrompt {
				break
			}
			fmt.Fprintf(&b, "- [r/%s] %s (score %d, %d comments) %s\n", p.Subreddit, p.Title, p.Score, p.NumComments, p.URL)
		}
	case types.SourceGitHub:
		b.WriteString("Source: trending GitHub repositories\n\n")
		for i, r := range raw.Repos {
			if i >= maxItemsInPrompt {
				break
			}
			fmt.Fprintf(&b, "- %s (%s, %d stars): %s %s\n", r.FullName, r.Language, r.Stars, r.Description, r.URL)
		}
	case types.SourceHackerNews:
		b.WriteString("Source: Hacker News stories\n\n")
		for i, s := range raw.Stories {
			if i >= maxItemsInPrompt {
				break
			}
			fmt.Fprintf(&b, "- %s (%d points, %d comments) %s\n", s.Title, s.Points, s.NumComments, s.URL)
		}
	case types.SourceGoogleTrends:
		b.WriteString("Source: Google Trends trending searches\n\n")
		for i, t := range raw.Trends {
			if i >= maxItemsInPrompt {
				break
			}
			fmt.Fprintf(&b, "- %s (traffic %s)", t.Title, t.ApproxTraffic)
			if t.RelatedQueries != "" {
				fmt.Fprintf(&b, " related: %s", t.RelatedQueries)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(`
Return JSON with this exact shape:
{
  "insights": [
    {
      "title": "short headline",
      "url": "link to the underlying item",
      "topic": "one or two word topic label",
      "summary": "why this is worth covering, one or two sentences",
      "engagement": 0.0
    }
  ],
  "summary": "two sentence overview of what is trending and why"
}

Score "engagement" from 0 to 100 relative to the other items shown.
Include at most 20 insights, strongest first. Do not invent items.`)

	return b.String()
}
