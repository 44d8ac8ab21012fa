package workflow

import (
	"context"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jonathan/trendcast/internal/sources"
	"github.com/jonathan/trendcast/internal/types"
)

// maxInsights caps how many insights survive the research stage.
const maxInsights = 20

// researchConcurrency bounds how many platform/topic pairs are collected at
// once, to stay inside upstream rate limits.
const researchConcurrency = 3

// Researcher fans research out across platform/topic pairs and merges the
// results into a ranked insight list.
type Researcher struct {
	registry *sources.Registry
}

// NewResearcher creates a researcher over the given source registry.
func NewResearcher(registry *sources.Registry) *Researcher {
	return &Researcher{registry: registry}
}

// Research collects every platform x topic pair concurrently. Individual pair
// failures are logged and skipped; only a fully empty result is an error.
// Results are deduplicated by URL, ranked by engagement and truncated.
func (r *Researcher) Research(ctx context.Context, cfg types.WorkflowConfig) ([]types.Insight, error) {
	topics := cfg.ResearchTopics
	if len(topics) == 0 {
		topics = []string{""}
	}
	platforms := cfg.PlatformsToResearch
	if len(platforms) == 0 {
		platforms = types.ResearchSourceTypes()
	}

	sem := semaphore.NewWeighted(researchConcurrency)
	var mu sync.Mutex
	var all []types.Insight
	var wg sync.WaitGroup

	for _, platform := range platforms {
		client, err := r.registry.For(platform)
		if err != nil {
			log.Printf("research: skipping unknown platform %s", platform)
			continue
		}
		for _, topic := range topics {
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil, err
			}
			wg.Add(1)
			go func(client sources.Client, platform types.SourceType, topic string) {
				defer wg.Done()
				defer sem.Release(1)

				raw, err := client.Collect(ctx, topicParams(platform, topic))
				if err != nil {
					log.Printf("research: %s/%q failed: %v", platform, topic, err)
					return
				}
				insights := insightsFromRaw(raw, topic)

				mu.Lock()
				all = append(all, insights...)
				mu.Unlock()
			}(client, platform, topic)
		}
	}
	wg.Wait()

	merged := rankInsights(all)
	if len(merged) == 0 {
		return nil, &NoInsightsFoundError{Topics: cfg.ResearchTopics}
	}
	return merged, nil
}

// topicParams builds collector parameters for one platform/topic pair. Each
// collector names its query parameter differently.
func topicParams(platform types.SourceType, topic string) map[string]any {
	if topic == "" {
		return nil
	}
	switch platform {
	case types.SourceReddit:
		return map[string]any{"subreddits": []string{topic}}
	case types.SourceGitHub:
		return map[string]any{"topics": []string{topic}}
	case types.SourceHackerNews:
		return map[string]any{"queries": []string{topic}}
	default:
		return nil
	}
}

// rankInsights deduplicates by URL, sorts by engagement descending and keeps
// the strongest maxInsights entries.
func rankInsights(all []types.Insight) []types.Insight {
	seen := make(map[string]bool, len(all))
	merged := all[:0]
	for _, in := range all {
		if in.URL != "" && seen[in.URL] {
			continue
		}
		if in.URL != "" {
			seen[in.URL] = true
		}
		merged = append(merged, in)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Engagement > merged[j].Engagement
	})
	if len(merged) > maxInsights {
		merged = merged[:maxInsights]
	}
	return merged
}

// insightsFromRaw converts one collection result into insights. Engagement is
// a per-source heuristic; scores are only compared against each other after
// ranking, never interpreted in absolute terms.
func insightsFromRaw(raw *types.RawData, topic string) []types.Insight {
	var insights []types.Insight
	switch raw.SourceType {
	case types.SourceReddit:
		for _, p := range raw.RedditPosts {
			insights = append(insights, types.Insight{
				Title:      p.Title,
				URL:        p.URL,
				Source:     types.SourceReddit,
				Topic:      topic,
				Summary:    firstLine(p.SelfText),
				Engagement: float64(p.Score) + 2*float64(p.NumComments),
			})
		}
	case types.SourceGitHub:
		for _, repo := range raw.Repos {
			insights = append(insights, types.Insight{
				Title:      repo.FullName,
				URL:        repo.URL,
				Source:     types.SourceGitHub,
				Topic:      topic,
				Summary:    repo.Description,
				Engagement: float64(repo.Stars) + 3*float64(repo.Forks),
			})
		}
	case types.SourceHackerNews:
		for _, s := range raw.Stories {
			insights = append(insights, types.Insight{
				Title:      s.Title,
				URL:        s.URL,
				Source:     types.SourceHackerNews,
				Topic:      topic,
				Engagement: float64(s.Points) + 2*float64(s.NumComments),
			})
		}
	case types.SourceGoogleTrends:
		for _, t := range raw.Trends {
			insights = append(insights, types.Insight{
				Title:      t.Title,
				URL:        t.URL,
				Source:     types.SourceGoogleTrends,
				Topic:      topic,
				Summary:    t.RelatedQueries,
				Engagement: float64(t.TrafficVolume) / 100,
			})
		}
	}
	return insights
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
		if i > 200 {
			return s[:i]
		}
	}
	return s
}
