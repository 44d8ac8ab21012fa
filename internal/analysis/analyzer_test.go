package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trendcast/internal/llm"
	"github.com/jonathan/trendcast/internal/types"
)

type fakeLLM struct {
	response string
	err      error
	prompt   string
	tier     llm.ModelTier
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompt, f.tier = prompt, tier
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompt, f.tier = prompt, tier
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }

func redditRaw() *types.RawData {
	return &types.RawData{
		SourceType: types.SourceReddit,
		RedditPosts: []types.RedditPost{
			{Title: "Go 1.25 released", Subreddit: "golang", Score: 500, NumComments: 120, URL: "https://reddit.example/1"},
		},
	}
}

func TestAnalyze_ParsesInsights(t *testing.T) {
	client := &fakeLLM{response: `{
		"insights": [
			{"title": "Go release buzz", "url": "https://reddit.example/1", "topic": "golang", "summary": "Strong reception", "engagement": 85, "source": "github"}
		],
		"summary": "Release week drives discussion"
	}`}

	analyzed, err := New(client).Analyze(context.Background(), redditRaw(), nil)
	require.NoError(t, err)

	assert.Equal(t, types.SourceReddit, analyzed.SourceType)
	assert.Equal(t, "Release week drives discussion", analyzed.Summary)
	require.Len(t, analyzed.Insights, 1)
	assert.Equal(t, "Go release buzz", analyzed.Insights[0].Title)
	assert.False(t, analyzed.AnalyzedAt.IsZero())

	// The source tag always comes from the raw data, not the model.
	assert.Equal(t, types.SourceReddit, analyzed.Insights[0].Source)

	assert.Equal(t, llm.TierStandard, client.tier)
	assert.Contains(t, client.prompt, "Go 1.25 released")
}

func TestAnalyze_EmptyRawData(t *testing.T) {
	client := &fakeLLM{}

	_, err := New(client).Analyze(context.Background(), nil, nil)
	var failed *FailedError
	require.ErrorAs(t, err, &failed)

	_, err = New(client).Analyze(context.Background(), &types.RawData{SourceType: types.SourceReddit}, nil)
	require.ErrorAs(t, err, &failed)
	assert.Empty(t, client.prompt, "no LLM call for empty input")
}

func TestAnalyze_LLMFailure(t *testing.T) {
	cause := errors.New("quota exhausted")
	client := &fakeLLM{err: cause}

	_, err := New(client).Analyze(context.Background(), redditRaw(), nil)
	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.ErrorIs(t, err, cause)
}

func TestAnalyze_MalformedOutput(t *testing.T) {
	client := &fakeLLM{response: "not json at all"}

	_, err := New(client).Analyze(context.Background(), redditRaw(), nil)
	var failed *FailedError
	require.ErrorAs(t, err, &failed)
}

func TestAnalyze_NoInsightsIsAFailure(t *testing.T) {
	client := &fakeLLM{response: `{"insights": [], "summary": "nothing notable"}`}

	_, err := New(client).Analyze(context.Background(), redditRaw(), nil)
	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, failed.Message, "no insights")
}

func TestAnalyze_ConfigurationShapesPrompt(t *testing.T) {
	client := &fakeLLM{response: `{"insights": [{"title": "x"}], "summary": ""}`}
	cfg := &types.Configuration{
		SourceType:  types.SourceReddit,
		Description: "weekly digest",
		Parameters:  map[string]any{"instruction": "focus on tooling changes"},
	}

	_, err := New(client).Analyze(context.Background(), redditRaw(), cfg)
	require.NoError(t, err)
	assert.Contains(t, client.prompt, "focus on tooling changes")
}

func TestBuildPrompt_CapsItems(t *testing.T) {
	raw := &types.RawData{SourceType: types.SourceReddit}
	for i := 0; i < maxItemsInPrompt+25; i++ {
		raw.RedditPosts = append(raw.RedditPosts, types.RedditPost{Title: "samplepost"})
	}

	prompt := buildPrompt(raw, nil)
	assert.Equal(t, maxItemsInPrompt, strings.Count(prompt, "samplepost"))
}
