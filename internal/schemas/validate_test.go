package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trendcast/internal/types"
)

func TestValidateParameters_ValidReddit(t *testing.T) {
	err := ValidateParameters(types.SourceReddit, map[string]any{
		"subreddits": []any{"golang", "programming"},
		"limit":      25,
		"time_range": "week",
	})
	assert.NoError(t, err)
}

func TestValidateParameters_MissingRequired(t *testing.T) {
	err := ValidateParameters(types.SourceReddit, map[string]any{
		"limit": 25,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Errors)
	assert.Contains(t, verr.Error(), "subreddits")
}

func TestValidateParameters_UnknownKeyRejected(t *testing.T) {
	err := ValidateParameters(types.SourceReddit, map[string]any{
		"subreddits": []any{"golang"},
		"subredits":  []any{"typo"},
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidateParameters_OutOfRange(t *testing.T) {
	err := ValidateParameters(types.SourceReddit, map[string]any{
		"subreddits": []any{"golang"},
		"limit":      500,
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidateParameters_BadEnum(t *testing.T) {
	err := ValidateParameters(types.SourceReddit, map[string]any{
		"subreddits": []any{"golang"},
		"time_range": "decade",
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidateParameters_GitHubOptionalOnly(t *testing.T) {
	assert.NoError(t, ValidateParameters(types.SourceGitHub, nil))
	assert.NoError(t, ValidateParameters(types.SourceGitHub, map[string]any{
		"topics":    []any{"cli"},
		"language":  "go",
		"min_stars": 100,
	}))
}

func TestValidateParameters_GoogleTrendsGeo(t *testing.T) {
	assert.NoError(t, ValidateParameters(types.SourceGoogleTrends, map[string]any{"geo": "US"}))

	err := ValidateParameters(types.SourceGoogleTrends, map[string]any{"geo": "usa"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidateParameters_Video(t *testing.T) {
	assert.NoError(t, ValidateParameters(types.SourceVideo, map[string]any{
		"research_topics":       []any{"ai tooling"},
		"platforms_to_research": []any{"reddit", "hackernews"},
		"duration_seconds":      60,
		"auto_publish":          false,
	}))

	// research_topics is what the whole workflow hangs off.
	err := ValidateParameters(types.SourceVideo, map[string]any{
		"duration_seconds": 60,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "research_topics")

	// Video is not a researchable platform.
	err = ValidateParameters(types.SourceVideo, map[string]any{
		"research_topics":       []any{"ai"},
		"platforms_to_research": []any{"video"},
	})
	assert.ErrorAs(t, err, &verr)
}
