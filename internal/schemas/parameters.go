package schemas

import "github.com/jonathan/trendcast/internal/types"

// parameterSchemas maps each source type to the JSON Schema its configuration
// parameters must satisfy. The schemas mirror what each collector actually
// reads; unknown keys are rejected to catch typos like "subredits".
var parameterSchemas = map[types.SourceType]string{
	types.SourceReddit: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"subreddits": {
				"type": "array",
				"items": {"type": "string", "minLength": 1},
				"minItems": 1,
				"maxItems": 20
			},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100},
			"time_range": {"enum": ["hour", "day", "week", "month", "year", "all"]},
			"instruction": {"type": "string"}
		},
		"required": ["subreddits"]
	}`,

	types.SourceGitHub: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"topics": {
				"type": "array",
				"items": {"type": "string", "minLength": 1},
				"maxItems": 10
			},
			"language": {"type": "string"},
			"min_stars": {"type": "integer", "minimum": 0},
			"created_within_days": {"type": "integer", "minimum": 1, "maximum": 365},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100},
			"instruction": {"type": "string"}
		}
	}`,

	types.SourceHackerNews: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"queries": {
				"type": "array",
				"items": {"type": "string"},
				"maxItems": 10
			},
			"min_points": {"type": "integer", "minimum": 0},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100},
			"instruction": {"type": "string"}
		}
	}`,

	types.SourceGoogleTrends: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"geo": {"type": "string", "pattern": "^[A-Z]{2}$"},
			"limit": {"type": "integer", "minimum": 1, "maximum": 50},
			"instruction": {"type": "string"}
		}
	}`,

	types.SourceVideo: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"research_topics": {
				"type": "array",
				"items": {"type": "string", "minLength": 1},
				"minItems": 1,
				"maxItems": 10
			},
			"platforms_to_research": {
				"type": "array",
				"items": {"enum": ["reddit", "github", "hackernews", "google_trends"]}
			},
			"style": {"type": "string"},
			"target_audience": {"type": "string"},
			"duration_seconds": {"type": "integer", "minimum": 15, "maximum": 180},
			"hashtags": {"type": "array", "items": {"type": "string"}},
			"publish_platforms": {"type": "array", "items": {"type": "string"}},
			"auto_publish": {"type": "boolean"}
		},
		"required": ["research_topics"]
	}`,
}
