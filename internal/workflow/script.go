package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/trendcast/internal/llm"
	"github.com/jonathan/trendcast/internal/types"
)

// scriptInsightLimit bounds how many insights are fed to the script prompt.
const scriptInsightLimit = 10

// ScriptWriter generates short-form video scripts from ranked insights.
type ScriptWriter struct {
	client llm.Client
}

// NewScriptWriter creates a script writer backed by the given LLM client.
func NewScriptWriter(client llm.Client) *ScriptWriter {
	return &ScriptWriter{client: client}
}

// Generate produces a narration script from the strongest insights. An empty
// model response is a failure; a workflow never advances with a blank script.
func (w *ScriptWriter) Generate(ctx context.Context, insights []types.Insight, cfg types.WorkflowConfig) (string, error) {
	if len(insights) > scriptInsightLimit {
		insights = insights[:scriptInsightLimit]
	}

	prompt := buildScriptPrompt(insights, cfg)
	script, err := w.client.GenerateContent(ctx, prompt, llm.TierCreative)
	if err != nil {
		return "", &ScriptGenerationFailedError{Cause: err}
	}
	script = strings.TrimSpace(script)
	if script == "" {
		return "", &ScriptGenerationFailedError{}
	}
	return script, nil
}

func buildScriptPrompt(insights []types.Insight, cfg types.WorkflowConfig) string {
	var b strings.Builder

	b.WriteString("Write a narration script for a short-form vertical video.\n\n")

	duration := cfg.DurationSeconds
	if duration <= 0 {
		duration = 60
	}
	fmt.Fprintf(&b, "Target length: about %d seconds of speech.\n", duration)
	if cfg.Style != "" {
		b.WriteString("Style: " + cfg.Style + "\n")
	}
	if cfg.TargetAudience != "" {
		b.WriteString("Audience: " + cfg.TargetAudience + "\n")
	}

	b.WriteString("\nBase the script on these findings, strongest first:\n\n")
	for i, in := range insights {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, in.Source, in.Title)
		if in.Summary != "" {
			b.WriteString(" -- " + in.Summary)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Structure the script as:
HOOK: one attention-grabbing opening line
BODY: the main findings, conversational, no bullet points
CTA: one closing call to action

Return only the script text with those three section markers. No camera
directions, no emoji, no hashtags.`)

	return b.String()
}
