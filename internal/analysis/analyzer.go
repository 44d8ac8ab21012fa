// Package analysis turns raw source data into structured insights using an
// LLM. It is stateless; all persistence stays with the orchestrator.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/trendcast/internal/llm"
	"github.com/jonathan/trendcast/internal/types"
)

// FailedError indicates the LLM call or its output parsing failed. Terminal
// for the current job.
type FailedError struct {
	Message string
	Cause   error
}

func (e *FailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis failed: %s: %v", e.Message, e.Cause)
	}
	return "analysis failed: " + e.Message
}

func (e *FailedError) Unwrap() error {
	return e.Cause
}

// Analyzer runs the analysis step over collected raw data.
type Analyzer struct {
	client llm.Client
}

// New creates an Analyzer backed by the given LLM client.
func New(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// analysisResponse is the JSON shape the model is asked to produce.
type analysisResponse struct {
	Insights []types.Insight `json:"insights"`
	Summary  string          `json:"summary"`
}

// Analyze extracts insights from raw data. The configuration supplies the
// analysis instruction (parameters["instruction"], falling back to the
// description) and context; raw data is rendered per source variant.
func (a *Analyzer) Analyze(ctx context.Context, raw *types.RawData, cfg *types.Configuration) (*types.AnalyzedData, error) {
	if raw == nil || raw.ItemCount() == 0 {
		return nil, &FailedError{Message: "no raw data to analyze"}
	}

	prompt := buildPrompt(raw, cfg)

	out, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &FailedError{Message: "LLM call failed", Cause: err}
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, &FailedError{Message: "could not parse model output", Cause: err}
	}
	if len(resp.Insights) == 0 {
		return nil, &FailedError{Message: "model returned no insights"}
	}

	// The model is not trusted to tag its own output.
	for i := range resp.Insights {
		resp.Insights[i].Source = raw.SourceType
	}

	return &types.AnalyzedData{
		SourceType: raw.SourceType,
		Insights:   resp.Insights,
		Summary:    resp.Summary,
		AnalyzedAt: time.Now().UTC(),
	}, nil
}
