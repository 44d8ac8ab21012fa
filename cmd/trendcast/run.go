package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/trendcast/internal/analysis"
	"github.com/jonathan/trendcast/internal/llm"
	"github.com/jonathan/trendcast/internal/observability"
	"github.com/jonathan/trendcast/internal/schemas"
	"github.com/jonathan/trendcast/internal/sources"
	"github.com/jonathan/trendcast/internal/types"
)

var (
	runSource     string
	runJobType    string
	runParams     string
	runOut        string
	runUseBrowser bool
	runVerbose    bool
	runTimeout    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a one-off research job without the server",
	Long: `Collect from a source and optionally analyze the results, entirely
in-process. Useful for trying out parameters before saving a configuration.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runSource, "source", "", "Source to collect from (reddit, github, hackernews, google_trends)")
	runCmd.Flags().StringVar(&runJobType, "type", "pipeline", "Job type: raw or pipeline")
	runCmd.Flags().StringVar(&runParams, "params", "{}", "Source parameters as a JSON object")
	runCmd.Flags().StringVar(&runOut, "out", "", "Write the result JSON to this file")
	runCmd.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Allow headless browser fallback for JS-rendered sources")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Print collection and analysis summaries")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "Overall timeout")
	_ = runCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	sourceType := types.SourceType(runSource)
	if !sourceType.Valid() || sourceType == types.SourceVideo {
		return fmt.Errorf("unknown source %q; expected one of reddit, github, hackernews, google_trends", runSource)
	}

	jobType := types.JobType(runJobType)
	if jobType != types.JobTypeRaw && jobType != types.JobTypePipeline {
		return fmt.Errorf("type must be raw or pipeline for ad-hoc runs")
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(runParams), &params); err != nil {
		return fmt.Errorf("failed to parse --params: %w", err)
	}
	if err := schemas.ValidateParameters(sourceType, params); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	registry := sources.NewRegistry(
		sources.NewRedditClient(),
		sources.NewGitHubClient(os.Getenv("GITHUB_TOKEN")),
		sources.NewHackerNewsClient(),
		sources.NewGoogleTrendsClient(runUseBrowser),
	)
	client, err := registry.For(sourceType)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)

	raw, err := client.Collect(ctx, params)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}
	if runVerbose {
		printer.PrintRawData(raw)
	}

	var result any = raw
	if jobType == types.JobTypePipeline {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required for analysis")
		}
		llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer llmClient.Close()

		analyzed, err := analysis.New(llmClient).Analyze(ctx, raw, nil)
		if err != nil {
			return err
		}
		if runVerbose {
			printer.PrintInsights(analyzed)
		}
		result = struct {
			Raw      *types.RawData      `json:"raw"`
			Analyzed *types.AnalyzedData `json:"analyzed"`
		}{Raw: raw, Analyzed: analyzed}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if runOut != "" {
		if err := os.WriteFile(runOut, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", runOut, err)
		}
		fmt.Printf("Result written to %s\n", runOut)
		return nil
	}

	fmt.Println(string(out))
	return nil
}
