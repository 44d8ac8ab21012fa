// Package main provides the entry point for the Trendcast CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trendcast",
	Short: "Trendcast research and content pipeline",
	Long:  "Trendcast collects trending content from social platforms, extracts insights with an LLM, and turns them into publishable short-form videos via REST API or CLI.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
