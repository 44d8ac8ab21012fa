package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/trendcast/internal/config"
	"github.com/jonathan/trendcast/internal/server"
)

var (
	serveAddr       string
	serveWorkers    int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for configurations, research jobs, and video workflows.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Job worker pool size (default 4)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if serveWorkers > 0 {
		cfg.Workers = serveWorkers
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// loadMergedConfig layers an optional JSON config file over environment
// defaults.
func loadMergedConfig(path string) (config.Config, error) {
	env := config.FromEnv()
	if path == "" {
		return env, nil
	}

	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := fileCfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return fileCfg.MergeWithDefaults(env), nil
}
