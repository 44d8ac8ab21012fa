// Package config provides configuration loading for the CLI and server.
// Values come from a JSON file, environment variables, and CLI flags, in
// increasing order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the application configuration. All fields are optional;
// missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // host:port for the API server
	Workers    int    `json:"workers,omitempty"`     // job worker pool size
	QueueSize  int    `json:"queue_size,omitempty"`  // job queue buffer size

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// External services
	APIKey            string `json:"api_key,omitempty"`      // Gemini API key
	GitHubToken       string `json:"github_token,omitempty"` // optional, raises GitHub search rate limits
	VideoServiceURL   string `json:"video_service_url,omitempty"`
	VideoAPIKey       string `json:"video_api_key,omitempty"`
	PublishServiceURL string `json:"publish_service_url,omitempty"`
	PublishAPIKey     string `json:"publish_api_key,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // headless browser fallback for JS-rendered sources
	Verbose    bool `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a configuration from environment variables. Used as the
// defaults layer under a config file and CLI flags.
func FromEnv() Config {
	workers, _ := strconv.Atoi(os.Getenv("TRENDCAST_WORKERS"))
	queueSize, _ := strconv.Atoi(os.Getenv("TRENDCAST_QUEUE_SIZE"))

	return Config{
		ListenAddr:        os.Getenv("TRENDCAST_LISTEN_ADDR"),
		Workers:           workers,
		QueueSize:         queueSize,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIKey:            os.Getenv("GEMINI_API_KEY"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		VideoServiceURL:   os.Getenv("VIDEO_SERVICE_URL"),
		VideoAPIKey:       os.Getenv("VIDEO_API_KEY"),
		PublishServiceURL: os.Getenv("PUBLISH_SERVICE_URL"),
		PublishAPIKey:     os.Getenv("PUBLISH_API_KEY"),
		UseBrowser:        os.Getenv("TRENDCAST_USE_BROWSER") == "true",
	}
}

// Validate checks numeric ranges. Required fields are enforced by the
// commands that need them after merging.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("config error: 'queue_size' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. CLI flags always win for booleans since unset and false are
// indistinguishable.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.GitHubToken == "" {
		result.GitHubToken = defaults.GitHubToken
	}
	if result.VideoServiceURL == "" {
		result.VideoServiceURL = defaults.VideoServiceURL
	}
	if result.VideoAPIKey == "" {
		result.VideoAPIKey = defaults.VideoAPIKey
	}
	if result.PublishServiceURL == "" {
		result.PublishServiceURL = defaults.PublishServiceURL
	}
	if result.PublishAPIKey == "" {
		result.PublishAPIKey = defaults.PublishAPIKey
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.QueueSize == 0 {
		result.QueueSize = defaults.QueueSize
	}

	return result
}
