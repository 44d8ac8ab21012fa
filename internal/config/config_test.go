package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"listen_addr": ":9090",
		"database_url": "postgres://localhost/trendcast",
		"workers": 8,
		"use_browser": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/trendcast", cfg.DatabaseURL)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.UseBrowser)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := &Config{Workers: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{QueueSize: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Workers: 4, QueueSize: 100}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		DatabaseURL: "postgres://file/db",
		Workers:     2,
	}
	defaults := Config{
		ListenAddr:  ":8080",
		DatabaseURL: "postgres://env/db",
		APIKey:      "env-key",
		Workers:     4,
		QueueSize:   128,
	}

	merged := cfg.MergeWithDefaults(defaults)

	// File values win where set
	assert.Equal(t, "postgres://file/db", merged.DatabaseURL)
	assert.Equal(t, 2, merged.Workers)

	// Defaults fill the gaps
	assert.Equal(t, ":8080", merged.ListenAddr)
	assert.Equal(t, "env-key", merged.APIKey)
	assert.Equal(t, 128, merged.QueueSize)
}
