// Package types defines the shared domain model for research configurations,
// jobs, and content workflows.
package types

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies the external platform a configuration targets.
type SourceType string

// Supported source types
const (
	SourceReddit       SourceType = "reddit"
	SourceGitHub       SourceType = "github"
	SourceHackerNews   SourceType = "hackernews"
	SourceGoogleTrends SourceType = "google_trends"
	SourceVideo        SourceType = "video"
)

// ResearchSourceTypes lists the source types a plain research job may target.
// SourceVideo configurations run through the workflow sequencer instead.
func ResearchSourceTypes() []SourceType {
	return []SourceType{SourceReddit, SourceGitHub, SourceHackerNews, SourceGoogleTrends}
}

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceReddit, SourceGitHub, SourceHackerNews, SourceGoogleTrends, SourceVideo:
		return true
	}
	return false
}

// Configuration is a saved, reusable research/generation recipe.
// source_type is immutable after creation; parameters are source-specific
// and treated as opaque by the orchestrator.
type Configuration struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	WorkspaceID    uuid.UUID      `json:"workspace_id"`
	SourceType     SourceType     `json:"source_type"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	AutoRunEnabled bool           `json:"auto_run_enabled"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	LastRunAt      *time.Time     `json:"last_run_at,omitempty"`
}

// ConfigurationUpdate holds the mutable fields of a configuration.
// Nil fields are left unchanged. SourceType is deliberately absent.
type ConfigurationUpdate struct {
	Name           *string        `json:"name,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	AutoRunEnabled *bool          `json:"auto_run_enabled,omitempty"`
}
