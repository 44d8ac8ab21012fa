package types

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus is the lifecycle state of a research-to-video workflow.
type WorkflowStatus string

// Workflow stages in execution order, plus the approval pause and terminals.
const (
	WorkflowPending          WorkflowStatus = "pending"
	WorkflowResearching      WorkflowStatus = "researching"
	WorkflowScriptGeneration WorkflowStatus = "script_generation"
	WorkflowVideoGeneration  WorkflowStatus = "video_generation"
	WorkflowAwaitingApproval WorkflowStatus = "awaiting_approval"
	WorkflowApproved         WorkflowStatus = "approved"
	WorkflowPublishing       WorkflowStatus = "publishing"
	WorkflowCompleted        WorkflowStatus = "completed"
	WorkflowFailed           WorkflowStatus = "failed"
	WorkflowCancelled        WorkflowStatus = "cancelled"
)

// Terminal reports whether the workflow has finished.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowCompleted || s == WorkflowFailed || s == WorkflowCancelled
}

// ApprovalStatus tracks the human approval gate of a workflow.
type ApprovalStatus string

// Approval statuses. pending is exactly equivalent to the workflow being in
// AWAITING_APPROVAL.
const (
	ApprovalNotRequired ApprovalStatus = "not_required"
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalRejected    ApprovalStatus = "rejected"
)

// Insight is a single structured finding extracted from one external source
// item (post, repo, trend).
type Insight struct {
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Source     SourceType `json:"source"`
	Topic      string     `json:"topic,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Engagement float64    `json:"engagement"`
}

// WorkflowConfig describes what a research-to-video workflow should produce.
type WorkflowConfig struct {
	ResearchTopics      []string     `json:"research_topics"`
	PlatformsToResearch []SourceType `json:"platforms_to_research"`
	Style               string       `json:"style,omitempty"`
	TargetAudience      string       `json:"target_audience,omitempty"`
	DurationSeconds     int          `json:"duration_seconds,omitempty"`
	Hashtags            []string     `json:"hashtags,omitempty"`
	PublishPlatforms    []string     `json:"publish_platforms,omitempty"`
	AutoPublish         bool         `json:"auto_publish"`
}

// WorkflowExecution is a job specialized to the five-stage
// research -> script -> video -> approval -> publish pipeline.
type WorkflowExecution struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	WorkspaceID      uuid.UUID      `json:"workspace_id"`
	ConfigurationID  *uuid.UUID     `json:"configuration_id,omitempty"`
	Status           WorkflowStatus `json:"status"`
	Config           WorkflowConfig `json:"config"`
	ResearchInsights []Insight      `json:"research_insights,omitempty"`
	GeneratedScript  *string        `json:"generated_script,omitempty"`
	VideoRef         *string        `json:"video_ref,omitempty"`
	ApprovalStatus   ApprovalStatus `json:"approval_status"`
	ApprovalFeedback *string        `json:"approval_feedback,omitempty"`
	PublishedRefs    []string       `json:"published_refs,omitempty"`
	ErrorMessage     *string        `json:"error_message,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}
