package types

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a research job.
type JobStatus string

// Job statuses. COMPLETED, FAILED and CANCELLED are terminal.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the job state machine permits moving from s
// to next. Cancellation is only reachable from QUEUED; a running job always
// finishes as COMPLETED or FAILED.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return next == JobStatusRunning || next == JobStatusCancelled
	case JobStatusRunning:
		return next == JobStatusCompleted || next == JobStatusFailed
	}
	return false
}

// JobType selects which stages a job runs.
type JobType string

// Job types: raw collects only, analyze runs analysis over a prior raw
// job's output, pipeline does both in one job.
const (
	JobTypeRaw      JobType = "raw"
	JobTypeAnalyze  JobType = "analyze"
	JobTypePipeline JobType = "pipeline"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	return t == JobTypeRaw || t == JobTypeAnalyze || t == JobTypePipeline
}

// JobPriority is stored for future scheduling use; the current worker pool
// ignores it.
type JobPriority string

// Job priorities
const (
	PriorityLow    JobPriority = "low"
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
)

// Job is one execution attempt of a configuration.
type Job struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	WorkspaceID     uuid.UUID      `json:"workspace_id"`
	ConfigurationID *uuid.UUID     `json:"configuration_id,omitempty"` // nil for ad-hoc jobs
	SourceJobID     *uuid.UUID     `json:"source_job_id,omitempty"`    // raw job feeding an analyze job
	SourceType      SourceType     `json:"source_type"`
	JobType         JobType        `json:"job_type"`
	Status          JobStatus      `json:"status"`
	Priority        JobPriority    `json:"priority"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	ErrorMessage    *string        `json:"error_message,omitempty"`
	ResultsRef      *uuid.UUID     `json:"results_ref,omitempty"` // set only on COMPLETED
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
