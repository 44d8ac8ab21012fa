package workflow

import "fmt"

// NoInsightsFoundError means every research pair failed or returned nothing.
// The workflow cannot proceed without material.
type NoInsightsFoundError struct {
	Topics []string
}

func (e *NoInsightsFoundError) Error() string {
	return fmt.Sprintf("research produced no insights for topics %v", e.Topics)
}

// ScriptGenerationFailedError wraps an LLM failure or an empty script.
type ScriptGenerationFailedError struct {
	Cause error
}

func (e *ScriptGenerationFailedError) Error() string {
	if e.Cause != nil {
		return "script generation failed: " + e.Cause.Error()
	}
	return "script generation failed: model returned an empty script"
}

func (e *ScriptGenerationFailedError) Unwrap() error {
	return e.Cause
}

// VideoGenerationFailedError wraps a video backend failure.
type VideoGenerationFailedError struct {
	Cause error
}

func (e *VideoGenerationFailedError) Error() string {
	return "video generation failed: " + e.Cause.Error()
}

func (e *VideoGenerationFailedError) Unwrap() error {
	return e.Cause
}

// PublishFailedError wraps a publishing backend failure.
type PublishFailedError struct {
	Cause error
}

func (e *PublishFailedError) Error() string {
	return "publishing failed: " + e.Cause.Error()
}

func (e *PublishFailedError) Unwrap() error {
	return e.Cause
}

// NotFoundError mirrors the orchestrator's ownership-hiding semantics for
// workflow rows.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "workflow not found: " + e.ID
}

// InvalidStateError is returned when an approval decision targets a workflow
// that is not paused at the gate.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}
