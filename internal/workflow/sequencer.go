// Package workflow runs the five-stage research-to-video pipeline:
// research, script generation, video generation, the approval gate, and
// publishing. Stage outputs are persisted as each stage finishes, so a
// workflow row always reflects the last completed stage.
package workflow

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/trendcast/internal/db"
	"github.com/jonathan/trendcast/internal/types"
)

// Store is the persistence surface the sequencer needs. *db.DB satisfies it.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	CreateWorkflow(ctx context.Context, w *types.WorkflowExecution) (*types.WorkflowExecution, error)
	GetWorkflow(ctx context.Context, id uuid.UUID) (*types.WorkflowExecution, error)
	UpdateWorkflow(ctx context.Context, id uuid.UUID, upd db.WorkflowUpdate) error
	ListPendingApprovals(ctx context.Context, userID uuid.UUID) ([]types.WorkflowExecution, error)
}

// ResearchProvider produces ranked insights for a workflow config.
type ResearchProvider interface {
	Research(ctx context.Context, cfg types.WorkflowConfig) ([]types.Insight, error)
}

// ScriptProvider turns insights into a narration script.
type ScriptProvider interface {
	Generate(ctx context.Context, insights []types.Insight, cfg types.WorkflowConfig) (string, error)
}

// VideoProvider renders a script into a video and returns an opaque reference
// to it.
type VideoProvider interface {
	Generate(ctx context.Context, script string, cfg types.WorkflowConfig) (string, error)
}

// PublishProvider posts a rendered video to the named platforms and returns
// one post reference per platform.
type PublishProvider interface {
	Publish(ctx context.Context, videoRef, caption string, platforms []string) ([]string, error)
}

// Sequencer drives workflow executions through their stages.
type Sequencer struct {
	store     Store
	research  ResearchProvider
	script    ScriptProvider
	video     VideoProvider
	publisher PublishProvider
}

// NewSequencer wires a sequencer from its stage providers.
func NewSequencer(store Store, research ResearchProvider, script ScriptProvider, video VideoProvider, publisher PublishProvider) *Sequencer {
	return &Sequencer{
		store:     store,
		research:  research,
		script:    script,
		video:     video,
		publisher: publisher,
	}
}

// Start creates a workflow in PENDING state. Execution is separate so callers
// choose whether to run synchronously or in the background.
func (s *Sequencer) Start(ctx context.Context, userID uuid.UUID, cfg types.WorkflowConfig, configurationID *uuid.UUID) (*types.WorkflowExecution, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{ID: userID.String()}
	}

	return s.store.CreateWorkflow(ctx, &types.WorkflowExecution{
		UserID:          userID,
		WorkspaceID:     workspaceFor(user),
		ConfigurationID: configurationID,
		Config:          cfg,
	})
}

// workspaceFor derives the workspace a workflow belongs to. Workspaces map
// one to one onto users until shared workspaces exist.
func workspaceFor(user *types.User) uuid.UUID {
	return user.ID
}

// Execute runs a PENDING workflow up to the approval gate, or through
// publishing when auto-publish is enabled. Failures are written to the row
// and returned; the row never stays in a transient state.
func (s *Sequencer) Execute(ctx context.Context, workflowID uuid.UUID) error {
	w, err := s.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return err
	}
	if w == nil {
		return &NotFoundError{ID: workflowID.String()}
	}
	if w.Status != types.WorkflowPending {
		return &InvalidStateError{Message: fmt.Sprintf("workflow is %s, not pending", w.Status)}
	}

	if err := s.setStatus(ctx, workflowID, types.WorkflowResearching); err != nil {
		return err
	}
	insights, err := s.research.Research(ctx, w.Config)
	if err != nil {
		return s.fail(ctx, workflowID, err)
	}
	if err := s.update(ctx, workflowID, db.WorkflowUpdate{
		Status:   statusPtr(types.WorkflowScriptGeneration),
		Insights: insights,
	}); err != nil {
		return err
	}

	script, err := s.script.Generate(ctx, insights, w.Config)
	if err != nil {
		return s.fail(ctx, workflowID, err)
	}
	if err := s.update(ctx, workflowID, db.WorkflowUpdate{
		Status: statusPtr(types.WorkflowVideoGeneration),
		Script: &script,
	}); err != nil {
		return err
	}

	videoRef, err := s.video.Generate(ctx, script, w.Config)
	if err != nil {
		return s.fail(ctx, workflowID, &VideoGenerationFailedError{Cause: err})
	}

	if !w.Config.AutoPublish {
		// Pause at the gate; ApproveAndPublish resumes from here.
		return s.update(ctx, workflowID, db.WorkflowUpdate{
			Status:         statusPtr(types.WorkflowAwaitingApproval),
			ApprovalStatus: approvalPtr(types.ApprovalPending),
			VideoRef:       &videoRef,
		})
	}

	if err := s.update(ctx, workflowID, db.WorkflowUpdate{
		Status:   statusPtr(types.WorkflowPublishing),
		VideoRef: &videoRef,
	}); err != nil {
		return err
	}
	return s.publish(ctx, workflowID, videoRef, script, w.Config)
}

// ApproveAndPublish records an approval decision for a workflow paused at
// the gate. Approval resumes publishing; rejection is terminal and nothing
// is ever posted.
func (s *Sequencer) ApproveAndPublish(ctx context.Context, userID, workflowID uuid.UUID, approved bool, feedback *string) (*types.WorkflowExecution, error) {
	w, err := s.Get(ctx, userID, workflowID)
	if err != nil {
		return nil, err
	}
	if w.Status != types.WorkflowAwaitingApproval {
		return nil, &InvalidStateError{Message: fmt.Sprintf("workflow is %s, not awaiting approval", w.Status)}
	}

	if !approved {
		if err := s.update(ctx, workflowID, db.WorkflowUpdate{
			Status:           statusPtr(types.WorkflowCancelled),
			ApprovalStatus:   approvalPtr(types.ApprovalRejected),
			ApprovalFeedback: feedback,
		}); err != nil {
			return nil, err
		}
		return s.store.GetWorkflow(ctx, workflowID)
	}

	// The decision is recorded as APPROVED before publishing starts, so the
	// row shows it even if a later stage fails.
	if err := s.update(ctx, workflowID, db.WorkflowUpdate{
		Status:           statusPtr(types.WorkflowApproved),
		ApprovalStatus:   approvalPtr(types.ApprovalApproved),
		ApprovalFeedback: feedback,
	}); err != nil {
		return nil, err
	}
	if err := s.setStatus(ctx, workflowID, types.WorkflowPublishing); err != nil {
		return nil, err
	}

	var script string
	if w.GeneratedScript != nil {
		script = *w.GeneratedScript
	}
	var videoRef string
	if w.VideoRef != nil {
		videoRef = *w.VideoRef
	}
	if err := s.publish(ctx, workflowID, videoRef, script, w.Config); err != nil {
		return nil, err
	}
	return s.store.GetWorkflow(ctx, workflowID)
}

// publish posts the video and moves the workflow to COMPLETED.
func (s *Sequencer) publish(ctx context.Context, workflowID uuid.UUID, videoRef, script string, cfg types.WorkflowConfig) error {
	caption := BuildCaption(script, cfg.Hashtags)

	platforms := cfg.PublishPlatforms
	if len(platforms) == 0 {
		// A workflow with no publish targets completes as a draft.
		return s.setStatus(ctx, workflowID, types.WorkflowCompleted)
	}

	refs, err := s.publisher.Publish(ctx, videoRef, caption, platforms)
	if err != nil {
		return s.fail(ctx, workflowID, &PublishFailedError{Cause: err})
	}
	return s.update(ctx, workflowID, db.WorkflowUpdate{
		Status:        statusPtr(types.WorkflowCompleted),
		PublishedRefs: refs,
	})
}

// Get returns a workflow visible to the given user. Other users' workflows
// read as not found; admins see every workflow.
func (s *Sequencer) Get(ctx context.Context, userID, workflowID uuid.UUID) (*types.WorkflowExecution, error) {
	caller, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	w, err := s.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if w == nil || caller == nil || (w.UserID != caller.ID && !caller.IsAdmin) {
		return nil, &NotFoundError{ID: workflowID.String()}
	}
	return w, nil
}

// ListPendingApprovals returns a user's workflows paused at the gate.
func (s *Sequencer) ListPendingApprovals(ctx context.Context, userID uuid.UUID) ([]types.WorkflowExecution, error) {
	return s.store.ListPendingApprovals(ctx, userID)
}

// fail marks the workflow FAILED with the stage error and returns that error.
func (s *Sequencer) fail(ctx context.Context, workflowID uuid.UUID, stageErr error) error {
	msg := stageErr.Error()
	if err := s.update(ctx, workflowID, db.WorkflowUpdate{
		Status:       statusPtr(types.WorkflowFailed),
		ErrorMessage: &msg,
	}); err != nil {
		log.Printf("failed to record workflow %s failure: %v", workflowID, err)
	}
	return stageErr
}

func (s *Sequencer) setStatus(ctx context.Context, workflowID uuid.UUID, status types.WorkflowStatus) error {
	return s.update(ctx, workflowID, db.WorkflowUpdate{Status: &status})
}

func (s *Sequencer) update(ctx context.Context, workflowID uuid.UUID, upd db.WorkflowUpdate) error {
	if err := s.store.UpdateWorkflow(ctx, workflowID, upd); err != nil {
		return fmt.Errorf("failed to persist workflow progress: %w", err)
	}
	return nil
}

func statusPtr(s types.WorkflowStatus) *types.WorkflowStatus {
	return &s
}

func approvalPtr(a types.ApprovalStatus) *types.ApprovalStatus {
	return &a
}
