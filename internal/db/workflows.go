package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/trendcast/internal/types"
)

const workflowColumns = `id, user_id, workspace_id, configuration_id, status, config,
	research_insights, generated_script, video_ref, approval_status, approval_feedback,
	published_refs, error_message, started_at, completed_at, created_at`

func scanWorkflow(row pgx.Row) (*types.WorkflowExecution, error) {
	var w types.WorkflowExecution
	var configJSON, insightsJSON, publishedJSON []byte

	err := row.Scan(&w.ID, &w.UserID, &w.WorkspaceID, &w.ConfigurationID, &w.Status, &configJSON,
		&insightsJSON, &w.GeneratedScript, &w.VideoRef, &w.ApprovalStatus, &w.ApprovalFeedback,
		&publishedJSON, &w.ErrorMessage, &w.StartedAt, &w.CompletedAt, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	if configJSON != nil {
		_ = json.Unmarshal(configJSON, &w.Config)
	}
	if insightsJSON != nil {
		_ = json.Unmarshal(insightsJSON, &w.ResearchInsights)
	}
	if publishedJSON != nil {
		_ = json.Unmarshal(publishedJSON, &w.PublishedRefs)
	}
	return &w, nil
}

// CreateWorkflow inserts a workflow execution in PENDING state.
func (db *DB) CreateWorkflow(ctx context.Context, w *types.WorkflowExecution) (*types.WorkflowExecution, error) {
	configJSON, err := json.Marshal(w.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow config: %w", err)
	}

	// approval_status only becomes pending once video generation finishes.
	approval := types.ApprovalNotRequired

	row := db.pool.QueryRow(ctx,
		`INSERT INTO workflow_executions (user_id, workspace_id, configuration_id, status, config, approval_status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+workflowColumns,
		w.UserID, w.WorkspaceID, w.ConfigurationID, types.WorkflowPending, configJSON, approval,
	)
	created, err := scanWorkflow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	return created, nil
}

// GetWorkflow retrieves a workflow execution by ID. Returns nil if not found.
func (db *DB) GetWorkflow(ctx context.Context, id uuid.UUID) (*types.WorkflowExecution, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflow_executions WHERE id = $1`, id)
	w, err := scanWorkflow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

// WorkflowUpdate holds the stage outputs written as a workflow advances.
// Nil fields are left unchanged.
type WorkflowUpdate struct {
	Status           *types.WorkflowStatus
	ApprovalStatus   *types.ApprovalStatus
	ApprovalFeedback *string
	Insights         []types.Insight
	Script           *string
	VideoRef         *string
	PublishedRefs    []string
	ErrorMessage     *string
}

// UpdateWorkflow persists stage progress. started_at is set once on leaving
// PENDING, completed_at once on any terminal status.
func (db *DB) UpdateWorkflow(ctx context.Context, id uuid.UUID, upd WorkflowUpdate) error {
	var insightsJSON, publishedJSON []byte
	if upd.Insights != nil {
		insightsJSON, _ = json.Marshal(upd.Insights)
	}
	if upd.PublishedRefs != nil {
		publishedJSON, _ = json.Marshal(upd.PublishedRefs)
	}

	var setStarted, setCompleted bool
	if upd.Status != nil {
		setStarted = *upd.Status != types.WorkflowPending
		setCompleted = upd.Status.Terminal()
	}

	_, err := db.pool.Exec(ctx,
		`UPDATE workflow_executions
		 SET status = COALESCE($1, status),
		     approval_status = COALESCE($2, approval_status),
		     approval_feedback = COALESCE($3, approval_feedback),
		     research_insights = COALESCE($4, research_insights),
		     generated_script = COALESCE($5, generated_script),
		     video_ref = COALESCE($6, video_ref),
		     published_refs = COALESCE($7, published_refs),
		     error_message = COALESCE($8, error_message),
		     started_at = CASE WHEN $9 AND started_at IS NULL THEN NOW() ELSE started_at END,
		     completed_at = CASE WHEN $10 AND completed_at IS NULL THEN NOW() ELSE completed_at END
		 WHERE id = $11`,
		upd.Status, upd.ApprovalStatus, upd.ApprovalFeedback, insightsJSON, upd.Script,
		upd.VideoRef, publishedJSON, upd.ErrorMessage, setStarted, setCompleted, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	return nil
}

// ListPendingApprovals retrieves a user's workflows paused at the approval
// gate, oldest first.
func (db *DB) ListPendingApprovals(ctx context.Context, userID uuid.UUID) ([]types.WorkflowExecution, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflow_executions
		 WHERE user_id = $1 AND status = $2
		 ORDER BY created_at ASC`,
		userID, types.WorkflowAwaitingApproval,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	defer rows.Close()

	var workflows []types.WorkflowExecution
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, *w)
	}
	return workflows, nil
}
