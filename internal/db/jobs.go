package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/trendcast/internal/types"
)

const jobColumns = `id, user_id, workspace_id, configuration_id, source_job_id, source_type,
	job_type, status, priority, started_at, completed_at, error_message, results_ref,
	metadata, created_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	var metadataJSON []byte

	err := row.Scan(&j.ID, &j.UserID, &j.WorkspaceID, &j.ConfigurationID, &j.SourceJobID,
		&j.SourceType, &j.JobType, &j.Status, &j.Priority, &j.StartedAt, &j.CompletedAt,
		&j.ErrorMessage, &j.ResultsRef, &metadataJSON, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &j.Metadata)
	}
	return &j, nil
}

// CreateJob inserts a job in QUEUED state and returns the stored row.
func (db *DB) CreateJob(ctx context.Context, j *types.Job) (*types.Job, error) {
	metadataJSON, err := json.Marshal(j.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (user_id, workspace_id, configuration_id, source_job_id, source_type,
		                   job_type, status, priority, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+jobColumns,
		j.UserID, j.WorkspaceID, j.ConfigurationID, j.SourceJobID, j.SourceType,
		j.JobType, types.JobStatusQueued, j.Priority, metadataJSON,
	)
	created, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

// GetJob retrieves a job by ID. Returns nil if not found.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListJobs retrieves a user's jobs, newest first, optionally filtered by status.
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID, status *types.JobStatus, limit int) ([]types.Job, error) {
	if limit == 0 {
		limit = 50
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1`
	args := []any{userID}
	argNum := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *status)
		argNum++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

// ListQueuedJobIDs returns the IDs of all jobs still in QUEUED state, oldest
// first. The orchestrator sweeps these back into its queue on startup.
func (db *DB) ListQueuedJobIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id FROM jobs WHERE status = $1 ORDER BY created_at`,
		types.JobStatusQueued,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued jobs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UpdateJobStatus moves a job to the given status and maintains the
// timestamp invariants: started_at is set once on RUNNING, completed_at once
// on any terminal status. errMsg and resultsRef are only written when
// non-nil. Updates are last-writer-wins; there is no version column.
func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status types.JobStatus, errMsg *string, resultsRef *uuid.UUID) error {
	var setStarted, setCompleted bool
	switch status {
	case types.JobStatusRunning:
		setStarted = true
	case types.JobStatusCompleted, types.JobStatusFailed, types.JobStatusCancelled:
		setCompleted = true
	}

	_, err := db.pool.Exec(ctx,
		`UPDATE jobs
		 SET status = $1,
		     started_at = CASE WHEN $2 AND started_at IS NULL THEN NOW() ELSE started_at END,
		     completed_at = CASE WHEN $3 AND completed_at IS NULL THEN NOW() ELSE completed_at END,
		     error_message = COALESCE($4, error_message),
		     results_ref = COALESCE($5, results_ref)
		 WHERE id = $6`,
		status, setStarted, setCompleted, errMsg, resultsRef, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// CountActiveJobs counts a user's jobs in QUEUED or RUNNING state. Consulted
// by the admission gate before creating a new job.
func (db *DB) CountActiveJobs(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE user_id = $1 AND status IN ($2, $3)`,
		userID, types.JobStatusQueued, types.JobStatusRunning,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return count, nil
}

// SaveJobResult persists a job's output payload and returns the result row
// ID used as the job's results_ref.
func (db *DB) SaveJobResult(ctx context.Context, jobID uuid.UUID, payload any) (uuid.UUID, error) {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal result payload: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_results (job_id, payload)
		 VALUES ($1, $2)
		 ON CONFLICT (job_id) DO UPDATE SET payload = $2, created_at = NOW()
		 RETURNING id`,
		jobID, jsonBytes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job result: %w", err)
	}
	return id, nil
}

// GetJobResult retrieves a job's persisted output payload. Returns nil if no
// result exists.
func (db *DB) GetJobResult(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM job_results WHERE job_id = $1`, jobID,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job result: %w", err)
	}
	return payload, nil
}
