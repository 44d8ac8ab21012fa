// Package orchestrator owns the research job lifecycle: admission, queueing,
// worker-pool execution and result retrieval.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/trendcast/internal/limits"
	"github.com/jonathan/trendcast/internal/sources"
	"github.com/jonathan/trendcast/internal/types"
)

// Store is the persistence surface the orchestrator needs. *db.DB satisfies
// it; tests use an in-memory fake.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetConfiguration(ctx context.Context, id uuid.UUID) (*types.Configuration, error)
	TouchConfigurationLastRun(ctx context.Context, id uuid.UUID) error
	CreateJob(ctx context.Context, j *types.Job) (*types.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ListQueuedJobIDs(ctx context.Context) ([]uuid.UUID, error)
	ListJobs(ctx context.Context, userID uuid.UUID, status *types.JobStatus, limit int) ([]types.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status types.JobStatus, errMsg *string, resultsRef *uuid.UUID) error
	CountActiveJobs(ctx context.Context, userID uuid.UUID) (int, error)
	SaveJobResult(ctx context.Context, jobID uuid.UUID, payload any) (uuid.UUID, error)
	GetJobResult(ctx context.Context, jobID uuid.UUID) ([]byte, error)
}

// Analyzer turns raw data into insights.
type Analyzer interface {
	Analyze(ctx context.Context, raw *types.RawData, cfg *types.Configuration) (*types.AnalyzedData, error)
}

// CreateJobRequest is the input to CreateAndSchedule.
type CreateJobRequest struct {
	ConfigurationID uuid.UUID
	JobType         types.JobType
	Priority        types.JobPriority
	SourceJobID     *uuid.UUID
	Metadata        map[string]any
}

// Options tunes the worker pool.
type Options struct {
	Workers   int
	QueueSize int
}

// DefaultOptions returns the default pool sizing.
func DefaultOptions() Options {
	return Options{Workers: 4, QueueSize: 256}
}

// Orchestrator runs jobs from a buffered in-process queue on a fixed pool of
// workers. Job rows are the durable record; the queue only carries IDs, so a
// job that was cancelled while queued is skipped when its ID is drained, and
// an ID that reaches the pool twice executes once. Start sweeps rows still
// QUEUED in the database back into the queue, which covers both process
// restarts and IDs dropped by a full queue.
type Orchestrator struct {
	store    Store
	registry *sources.Registry
	analyzer Analyzer

	queue chan uuid.UUID
	wg    sync.WaitGroup

	// mu guards started/stopped and, as a read lock, spans queue sends so
	// Stop cannot close the queue under a blocked sender.
	mu      sync.RWMutex
	started bool
	stopped bool

	workers int
}

// New creates an orchestrator. Call Start before scheduling jobs.
func New(store Store, registry *sources.Registry, analyzer Analyzer, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultOptions().QueueSize
	}
	return &Orchestrator{
		store:    store,
		registry: registry,
		analyzer: analyzer,
		queue:    make(chan uuid.UUID, opts.QueueSize),
		workers:  opts.Workers,
	}
}

// Start launches the worker pool and a one-shot sweep that re-enqueues job
// rows left QUEUED by a previous process. Workers run until Stop is called
// and the queue is drained; ctx bounds the execution of individual jobs.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for jobID := range o.queue {
				o.execute(ctx, jobID)
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.resumeQueued(ctx)
	}()
}

// resumeQueued feeds every QUEUED row back into the pool. Racing with live
// enqueues is fine: workers skip any drained ID whose row is no longer
// QUEUED, so a double-enqueued job still runs once.
func (o *Orchestrator) resumeQueued(ctx context.Context) {
	ids, err := o.store.ListQueuedJobIDs(ctx)
	if err != nil {
		log.Printf("failed to list queued jobs for resume: %v", err)
		return
	}
	for _, id := range ids {
		if !o.enqueueWait(ctx, id) {
			return
		}
	}
	if len(ids) > 0 {
		log.Printf("re-enqueued %d queued jobs", len(ids))
	}
}

// enqueueWait blocks until the ID is queued, the orchestrator stops, or ctx
// ends. The read lock spans the send; Stop takes the write lock before
// closing the queue, so the send never hits a closed channel.
func (o *Orchestrator) enqueueWait(ctx context.Context, jobID uuid.UUID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return false
	}
	select {
	case o.queue <- jobID:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop closes the queue and waits for in-flight and queued jobs to finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	o.mu.Unlock()

	close(o.queue)
	o.wg.Wait()
}

// CreateAndSchedule validates a request, applies the tier admission gate,
// persists a QUEUED job row and hands its ID to the worker pool. No row is
// created when any check fails.
func (o *Orchestrator) CreateAndSchedule(ctx context.Context, userID uuid.UUID, req CreateJobRequest) (*types.Job, error) {
	if !req.JobType.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown job type: %s", req.JobType)}
	}

	user, err := o.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", ID: userID.String()}
	}

	cfg, err := o.store.GetConfiguration(ctx, req.ConfigurationID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !visibleTo(user, cfg.UserID) {
		return nil, &NotFoundError{Resource: "configuration", ID: req.ConfigurationID.String()}
	}
	if !cfg.IsActive {
		return nil, &InvalidStateError{Message: "configuration is deactivated"}
	}
	if cfg.SourceType == types.SourceVideo {
		return nil, &InvalidStateError{Message: "video configurations run as workflows, not jobs"}
	}
	if !limits.SourceAllowed(user, cfg.SourceType) {
		return nil, &InvalidStateError{Message: fmt.Sprintf("source %s is not available on the %s tier", cfg.SourceType, user.SubscriptionTier)}
	}

	if req.JobType == types.JobTypeAnalyze {
		if req.SourceJobID == nil {
			return nil, &ValidationError{Message: "analyze jobs require source_job_id"}
		}
		src, err := o.store.GetJob(ctx, *req.SourceJobID)
		if err != nil {
			return nil, err
		}
		if src == nil || !visibleTo(user, src.UserID) {
			return nil, &NotFoundError{Resource: "job", ID: req.SourceJobID.String()}
		}
		if src.Status != types.JobStatusCompleted {
			return nil, &InvalidStateError{Message: fmt.Sprintf("source job is %s, not completed", src.Status)}
		}
		if src.JobType != types.JobTypeRaw {
			return nil, &InvalidStateError{Message: fmt.Sprintf("source job is a %s job; analyze jobs consume raw job results", src.JobType)}
		}
		if src.SourceType != cfg.SourceType {
			return nil, &ValidationError{Message: "source job targets a different source than the configuration"}
		}
	}

	if err := limits.CheckAdmission(ctx, o.store, user, 1); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = types.PriorityNormal
	}

	job, err := o.store.CreateJob(ctx, &types.Job{
		UserID:          userID,
		WorkspaceID:     cfg.WorkspaceID,
		ConfigurationID: &cfg.ID,
		SourceJobID:     req.SourceJobID,
		SourceType:      cfg.SourceType,
		JobType:         req.JobType,
		Priority:        priority,
		Metadata:        req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	o.enqueue(job.ID)
	return job, nil
}

// enqueue hands a job ID to the pool without blocking the API request. When
// the orchestrator is stopped or the queue is full the row stays QUEUED; the
// sweep in Start re-enqueues it on the next process start.
func (o *Orchestrator) enqueue(jobID uuid.UUID) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return
	}
	select {
	case o.queue <- jobID:
	default:
		log.Printf("job queue full, leaving job %s queued for the startup sweep", jobID)
	}
}

// GetStatus returns a job visible to the given user. Other users' jobs are
// reported as not found rather than forbidden; admins see every job.
func (o *Orchestrator) GetStatus(ctx context.Context, userID, jobID uuid.UUID) (*types.Job, error) {
	caller, err := o.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || !visibleTo(caller, job.UserID) {
		return nil, &NotFoundError{Resource: "job", ID: jobID.String()}
	}
	return job, nil
}

// visibleTo reports whether the caller may act on a resource owned by
// ownerID. Admins may act on any resource.
func visibleTo(caller *types.User, ownerID uuid.UUID) bool {
	if caller == nil {
		return false
	}
	return caller.IsAdmin || caller.ID == ownerID
}

// List returns a user's jobs, optionally filtered by status.
func (o *Orchestrator) List(ctx context.Context, userID uuid.UUID, status *types.JobStatus, limit int) ([]types.Job, error) {
	return o.store.ListJobs(ctx, userID, status, limit)
}

// GetResult returns the persisted result payload of a completed job.
func (o *Orchestrator) GetResult(ctx context.Context, userID, jobID uuid.UUID) (json.RawMessage, error) {
	job, err := o.GetStatus(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != types.JobStatusCompleted {
		return nil, &NotReadyError{JobID: jobID.String(), Status: string(job.Status)}
	}

	payload, err := o.store.GetJobResult(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &NotFoundError{Resource: "job result", ID: jobID.String()}
	}
	return payload, nil
}

// Cancel cancels a job that has not started yet. Running jobs are not
// interruptible; terminal jobs cannot change state.
func (o *Orchestrator) Cancel(ctx context.Context, userID, jobID uuid.UUID) (*types.Job, error) {
	job, err := o.GetStatus(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanTransition(types.JobStatusCancelled) {
		return nil, &InvalidStateError{Message: fmt.Sprintf("cannot cancel job in %s state", job.Status)}
	}

	if err := o.store.UpdateJobStatus(ctx, jobID, types.JobStatusCancelled, nil, nil); err != nil {
		return nil, err
	}
	return o.store.GetJob(ctx, jobID)
}

// execute runs one job end to end. All failures are recorded on the job row;
// nothing is retried and nothing propagates to the worker loop.
func (o *Orchestrator) execute(ctx context.Context, jobID uuid.UUID) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		log.Printf("failed to load job %s: %v", jobID, err)
		return
	}
	if job == nil || job.Status != types.JobStatusQueued {
		// Cancelled while queued, or stale queue entry.
		return
	}

	if err := o.store.UpdateJobStatus(ctx, jobID, types.JobStatusRunning, nil, nil); err != nil {
		log.Printf("failed to mark job %s running: %v", jobID, err)
		return
	}

	payload, err := o.run(ctx, job)
	if err != nil {
		msg := err.Error()
		if uerr := o.store.UpdateJobStatus(ctx, jobID, types.JobStatusFailed, &msg, nil); uerr != nil {
			log.Printf("failed to mark job %s failed: %v", jobID, uerr)
		}
		log.Printf("job %s failed: %v", jobID, err)
		return
	}

	resultID, err := o.store.SaveJobResult(ctx, jobID, payload)
	if err != nil {
		msg := "failed to persist result: " + err.Error()
		if uerr := o.store.UpdateJobStatus(ctx, jobID, types.JobStatusFailed, &msg, nil); uerr != nil {
			log.Printf("failed to mark job %s failed: %v", jobID, uerr)
		}
		return
	}

	if err := o.store.UpdateJobStatus(ctx, jobID, types.JobStatusCompleted, nil, &resultID); err != nil {
		log.Printf("failed to mark job %s completed: %v", jobID, err)
		return
	}
	if job.ConfigurationID != nil {
		if err := o.store.TouchConfigurationLastRun(ctx, *job.ConfigurationID); err != nil {
			log.Printf("failed to touch configuration %s: %v", *job.ConfigurationID, err)
		}
	}
}

// run produces the job's result payload according to its type.
func (o *Orchestrator) run(ctx context.Context, job *types.Job) (any, error) {
	var cfg *types.Configuration
	if job.ConfigurationID != nil {
		var err error
		cfg, err = o.store.GetConfiguration(ctx, *job.ConfigurationID)
		if err != nil {
			return nil, err
		}
	}

	var raw *types.RawData
	switch job.JobType {
	case types.JobTypeRaw, types.JobTypePipeline:
		client, err := o.registry.For(job.SourceType)
		if err != nil {
			return nil, err
		}
		var params map[string]any
		if cfg != nil {
			params = cfg.Parameters
		}
		raw, err = client.Collect(ctx, params)
		if err != nil {
			return nil, err
		}
	case types.JobTypeAnalyze:
		if job.SourceJobID == nil {
			return nil, &ValidationError{Message: "analyze job has no source_job_id"}
		}
		payload, err := o.store.GetJobResult(ctx, *job.SourceJobID)
		if err != nil {
			return nil, err
		}
		if payload == nil {
			return nil, &NotFoundError{Resource: "job result", ID: job.SourceJobID.String()}
		}
		raw = &types.RawData{}
		if err := json.Unmarshal(payload, raw); err != nil {
			return nil, fmt.Errorf("failed to decode source job result: %w", err)
		}
	}

	if job.JobType == types.JobTypeRaw {
		return raw, nil
	}

	analyzed, err := o.analyzer.Analyze(ctx, raw, cfg)
	if err != nil {
		return nil, err
	}
	if job.JobType == types.JobTypePipeline {
		return struct {
			Raw      *types.RawData      `json:"raw"`
			Analyzed *types.AnalyzedData `json:"analyzed"`
		}{Raw: raw, Analyzed: analyzed}, nil
	}
	return analyzed, nil
}
