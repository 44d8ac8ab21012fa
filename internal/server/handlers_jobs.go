package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/trendcast/internal/orchestrator"
	"github.com/jonathan/trendcast/internal/server/middleware"
	"github.com/jonathan/trendcast/internal/types"
)

// createJobRequest is the request body for POST /jobs.
type createJobRequest struct {
	ConfigurationID uuid.UUID         `json:"configuration_id"`
	JobType         types.JobType     `json:"job_type"`
	Priority        types.JobPriority `json:"priority,omitempty"`
	SourceJobID     *uuid.UUID        `json:"source_job_id,omitempty"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
}

// handleCreateJob admits and schedules a research job. The response is the
// QUEUED job row; execution happens on the worker pool.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ConfigurationID == uuid.Nil {
		s.errorResponse(w, http.StatusBadRequest, "configuration_id is required")
		return
	}

	job, err := s.orchestrator.CreateAndSchedule(r.Context(), userID, orchestrator.CreateJobRequest{
		ConfigurationID: req.ConfigurationID,
		JobType:         req.JobType,
		Priority:        req.Priority,
		SourceJobID:     req.SourceJobID,
		Metadata:        req.Metadata,
	})
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, job)
}

// handleListJobs lists the user's jobs, newest first. Supports ?status= and
// ?limit=.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var status *types.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := types.JobStatus(raw)
		switch st {
		case types.JobStatusQueued, types.JobStatusRunning, types.JobStatusCompleted,
			types.JobStatusFailed, types.JobStatusCancelled:
			status = &st
		default:
			s.errorResponse(w, http.StatusBadRequest, "Unknown status filter")
			return
		}
	}

	jobs, err := s.orchestrator.List(r.Context(), userID, status, parseLimit(r, 50))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []types.Job{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// handleGetJob returns a job's current state.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := s.jobRequest(w, r)
	if !ok {
		return
	}

	job, err := s.orchestrator.GetStatus(r.Context(), userID, jobID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleGetJobResult returns a completed job's result payload.
func (s *Server) handleGetJobResult(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := s.jobRequest(w, r)
	if !ok {
		return
	}

	payload, err := s.orchestrator.GetResult(r.Context(), userID, jobID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleCancelJob cancels a queued job.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := s.jobRequest(w, r)
	if !ok {
		return
	}

	job, err := s.orchestrator.Cancel(r.Context(), userID, jobID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// jobRequest extracts the authenticated user and the {id} path value.
func (s *Server) jobRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, jobID, true
}

// parseLimit reads the ?limit= query parameter with a default.
func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > 1000 {
		return 1000
	}
	return n
}
