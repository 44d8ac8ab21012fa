package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/trendcast/internal/limits"
	"github.com/jonathan/trendcast/internal/server/middleware"
	"github.com/jonathan/trendcast/internal/types"
)

// workflowExecutionTimeout bounds one background workflow run end to end,
// video rendering included.
const workflowExecutionTimeout = 30 * time.Minute

// createWorkflowRequest is the request body for POST /workflows.
type createWorkflowRequest struct {
	ConfigurationID *uuid.UUID           `json:"configuration_id,omitempty"`
	Config          types.WorkflowConfig `json:"config"`
}

// approvalRequest is the request body for POST /workflows/{id}/approval.
type approvalRequest struct {
	Approved bool    `json:"approved"`
	Feedback *string `json:"feedback,omitempty"`
}

// handleCreateWorkflow creates a workflow and runs it in the background. The
// response is the PENDING row; clients poll GET /workflows/{id} for progress.
func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Config.ResearchTopics) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "config.research_topics is required")
		return
	}
	for _, platform := range req.Config.PlatformsToResearch {
		if platform == types.SourceVideo || !platform.Valid() {
			s.errorResponse(w, http.StatusBadRequest, "Invalid research platform: "+string(platform))
			return
		}
	}

	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if user == nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !limits.SourceAllowed(user, types.SourceVideo) {
		s.errorResponse(w, http.StatusForbidden, "Video workflows are not available on your subscription tier")
		return
	}

	created, err := s.sequencer.Start(r.Context(), userID, req.Config, req.ConfigurationID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), workflowExecutionTimeout)
		defer cancel()
		if err := s.sequencer.Execute(ctx, id); err != nil {
			log.Printf("workflow %s failed: %v", id, err)
		}
	}(created.ID)

	s.jsonResponse(w, http.StatusAccepted, created)
}

// handleGetWorkflow returns a workflow's current state and stage outputs.
func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid workflow ID")
		return
	}

	wf, err := s.sequencer.Get(r.Context(), userID, workflowID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, wf)
}

// handleListPendingApprovals lists the user's workflows paused at the
// approval gate, oldest first.
func (s *Server) handleListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	workflows, err := s.sequencer.ListPendingApprovals(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if workflows == nil {
		workflows = []types.WorkflowExecution{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"workflows": workflows})
}

// handleWorkflowApproval records an approval decision. Approval publishes
// synchronously; rejection finalizes the workflow without publishing.
func (s *Server) handleWorkflowApproval(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid workflow ID")
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wf, err := s.sequencer.ApproveAndPublish(r.Context(), userID, workflowID, req.Approved, req.Feedback)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, wf)
}
