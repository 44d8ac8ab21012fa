package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/trendcast/internal/limits"
	"github.com/jonathan/trendcast/internal/schemas"
	"github.com/jonathan/trendcast/internal/server/middleware"
	"github.com/jonathan/trendcast/internal/types"
)

// createConfigurationRequest is the request body for POST /configurations.
type createConfigurationRequest struct {
	SourceType     types.SourceType `json:"source_type"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Parameters     map[string]any   `json:"parameters,omitempty"`
	AutoRunEnabled bool             `json:"auto_run_enabled,omitempty"`
}

// handleCreateConfiguration creates a configuration after checking the
// source against the user's tier, the configuration quota, and the
// parameters against the source's schema.
func (s *Server) handleCreateConfiguration(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.SourceType.Valid() {
		s.errorResponse(w, http.StatusBadRequest, "Unknown source_type")
		return
	}
	if req.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}
	if err := schemas.ValidateParameters(req.SourceType, req.Parameters); err != nil {
		s.serviceError(w, err)
		return
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
	if !limits.SourceAllowed(user, req.SourceType) {
		s.errorResponse(w, http.StatusForbidden, "Source not available on your subscription tier")
		return
	}
	if err := limits.CheckConfigurationQuota(r.Context(), s.db, user); err != nil {
		s.serviceError(w, err)
		return
	}

	created, err := s.db.CreateConfiguration(r.Context(), &types.Configuration{
		UserID:         userID,
		WorkspaceID:    userID,
		SourceType:     req.SourceType,
		Name:           req.Name,
		Description:    req.Description,
		Parameters:     req.Parameters,
		AutoRunEnabled: req.AutoRunEnabled,
	})
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

// handleListConfigurations lists the user's configurations. Pass
// ?include_inactive=true to include deactivated ones.
func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	configs, err := s.db.ListConfigurations(r.Context(), userID, includeInactive)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if configs == nil {
		configs = []types.Configuration{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"configurations": configs})
}

// handleGetConfiguration returns one of the user's configurations.
func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	_, cfg, ok := s.loadOwnedConfiguration(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

// handleUpdateConfiguration applies a partial update. source_type cannot be
// changed after creation.
func (s *Server) handleUpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	_, cfg, ok := s.loadOwnedConfiguration(w, r)
	if !ok {
		return
	}

	var upd types.ConfigurationUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.Parameters != nil {
		if err := schemas.ValidateParameters(cfg.SourceType, upd.Parameters); err != nil {
			s.serviceError(w, err)
			return
		}
	}

	updated, err := s.db.UpdateConfiguration(r.Context(), cfg.ID, upd)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteConfiguration soft-deletes a configuration. Existing jobs keep
// their reference to it.
func (s *Server) handleDeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	_, cfg, ok := s.loadOwnedConfiguration(w, r)
	if !ok {
		return
	}

	if err := s.db.DeactivateConfiguration(r.Context(), cfg.ID); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetLimits returns the caller's tier limits.
func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
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
	s.jsonResponse(w, http.StatusOK, limits.ForUser(user))
}

// loadOwnedConfiguration parses the {id} path value and loads the
// configuration, writing the error response itself when anything fails.
// Configurations owned by other users read as not found.
func (s *Server) loadOwnedConfiguration(w http.ResponseWriter, r *http.Request) (uuid.UUID, *types.Configuration, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid configuration ID")
		return uuid.Nil, nil, false
	}

	cfg, err := s.db.GetConfiguration(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return uuid.Nil, nil, false
	}
	if cfg == nil || cfg.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Configuration not found")
		return uuid.Nil, nil, false
	}
	return userID, cfg, true
}
