package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/trendcast/internal/limits"
	"github.com/jonathan/trendcast/internal/orchestrator"
	"github.com/jonathan/trendcast/internal/schemas"
	"github.com/jonathan/trendcast/internal/workflow"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"quota exceeded", &limits.QuotaExceededError{Resource: "jobs", Limit: 1, Current: 1}, http.StatusTooManyRequests},
		{"job not found", &orchestrator.NotFoundError{Resource: "job"}, http.StatusNotFound},
		{"workflow not found", &workflow.NotFoundError{ID: "x"}, http.StatusNotFound},
		{"job not ready", &orchestrator.NotReadyError{}, http.StatusConflict},
		{"job invalid state", &orchestrator.InvalidStateError{Message: "m"}, http.StatusConflict},
		{"workflow invalid state", &workflow.InvalidStateError{Message: "m"}, http.StatusConflict},
		{"job validation", &orchestrator.ValidationError{Message: "m"}, http.StatusBadRequest},
		{"parameter schema", &schemas.ValidationError{}, http.StatusBadRequest},
		{"email exists", &ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{"bad credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"user not found", &ErrUserNotFound{}, http.StatusNotFound},
		{"request validation", &ErrValidation{Field: "email"}, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_Wrapped(t *testing.T) {
	err := fmt.Errorf("creating job: %w", &limits.QuotaExceededError{Resource: "jobs"})
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(err))
}
