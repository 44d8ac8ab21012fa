package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/trendcast/internal/limits"
	"github.com/jonathan/trendcast/internal/orchestrator"
	"github.com/jonathan/trendcast/internal/schemas"
	"github.com/jonathan/trendcast/internal/workflow"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for a service error.
// Quota rejections map to 429 so clients can back off; invalid-state
// operations map to 409.
func HTTPStatus(err error) int {
	var (
		quotaErr        *limits.QuotaExceededError
		jobNotFound     *orchestrator.NotFoundError
		jobNotReady     *orchestrator.NotReadyError
		jobInvalidState *orchestrator.InvalidStateError
		jobValidation   *orchestrator.ValidationError
		wfNotFound      *workflow.NotFoundError
		wfInvalidState  *workflow.InvalidStateError
		paramsInvalid   *schemas.ValidationError
	)

	switch {
	case errors.As(err, &quotaErr):
		return http.StatusTooManyRequests
	case errors.As(err, &jobNotFound), errors.As(err, &wfNotFound):
		return http.StatusNotFound
	case errors.As(err, &jobNotReady), errors.As(err, &jobInvalidState), errors.As(err, &wfInvalidState):
		return http.StatusConflict
	case errors.As(err, &jobValidation), errors.As(err, &paramsInvalid):
		return http.StatusBadRequest
	}

	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrUserNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
