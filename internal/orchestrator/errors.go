package orchestrator

import "fmt"

// NotFoundError covers both a missing resource and a resource owned by a
// different user. The two cases are indistinguishable to callers so that job
// IDs do not leak across accounts.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NotReadyError is returned when a job's result is requested before the job
// has completed.
type NotReadyError struct {
	JobID  string
	Status string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("job %s has no result yet (status %s)", e.JobID, e.Status)
}

// InvalidStateError is returned when an operation is not allowed in the
// resource's current state, e.g. cancelling a job that already started.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// ValidationError is returned for structurally invalid requests.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
