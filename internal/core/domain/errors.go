package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Returned when a uniqueness key is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexSync indicates the record store committed but the index write
	// that should have followed failed. A later rebuild repairs the index.
	ErrIndexSync = errors.New("index synchronisation failed")

	// ErrSearchUnavailable indicates the search engine is not configured.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrEnrichmentFailed indicates the enrichment API answered but reported
	// no usable data for the requested key.
	ErrEnrichmentFailed = errors.New("enrichment failed")

	// ErrEnrichmentUnavailable indicates the enrichment API is not configured.
	ErrEnrichmentUnavailable = errors.New("enrichment service unavailable")
)

// Administrative steps reported by StepError.
const (
	StepEnsureIndex = "ensure-index"
	StepClear       = "clear"
	StepFetch       = "fetch-published"
	StepRebuild     = "rebuild"
	StepConfigure   = "configure"
	StepWait        = "wait-for-task"
	StepStats       = "stats"
)

// StepError reports which step of a multi-step index operation failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step name carried by err, or "" if none.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
