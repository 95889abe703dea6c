package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// UnmappableReference signals an upstream record referencing an entity that has
// no local mapping yet. Recoverable by re-running after the dependency sync.
type UnmappableReference struct {
	Kind       string
	ExternalID string
}

func (e *UnmappableReference) Error() string {
	return fmt.Sprintf("no local mapping for %s with upstream id %s", e.Kind, e.ExternalID)
}

// AllocationExhausted signals that no resource in the candidate pool is
// conflict-free for the requested window. It must never degrade into an
// overlapping assignment.
type AllocationExhausted struct {
	TenantID  string
	PoolSize  int
	StartDate string
	EndDate   string
}

func (e *AllocationExhausted) Error() string {
	return fmt.Sprintf("no conflict-free resource among %d candidates for window [%s, %s)", e.PoolSize, e.StartDate, e.EndDate)
}

// TransientFetchFailure signals a network or upstream error on a single date
// chunk after retries were exhausted. The chunk is skipped and reported.
type TransientFetchFailure struct {
	StartDate string
	EndDate   string
	Attempts  int
	Err       error
}

func (e *TransientFetchFailure) Error() string {
	return fmt.Sprintf("upstream fetch for chunk [%s, %s) failed after %d attempts: %v", e.StartDate, e.EndDate, e.Attempts, e.Err)
}

func (e *TransientFetchFailure) Unwrap() error {
	return e.Err
}

// ConsistencyUnrepairable signals that the auditor could not find any
// conflict-free placement for one or more reservations. Fatal for the run.
type ConsistencyUnrepairable struct {
	TenantID       string
	ReservationIDs []string
}

func (e *ConsistencyUnrepairable) Error() string {
	return fmt.Sprintf("%d reservation(s) could not be repaired for tenant %s", len(e.ReservationIDs), e.TenantID)
}
