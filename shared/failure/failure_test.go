package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"suitesync/shared/failure"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	if f.Error() != "test error message" {
		t.Errorf("expected error message to be 'test error message', got %s", f.Error())
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{
			name: "bad request failure",
			err:  failure.BadRequestFromString("bad input"),
			code: http.StatusBadRequest,
		},
		{
			name: "unauthorized failure",
			err:  failure.Unauthorized("no key"),
			code: http.StatusUnauthorized,
		},
		{
			name: "wrapped failure",
			err:  fmt.Errorf("outer: %w", failure.NotFound("reservation")),
			code: http.StatusNotFound,
		},
		{
			name: "plain error defaults to internal",
			err:  errors.New("boom"),
			code: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.GetCode(tt.err); got != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, got)
			}
		})
	}
}

func TestAllocationExhausted_As(t *testing.T) {
	var target *failure.AllocationExhausted

	err := fmt.Errorf("allocation: %w", &failure.AllocationExhausted{TenantID: "t-1", PoolSize: 3, StartDate: "2026-03-01", EndDate: "2026-03-05"})

	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to match AllocationExhausted")
	}

	if target.PoolSize != 3 {
		t.Errorf("expected pool size 3, got %d", target.PoolSize)
	}
}

func TestUnmappableReference_As(t *testing.T) {
	var target *failure.UnmappableReference

	err := fmt.Errorf("resolving record: %w", &failure.UnmappableReference{Kind: "customer", ExternalID: "owner-9"})

	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to match UnmappableReference")
	}

	want := "no local mapping for customer with upstream id owner-9"
	if target.Error() != want {
		t.Errorf("expected %q, got %q", want, target.Error())
	}
}

func TestTransientFetchFailure_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &failure.TransientFetchFailure{StartDate: "2026-03-01", EndDate: "2026-03-05", Attempts: 3, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected the fetch failure to unwrap to its cause")
	}
}

func TestConsistencyUnrepairable_Error(t *testing.T) {
	err := &failure.ConsistencyUnrepairable{TenantID: "t-1", ReservationIDs: []string{"r-1", "r-2"}}

	want := "2 reservation(s) could not be repaired for tenant t-1"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
