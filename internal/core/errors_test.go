package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := &Error{Code: "TEST", Message: "something broke"}
	if got := err.Error(); got != "[TEST] something broke" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := WrapError(err, fmt.Errorf("root cause"))
	if got := wrapped.Error(); got != "[TEST] something broke: root cause" {
		t.Errorf("wrapped Error() = %q", got)
	}
}

func TestError_Is(t *testing.T) {
	cause := fmt.Errorf("ticker 1234 window 2024-01-05")
	err := WrapError(ErrInsufficientData, cause)

	if !errors.Is(err, ErrInsufficientData) {
		t.Error("wrapped error should match its base by code")
	}
	if errors.Is(err, ErrMissingEntryBar) {
		t.Error("should not match a different code")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("io failure")
	err := WrapError(ErrArchiveConflict, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestErrorCodes_Distinct(t *testing.T) {
	all := []*Error{
		ErrNoData, ErrInsufficientData, ErrMissingEntryBar,
		ErrNoTrigger, ErrExhaustedWindow, ErrSplitAmbiguous, ErrArchiveConflict,
		ErrSnapshotCorrupt, ErrConfigInvalid, ErrConfigMissing,
	}
	seen := map[string]bool{}
	for _, e := range all {
		if seen[e.Code] {
			t.Errorf("duplicate error code %s", e.Code)
		}
		seen[e.Code] = true
	}
}
