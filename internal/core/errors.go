// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors. A candidate hitting one of these is skipped and
	// tallied, never recorded as a trade.
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "too few bars for the requested window"}
	ErrMissingEntryBar  = &Error{Code: "MISSING_ENTRY_BAR", Message: "no bar after signal date"}

	// Simulation errors. NO_TRIGGER means the expiry rule was absent
	// from the rule set, which is a configuration bug.
	// EXHAUSTED_WINDOW is the distinct data condition: the window ended
	// before any rule, expiry included, could fire.
	ErrNoTrigger       = &Error{Code: "NO_TRIGGER", Message: "window exhausted with no rule firing"}
	ErrExhaustedWindow = &Error{Code: "EXHAUSTED_WINDOW", Message: "window ended before any exit rule fired"}

	// Split detection. Non-fatal: detection falls back to ratio 1.0.
	ErrSplitAmbiguous = &Error{Code: "SPLIT_AMBIGUOUS", Message: "split ratio outside tolerance of known ratios"}

	// Archive errors. A conflict aborts the run; the merge must be
	// retried from a fresh read, never partially applied.
	ErrArchiveConflict = &Error{Code: "ARCHIVE_CONFLICT", Message: "concurrent archive writer detected"}
	ErrSnapshotCorrupt = &Error{Code: "SNAPSHOT_CORRUPT", Message: "archive snapshot failed to decode"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
