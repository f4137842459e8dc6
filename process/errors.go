package process

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common conditions.
var (
	// ErrInvalidInput indicates a command, argument, environment variable or
	// path was rejected by validation, or an admission check refused the
	// request. No process is ever created when this error is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSpawn indicates the operating system refused to create the process.
	ErrSpawn = errors.New("failed to spawn process")

	// ErrTimeout indicates the process exceeded its allotted execution time.
	// The process is guaranteed killed and reaped before this is returned.
	ErrTimeout = errors.New("process timed out")

	// ErrSignal indicates delivering a signal to a process failed.
	ErrSignal = errors.New("signal delivery failed")

	// ErrProcessTerminated indicates an operation on a guard whose process
	// has already been reaped.
	ErrProcessTerminated = errors.New("process already terminated")

	// ErrPermissionDenied indicates the OS refused a privileged operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrResourceLimit indicates a platform resource limit operation failed.
	ErrResourceLimit = errors.New("resource limit error")
)

// ErrorCode provides structured error classification.
type ErrorCode string

const (
	// ErrCodeValidationFailed indicates input validation failure.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// ErrCodeSpawnFailed indicates the OS spawn call failed.
	ErrCodeSpawnFailed ErrorCode = "SPAWN_FAILED"

	// ErrCodeTimeout indicates execution timeout.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeSignalFailed indicates signal delivery failure.
	ErrCodeSignalFailed ErrorCode = "SIGNAL_FAILED"

	// ErrCodeTerminated indicates use of an already-reaped guard.
	ErrCodeTerminated ErrorCode = "PROCESS_TERMINATED"

	// ErrCodePermission indicates a permission failure.
	ErrCodePermission ErrorCode = "PERMISSION_DENIED"

	// ErrCodeResourceLimit indicates a resource limit failure.
	ErrCodeResourceLimit ErrorCode = "RESOURCE_LIMIT"

	// ErrCodeInternalError indicates an internal error.
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ProcessError provides detailed error information for process operations.
type ProcessError struct {
	// Op is the operation that failed.
	Op string

	// Name is the display name of the process involved.
	Name string

	// Err is the underlying error.
	Err error

	// Code is the structured error code.
	Code ErrorCode

	// Details provides human-readable details.
	Details string

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error returns the error message.
func (e *ProcessError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Name, e.Details)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target.
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// TimeoutError reports that a process outlived its configured timeout.
// The process is already killed and reaped when this error is observed.
type TimeoutError struct {
	ProcessError
	// Seconds is the configured timeout in whole seconds.
	Seconds uint64
}

// Unwrap exposes the embedded ProcessError so errors.As can classify a
// timeout like any other process error.
func (e *TimeoutError) Unwrap() error {
	return &e.ProcessError
}

// TerminatedError reports use of a guard whose process was already reaped.
type TerminatedError struct {
	ProcessError
	// PID is the process id the guard used to own.
	PID int
}

// Unwrap exposes the embedded ProcessError.
func (e *TerminatedError) Unwrap() error {
	return &e.ProcessError
}

// Error constructors for consistent error creation.

// NewInvalidInputError creates a validation rejection error.
func NewInvalidInputError(name, details string) error {
	return &ProcessError{
		Op:        "validate",
		Name:      name,
		Err:       ErrInvalidInput,
		Code:      ErrCodeValidationFailed,
		Details:   details,
		Retryable: false,
	}
}

// NewSpawnError creates an error for a failed OS spawn.
func NewSpawnError(name string, cause error) error {
	return &ProcessError{
		Op:        "spawn",
		Name:      name,
		Err:       fmt.Errorf("%w: %v", ErrSpawn, cause),
		Code:      ErrCodeSpawnFailed,
		Retryable: true,
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(name string, timeout time.Duration) error {
	return &TimeoutError{
		ProcessError: ProcessError{
			Op:        "wait",
			Name:      name,
			Err:       ErrTimeout,
			Code:      ErrCodeTimeout,
			Details:   fmt.Sprintf("process exceeded timeout of %s", timeout),
			Retryable: true,
		},
		Seconds: uint64(timeout / time.Second),
	}
}

// NewSignalError creates a signal delivery error.
func NewSignalError(name string, cause error) error {
	return &ProcessError{
		Op:        "signal",
		Name:      name,
		Err:       fmt.Errorf("%w: %v", ErrSignal, cause),
		Code:      ErrCodeSignalFailed,
		Retryable: false,
	}
}

// NewTerminatedError creates an already-terminated error.
func NewTerminatedError(name string, pid int) error {
	return &TerminatedError{
		ProcessError: ProcessError{
			Op:        "guard",
			Name:      name,
			Err:       ErrProcessTerminated,
			Code:      ErrCodeTerminated,
			Details:   fmt.Sprintf("process %d already terminated", pid),
			Retryable: false,
		},
		PID: pid,
	}
}

// NewPermissionError creates a permission denied error.
func NewPermissionError(op string, cause error) error {
	return &ProcessError{
		Op:        op,
		Name:      "self",
		Err:       fmt.Errorf("%w: %v", ErrPermissionDenied, cause),
		Code:      ErrCodePermission,
		Retryable: false,
	}
}

// NewResourceLimitError creates a resource limit error.
func NewResourceLimitError(op, details string) error {
	return &ProcessError{
		Op:        op,
		Name:      "self",
		Err:       ErrResourceLimit,
		Code:      ErrCodeResourceLimit,
		Details:   details,
		Retryable: true,
	}
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var perr *ProcessError
	if errors.As(err, &perr) {
		return perr.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var perr *ProcessError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrCodeInternalError
}
