package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotInitialized = errors.New("memory bank not initialized")
	ErrAlreadyExists  = errors.New("file already exists")
)

// ErrorCode is the stable identifier of an orchestration failure
type ErrorCode string

const (
	CodePathInvalid     ErrorCode = "PATH_INVALID"
	CodeReadFailed      ErrorCode = "READ_FAILED"
	CodeTemplateFailed  ErrorCode = "TEMPLATE_FAILED"
	CodeWriteFailed     ErrorCode = "WRITE_FAILED"
	CodeMkdirFailed     ErrorCode = "MKDIR_FAILED"
	CodeUnknownDocument ErrorCode = "UNKNOWN_DOCUMENT"
	CodeNotInitialized  ErrorCode = "NOT_INITIALIZED"
	CodeAlreadyExists   ErrorCode = "ALREADY_EXISTS"
)

// OrchestrationError wraps any failure surfaced by the orchestrator with a
// stable code. The cause stays reachable through errors.Is and errors.As.
type OrchestrationError struct {
	Code   ErrorCode
	Op     string // e.g. "load", "update", "write"
	Target string // Document key or relative path
	Err    error
}

func (e *OrchestrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Target, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Target, e.Code)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first OrchestrationError in err's chain,
// or "" when there is none.
func CodeOf(err error) ErrorCode {
	var oe *OrchestrationError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
