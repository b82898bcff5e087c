package types

import "fmt"

// Error codes used across the engine. Every recoverable failure maps to one
// of these three categories.
const (
	CodeNotFound     = "not-found"
	CodeInvalidState = "invalid-state"
	CodeUnavailable  = "unavailable"
)

// ProcessError provides structured error information for engine results.
type ProcessError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a ProcessError with the same code, so callers
// can match on the category sentinels below with errors.Is.
func (e *ProcessError) Is(target error) bool {
	pe, ok := target.(*ProcessError)
	return ok && pe.Code == e.Code
}

// Category sentinels for errors.Is checks.
var (
	ErrNotFound     = &ProcessError{Code: CodeNotFound, Message: "not found"}
	ErrInvalidState = &ProcessError{Code: CodeInvalidState, Message: "invalid state"}
	ErrUnavailable  = &ProcessError{Code: CodeUnavailable, Message: "unavailable"}
)

// NewProcessError creates a new structured engine error.
func NewProcessError(code string, message string, details map[string]interface{}) *ProcessError {
	return &ProcessError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NotFoundf builds a not-found error with a formatted message.
func NotFoundf(format string, args ...interface{}) *ProcessError {
	return &ProcessError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidStatef builds an invalid-state error with a formatted message.
func InvalidStatef(format string, args ...interface{}) *ProcessError {
	return &ProcessError{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Unavailablef builds an unavailable error with a formatted message.
// It is used for I/O failures and lock-acquisition timeouts.
func Unavailablef(format string, args ...interface{}) *ProcessError {
	return &ProcessError{Code: CodeUnavailable, Message: fmt.Sprintf(format, args...)}
}
