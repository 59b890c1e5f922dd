package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrValidation ErrorCode = iota + 1000
	ErrRateLimited
	ErrStateConflict
	ErrUpstream
	ErrNotFound
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Fields  []string  `json:"fields,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on the code so callers can compare against the
// sentinel constructors without caring about message or wrapped cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewValidation reports user input that failed field rules. Fields carries
// the names of the offending fields for the UI to highlight.
func NewValidation(fields ...string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: fmt.Sprintf("validation failed: %s", strings.Join(fields, ", ")),
		Fields:  fields,
	}
}

// NewRateLimited reports a local rate-limit trip. The caller should surface
// a retry-later message; no outbound call was attempted.
func NewRateLimited() *AppError {
	return &AppError{
		Code:    ErrRateLimited,
		Message: "too many requests, please wait a moment",
	}
}

// NewStateConflict reports a transition the session's guards forbid. This is
// a programming-contract violation, not expected user behavior.
func NewStateConflict(message string) *AppError {
	return &AppError{
		Code:    ErrStateConflict,
		Message: message,
	}
}

// NewUpstream reports a failed or unsuccessful remote scheduling call.
func NewUpstream(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Message: message,
		Err:     err,
	}
}

func NewNotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}
