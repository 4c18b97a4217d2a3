package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Tracking state and input errors
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeCorruptData ErrorCode = "CORRUPT_DATA"

	// Environment errors
	ErrCodeDependencyMissing ErrorCode = "DEPENDENCY_MISSING"

	// Invocation errors
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Process exit codes surfaced to the firmware macro layer.
const (
	ExitOK              = 0
	ExitNotFound        = 1
	ExitCorrupt         = 2
	ExitInvalidArgument = 3
)

// ToolchangeError represents a structured error with context
type ToolchangeError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *ToolchangeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ToolchangeError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ToolchangeError) WithDetail(key string, value interface{}) *ToolchangeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *ToolchangeError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new ToolchangeError
func New(code ErrorCode, message string) *ToolchangeError {
	return &ToolchangeError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ToolchangeError
func Wrap(err error, code ErrorCode, message string) *ToolchangeError {
	return &ToolchangeError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the first ToolchangeError in err's chain.
func As(err error) (*ToolchangeError, bool) {
	for err != nil {
		if tcErr, ok := err.(*ToolchangeError); ok {
			return tcErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Is checks if an error is a specific ToolchangeError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	tcErr, ok := As(err)
	if !ok {
		return ""
	}
	return tcErr.Code
}

// ExitCode maps an error to the process exit code. Errors without a code
// are treated as internal failures and share the corrupt-data exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err) {
	case ErrCodeNotFound:
		return ExitNotFound
	case ErrCodeInvalidArgument:
		return ExitInvalidArgument
	default:
		return ExitCorrupt
	}
}
