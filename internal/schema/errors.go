package schema

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// LoadError reports a problem building or loading a catalog.
type LoadError struct {
	Code    ErrorCode
	Message string
	Pos     token.Pos // CUE position if available
}

// ErrorCode categorizes catalog errors.
type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeLoadFailed     ErrorCode = "LOAD_FAILED"
	ErrCodeBuildFailed    ErrorCode = "BUILD_FAILED"
	ErrCodeDuplicateTable ErrorCode = "DUPLICATE_TABLE"
	ErrCodeInvalidType    ErrorCode = "INVALID_TYPE"
	ErrCodeUnknownTable   ErrorCode = "UNKNOWN_TABLE"
	ErrCodeUnknownColumn  ErrorCode = "UNKNOWN_COLUMN"
	ErrCodeInvalidView    ErrorCode = "INVALID_VIEW"
	ErrCodeViewCycle      ErrorCode = "VIEW_CYCLE"
)

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode returns true if err is or wraps a *LoadError with the given code.
// Errors joined with errors.Join are searched too.
func HasCode(err error, code ErrorCode) bool {
	var le *LoadError
	if errors.As(err, &le) && le.Code == code {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
	}
	return false
}

func loadErrorf(code ErrorCode, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}
