package querydoc

import (
	"errors"
	"fmt"
)

// ParseError reports a malformed document or expression.
type ParseError struct {
	// Field names the document field being parsed (e.g. "where", "columns[1]").
	Field string

	// Message is a human-readable description.
	Message string

	// Offset is the byte offset in the expression, or -1 when not applicable.
	Offset int
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (at offset %d)", e.Field, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func newParseError(field string, offset int, format string, args ...any) *ParseError {
	return &ParseError{Field: field, Message: fmt.Sprintf(format, args...), Offset: offset}
}
