package ledger

import (
	"errors"
	"fmt"

	"github.com/roach88/ledgerkv/internal/record"
)

// Code categorizes service errors.
type Code string

const (
	// CodeNotFound indicates a requested or referenced record is absent.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInvalidInput indicates caller-supplied data failed validation.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeInternal indicates an allocation or persistence failure.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is returned by every Service operation that fails.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Kind is the record kind involved, if any.
	Kind record.Kind

	// ID is the identifier that was looked up (NotFound only).
	ID uint64

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause (Internal only).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the Code of err, or "" if err is not a service error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND service error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsInvalidInput reports whether err is an INVALID_INPUT service error.
func IsInvalidInput(err error) bool {
	return CodeOf(err) == CodeInvalidInput
}

// IsInternal reports whether err is an INTERNAL_ERROR service error.
func IsInternal(err error) bool {
	return CodeOf(err) == CodeInternal
}

func notFound(kind record.Kind, id uint64, format string, args ...any) *Error {
	return &Error{
		Code:    CodeNotFound,
		Kind:    kind,
		ID:      id,
		Message: fmt.Sprintf(format, args...),
	}
}

func invalidInput(kind record.Kind, format string, args ...any) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func internal(kind record.Kind, op string, err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Kind:    kind,
		Message: op,
		Err:     err,
	}
}
