package predicate

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes compilation errors.
type ErrorCode string

const (
	// ErrCodeMalformedRange indicates a FeatureRange with from > to.
	ErrCodeMalformedRange ErrorCode = "MALFORMED_RANGE"

	// ErrCodeInvalidOptions indicates unusable compile options.
	ErrCodeInvalidOptions ErrorCode = "INVALID_OPTIONS"

	// ErrCodeCapacityExceeded indicates the tree needs more interval numbers
	// than fit in a 16-bit half of a packed interval.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"

	// ErrCodeInvariantViolation indicates a tree shape a stage must never
	// receive, i.e. the pipeline ran out of order.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
)

// Error is a compilation failure. Stages never return partial results
// alongside an Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the feature key involved, if any.
	Key string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Invariantf returns an ErrCodeInvariantViolation error.
func Invariantf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvariantViolation, Message: fmt.Sprintf(format, args...)}
}

// IsMalformedError returns true if err is a malformed range error.
// Uses errors.As to handle wrapped errors.
func IsMalformedError(err error) bool {
	return hasCode(err, ErrCodeMalformedRange)
}

// IsCapacityError returns true if err is a capacity exceeded error.
func IsCapacityError(err error) bool {
	return hasCode(err, ErrCodeCapacityExceeded)
}

// IsInvariantError returns true if err is an invariant violation.
func IsInvariantError(err error) bool {
	return hasCode(err, ErrCodeInvariantViolation)
}

// IsOptionsError returns true if err is an invalid options error.
func IsOptionsError(err error) bool {
	return hasCode(err, ErrCodeInvalidOptions)
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
