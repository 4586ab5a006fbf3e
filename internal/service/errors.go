// Package service implements the unit session workflows on top of the
// store, safety, scoring and insight layers.
package service

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a service failure.
// The API layer maps kinds to HTTP status codes; handlers never inspect
// error strings.
type ErrorKind string

// Service error kinds.
const (
	// KindNotFound: the session or related entity does not exist.
	KindNotFound ErrorKind = "not_found"

	// KindExpired: the session's TTL elapsed before the operation.
	KindExpired ErrorKind = "expired"

	// KindBlockedBySafetyHold: the session is paused after a RED detection
	// and rejects answers and completion.
	KindBlockedBySafetyHold ErrorKind = "blocked_by_safety_hold"

	// KindInvalidState: the operation is not legal in the session's
	// current lifecycle state.
	KindInvalidState ErrorKind = "invalid_state"

	// KindAnswerTooLong: the submitted answer exceeds the length cap.
	KindAnswerTooLong ErrorKind = "answer_too_long"

	// KindNoAnswers: completion was requested with no recorded answers.
	KindNoAnswers ErrorKind = "no_answers"

	// KindDailyLimitExceeded: the owner used up the day's scoring quota.
	KindDailyLimitExceeded ErrorKind = "daily_limit_exceeded"

	// KindInternal: an unexpected infrastructure failure.
	KindInternal ErrorKind = "internal"
)

// ServiceError carries an error kind alongside a human-readable message
// and the underlying cause.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError with the given kind, message and
// wrapped cause.
func NewServiceError(kind ErrorKind, message string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the error kind from an error chain, or KindInternal if
// no ServiceError is present.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
