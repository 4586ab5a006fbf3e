// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidUnitType is returned when a unit type code is not recognized.
	ErrInvalidUnitType = errors.New("invalid unit type")

	// ErrInvalidSessionStatus is returned when a session status is not valid.
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// ErrInvalidTransition is returned when a session status change is not
	// permitted by the lifecycle state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrQuestionIndexRegression is returned when an update would move a
	// session's question index backwards. The index is monotonic.
	ErrQuestionIndexRegression = errors.New("question index cannot decrease")

	// ErrInvalidRiskLevel is returned when a risk level is not valid.
	ErrInvalidRiskLevel = errors.New("invalid risk level")
)
