package insight

import "errors"

// Sentinel errors returned by generators. Callers use errors.Is to
// decide whether to fall back to the rule-based generator.
var (
	// ErrInvalidConfig indicates the generator was configured incorrectly.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrContentBlocked indicates the model refused the content.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrInvalidResponse indicates the model returned something unusable.
	ErrInvalidResponse = errors.New("invalid model response")

	// ErrTransientFailure indicates a retriable failure that exhausted its
	// retries.
	ErrTransientFailure = errors.New("transient generation failure")
)
