package domain

import "errors"

// Failure taxonomy for the booking saga, classified with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrDependencyUnavailable: a collaborator timed out or was unreachable.
	// Safe for the caller to retry.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrDependencyRejected: an authoritative negative answer (payment
	// declined, pricing refused). Never retried automatically.
	ErrDependencyRejected = errors.New("dependency rejected")

	ErrInvalidTransition = errors.New("invalid status transition")
)
