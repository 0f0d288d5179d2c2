package domain

import "errors"

// Sentinel errors for the co-pilot core. Callers classify with errors.Is.
var (
	// ErrInvalidInput marks malformed caller input (bad symbol, side, price).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable marks a failed or timed-out external adapter call.
	// The evaluation loop degrades on it, it never propagates fatally.
	ErrUnavailable = errors.New("unavailable")

	// ErrNotFound marks a reference to an unknown session.
	ErrNotFound = errors.New("not found")
)
