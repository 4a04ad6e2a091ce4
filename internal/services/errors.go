package services

import "errors"

// Input validation failures raised before any repository call
var (
	// ErrInvalidSeats is returned when the requested seat count is below 1
	ErrInvalidSeats = errors.New("at least 1 seat must be requested")

	// ErrBlankReason is returned when a cancellation carries no reason
	ErrBlankReason = errors.New("a cancellation reason is required")
)
