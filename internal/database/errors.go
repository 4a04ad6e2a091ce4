package database

import (
	"errors"
	"fmt"
)

// Typed failures shared by the repositories and the service layer. Handlers
// map these to HTTP statuses; anything else is treated as an internal error.
var (
	// ErrRouteNotFound is returned when the referenced route does not exist
	ErrRouteNotFound = errors.New("route not found")

	// ErrBookingNotFound is returned when the referenced booking does not
	// exist or is not visible to the acting user
	ErrBookingNotFound = errors.New("booking not found")

	// ErrConversationNotFound is returned when a conversation lookup
	// matches nothing
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrUserNotFound is returned when the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrVehicleNotFound is returned when the referenced vehicle does not
	// exist
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrCityNotFound is returned when the referenced city does not exist
	ErrCityNotFound = errors.New("city not found")

	// ErrForbidden is returned when the acting user is not allowed to
	// operate on the target entity (wrong driver, wrong passenger,
	// non-participant)
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidStateTransition is returned when a booking is not in a
	// state that permits the requested transition
	ErrInvalidStateTransition = errors.New("invalid booking state transition")

	// ErrAlreadyCancelled is returned on repeated cancellation attempts
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrDuplicateReview is returned when the booking was already reviewed
	// by the same reviewer
	ErrDuplicateReview = errors.New("booking already reviewed")
)

// CapacityExceededError is returned when granting a booking would push the
// sum of confirmed seats over the route's capacity. Remaining reports how
// many seats were actually left at check time.
type CapacityExceededError struct {
	Requested int
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("only %d seats remain, %d requested", e.Remaining, e.Requested)
}
