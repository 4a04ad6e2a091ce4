package services

import (
	"github.com/samkorsel/carpool-backend/internal/database"
)

// AvailabilityService is the single source of truth for "remaining seats"
// on a route. Availability is always derived from confirmed bookings and
// never stored.
type AvailabilityService struct {
	bookingRepo *database.BookingRepository
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(bookingRepo *database.BookingRepository) *AvailabilityService {
	return &AvailabilityService{bookingRepo: bookingRepo}
}

// RemainingSeats returns the route's capacity minus the sum of seats across
// confirmed bookings, computed in one consistent read. Returns
// database.ErrRouteNotFound when the route does not exist.
func (s *AvailabilityService) RemainingSeats(routeID string) (int, error) {
	return s.bookingRepo.RemainingSeats(routeID)
}
