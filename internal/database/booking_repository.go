package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table.
//
// The capacity-sensitive mutations (Create, Approve) run as a single
// transaction that locks the route row before recomputing the confirmed-seat
// sum, so two concurrent requests racing for the last seats are serialized
// and the sum of confirmed seats can never exceed the route's capacity.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// lockedRoute is the route state read under FOR UPDATE
type lockedRoute struct {
	SeatCapacity int     `db:"seat_capacity"`
	PricePerSeat float64 `db:"price_per_seat"`
	DriverID     string  `db:"driver_id"`
}

const confirmedSeatsQuery = `
	SELECT COALESCE(SUM(seats_booked), 0)
	FROM bookings
	WHERE route_id = $1
	  AND status = 'confirmed'
`

// Create inserts a new pending booking after checking the requested seats
// against the seats still free on the route. The price is snapshotted from
// the route's current price per seat. The availability check counts
// confirmed bookings only: several pending requests may together exceed
// capacity, the surplus is resolved first-come-first-served at approval.
func (r *BookingRepository) Create(routeID, passengerID string, seats int) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var route lockedRoute
	err = tx.Get(&route, `
		SELECT seat_capacity, price_per_seat, driver_id
		FROM routes
		WHERE id = $1
		FOR UPDATE`, routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to lock route: %w", err)
	}

	var confirmed int
	if err := tx.Get(&confirmed, confirmedSeatsQuery, routeID); err != nil {
		return nil, fmt.Errorf("failed to sum confirmed seats: %w", err)
	}

	remaining := route.SeatCapacity - confirmed
	if seats > remaining {
		return nil, &CapacityExceededError{Requested: seats, Remaining: remaining}
	}

	booking := &models.Booking{
		ID:          uuid.New().String(),
		RouteID:     routeID,
		PassengerID: passengerID,
		SeatsBooked: seats,
		PricePaid:   float64(seats) * route.PricePerSeat,
		Status:      models.BookingStatusPending,
	}

	err = tx.QueryRow(`
		INSERT INTO bookings (id, route_id, passenger_id, seats_booked, price_paid, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		booking.ID, booking.RouteID, booking.PassengerID,
		booking.SeatsBooked, booking.PricePaid, booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return booking, nil
}

// bookingForUpdate is the booking+route state read under FOR UPDATE by the
// transition methods
type bookingForUpdate struct {
	ID           string               `db:"id"`
	RouteID      string               `db:"route_id"`
	PassengerID  string               `db:"passenger_id"`
	SeatsBooked  int                  `db:"seats_booked"`
	PricePaid    float64              `db:"price_paid"`
	Status       models.BookingStatus `db:"status"`
	DriverID     string               `db:"driver_id"`
	SeatCapacity int                  `db:"seat_capacity"`
}

const selectBookingForUpdate = `
	SELECT b.id, b.route_id, b.passenger_id, b.seats_booked, b.price_paid, b.status,
	       r.driver_id, r.seat_capacity
	FROM bookings b
	JOIN routes r ON r.id = b.route_id
	WHERE b.id = $1
	FOR UPDATE OF b, r
`

func (b *bookingForUpdate) toModel() *models.Booking {
	return &models.Booking{
		ID:          b.ID,
		RouteID:     b.RouteID,
		PassengerID: b.PassengerID,
		SeatsBooked: b.SeatsBooked,
		PricePaid:   b.PricePaid,
		Status:      b.Status,
	}
}

// Approve moves a pending booking to confirmed on behalf of the route's
// driver. The remaining-seat count is re-checked inside the same
// transaction as the status write, because several pending bookings may
// have been accepted optimistically at creation time.
func (r *BookingRepository) Approve(bookingID, driverID string) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var b bookingForUpdate
	err = tx.Get(&b, selectBookingForUpdate, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	if b.DriverID != driverID {
		return nil, ErrForbidden
	}
	if b.Status != models.BookingStatusPending {
		return nil, ErrInvalidStateTransition
	}

	var confirmed int
	if err := tx.Get(&confirmed, confirmedSeatsQuery, b.RouteID); err != nil {
		return nil, fmt.Errorf("failed to sum confirmed seats: %w", err)
	}

	remaining := b.SeatCapacity - confirmed
	if b.SeatsBooked > remaining {
		return nil, &CapacityExceededError{Requested: b.SeatsBooked, Remaining: remaining}
	}

	if _, err := tx.Exec(`
		UPDATE bookings SET status = 'confirmed', updated_at = NOW()
		WHERE id = $1`, bookingID); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	booking := b.toModel()
	booking.Status = models.BookingStatusConfirmed
	return booking, nil
}

// Reject moves a pending booking to rejected on behalf of the route's
// driver. Rejection never increases confirmed seats, so no capacity check.
func (r *BookingRepository) Reject(bookingID, driverID string) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var b bookingForUpdate
	err = tx.Get(&b, selectBookingForUpdate, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	if b.DriverID != driverID {
		return nil, ErrForbidden
	}
	if b.Status != models.BookingStatusPending {
		return nil, ErrInvalidStateTransition
	}

	if _, err := tx.Exec(`
		UPDATE bookings SET status = 'rejected', updated_at = NOW()
		WHERE id = $1`, bookingID); err != nil {
		return nil, fmt.Errorf("failed to reject booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	booking := b.toModel()
	booking.Status = models.BookingStatusRejected
	return booking, nil
}

// Cancel moves a pending or confirmed booking to cancelled on behalf of the
// owning passenger, recording the reason. Cancelling frees seats implicitly
// since availability is derived from confirmed bookings only. It also
// returns the route's driver id so the caller can deliver the cancellation
// notice.
func (r *BookingRepository) Cancel(bookingID, passengerID, reason string) (*models.Booking, string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var b bookingForUpdate
	err = tx.Get(&b, selectBookingForUpdate, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrBookingNotFound
		}
		return nil, "", fmt.Errorf("failed to lock booking: %w", err)
	}

	booking := b.toModel()
	if b.PassengerID != passengerID {
		return nil, "", ErrForbidden
	}
	// Repeated cancellations are rejected, not silently accepted
	if booking.Status == models.BookingStatusCancelled {
		return nil, "", ErrAlreadyCancelled
	}
	if booking.IsTerminal() {
		return nil, "", ErrInvalidStateTransition
	}

	if _, err := tx.Exec(`
		UPDATE bookings
		SET status = 'cancelled', cancellation_reason = $2, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1`, bookingID, reason); err != nil {
		return nil, "", fmt.Errorf("failed to cancel booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit cancellation: %w", err)
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = &reason
	return booking, b.DriverID, nil
}

// RemainingSeats returns the number of seats still free on a route:
// capacity minus the sum of seats across confirmed bookings only.
func (r *BookingRepository) RemainingSeats(routeID string) (int, error) {
	query := `
		SELECT r.seat_capacity - COALESCE(SUM(b.seats_booked) FILTER (WHERE b.status = 'confirmed'), 0)
		FROM routes r
		LEFT JOIN bookings b ON b.route_id = r.id
		WHERE r.id = $1
		GROUP BY r.seat_capacity
	`

	var remaining int
	err := r.db.QueryRow(query, routeID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrRouteNotFound
		}
		return 0, fmt.Errorf("failed to compute remaining seats: %w", err)
	}

	return remaining, nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `
		SELECT id, route_id, passenger_id, seats_booked, price_paid, status,
		       cancellation_reason, cancelled_at, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	booking := &models.Booking{}
	if err := r.db.Get(booking, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// ListByPassenger retrieves all bookings made by a passenger, newest first
func (r *BookingRepository) ListByPassenger(passengerID string) ([]models.BookingDetail, error) {
	query := `
		SELECT b.id, b.route_id, b.status, b.seats_booked, b.price_paid,
		       sc.name AS start_city, ec.name AS end_city,
		       r.departure, u.username AS driver_name, b.created_at
		FROM bookings b
		JOIN routes r ON r.id = b.route_id
		JOIN cities sc ON sc.id = r.start_city_id
		JOIN cities ec ON ec.id = r.end_city_id
		JOIN users u ON u.id = r.driver_id
		WHERE b.passenger_id = $1
		ORDER BY b.created_at DESC
	`

	bookings := []models.BookingDetail{}
	if err := r.db.Select(&bookings, query, passengerID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// ListByDriver retrieves all booking requests across a driver's routes,
// pending first, then newest first
func (r *BookingRepository) ListByDriver(driverID string) ([]models.BookingRequestDetail, error) {
	query := `
		SELECT b.id, b.route_id, b.status, b.seats_booked, b.price_paid,
		       sc.name AS start_city, ec.name AS end_city, r.departure,
		       p.username AS passenger_name, p.email AS passenger_email, b.created_at
		FROM bookings b
		JOIN routes r ON r.id = b.route_id
		JOIN cities sc ON sc.id = r.start_city_id
		JOIN cities ec ON ec.id = r.end_city_id
		JOIN users p ON p.id = b.passenger_id
		WHERE r.driver_id = $1
		ORDER BY CASE WHEN b.status = 'pending' THEN 0 ELSE 1 END, b.created_at DESC
	`

	requests := []models.BookingRequestDetail{}
	if err := r.db.Select(&requests, query, driverID); err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}

	return requests, nil
}
