package models

import (
	"errors"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a passenger's request for seats on a route.
//
// Lifecycle: pending is the sole initial state; the route's driver moves a
// pending booking to confirmed or rejected; the passenger may cancel a
// pending or confirmed booking. Rejected and cancelled are terminal.
// PricePaid is frozen at creation (seats × the route's price per seat at
// that moment) and does not follow later price changes.
type Booking struct {
	ID                 string        `json:"id" db:"id"`
	RouteID            string        `json:"route_id" db:"route_id"`
	PassengerID        string        `json:"passenger_id" db:"passenger_id"`
	SeatsBooked        int           `json:"seats_booked" db:"seats_booked"`
	PricePaid          float64       `json:"price_paid" db:"price_paid"`
	Status             BookingStatus `json:"status" db:"status"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether no further status transition is allowed
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusRejected || b.Status == BookingStatusCancelled
}

// CreateBookingRequest represents the request to book seats on a route
type CreateBookingRequest struct {
	RouteID     string `json:"route_id" binding:"required"`
	SeatsBooked int    `json:"seats_booked" binding:"required,min=1"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.SeatsBooked < 1 {
		return errors.New("seats_booked must be at least 1")
	}
	return nil
}

// CancelBookingRequest represents the passenger's cancellation request.
// A reason is mandatory; it is forwarded to the driver in chat.
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BookingDetail is a booking joined with route display data, as shown in
// the passenger's "my bookings" list
type BookingDetail struct {
	ID          string        `json:"id" db:"id"`
	RouteID     string        `json:"route_id" db:"route_id"`
	Status      BookingStatus `json:"status" db:"status"`
	SeatsBooked int           `json:"seats_booked" db:"seats_booked"`
	PricePaid   float64       `json:"price_paid" db:"price_paid"`
	StartCity   string        `json:"start_city" db:"start_city"`
	EndCity     string        `json:"end_city" db:"end_city"`
	Departure   time.Time     `json:"departure" db:"departure"`
	DriverName  string        `json:"driver_name" db:"driver_name"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// BookingRequestDetail is a booking joined with passenger display data, as
// shown in the driver's incoming-request list
type BookingRequestDetail struct {
	ID             string        `json:"id" db:"id"`
	RouteID        string        `json:"route_id" db:"route_id"`
	Status         BookingStatus `json:"status" db:"status"`
	SeatsBooked    int           `json:"seats_booked" db:"seats_booked"`
	PricePaid      float64       `json:"price_paid" db:"price_paid"`
	StartCity      string        `json:"start_city" db:"start_city"`
	EndCity        string        `json:"end_city" db:"end_city"`
	Departure      time.Time     `json:"departure" db:"departure"`
	PassengerName  string        `json:"passenger_name" db:"passenger_name"`
	PassengerEmail string        `json:"passenger_email" db:"passenger_email"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}
