package models

import (
	"errors"
	"time"
)

// RouteStatus represents the lifecycle status of a published route
type RouteStatus string

const (
	RouteStatusActive    RouteStatus = "active"
	RouteStatusCompleted RouteStatus = "completed"
	RouteStatusCancelled RouteStatus = "cancelled"
)

// Route represents a driver-published trip offer. Seat capacity is fixed at
// creation; remaining availability is always derived from confirmed bookings
// and never stored.
type Route struct {
	ID                string      `json:"id" db:"id"`
	DriverID          string      `json:"driver_id" db:"driver_id"`
	StartCityID       string      `json:"start_city_id" db:"start_city_id"`
	EndCityID         string      `json:"end_city_id" db:"end_city_id"`
	Departure         time.Time   `json:"departure" db:"departure"`
	Arrival           *time.Time  `json:"arrival,omitempty" db:"arrival"`
	SeatCapacity      int         `json:"seat_capacity" db:"seat_capacity"`
	PricePerSeat      float64     `json:"price_per_seat" db:"price_per_seat"`
	VehicleID         *string     `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Description       *string     `json:"description,omitempty" db:"description"`
	DistanceKm        *float64    `json:"distance_km,omitempty" db:"distance_km"`
	TravelTimeMinutes *int        `json:"travel_time_minutes,omitempty" db:"travel_time_minutes"`
	Status            RouteStatus `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
}

// RouteDetail is a route joined with driver, city and vehicle display data
// plus the derived remaining-seat count.
type RouteDetail struct {
	ID             string     `json:"id" db:"id"`
	DriverID       string     `json:"driver_id" db:"driver_id"`
	DriverName     string     `json:"driver_name" db:"driver_name"`
	StartCity      string     `json:"start_city" db:"start_city"`
	EndCity        string     `json:"end_city" db:"end_city"`
	Departure      time.Time  `json:"departure" db:"departure"`
	Arrival        *time.Time `json:"arrival,omitempty" db:"arrival"`
	SeatCapacity   int        `json:"seat_capacity" db:"seat_capacity"`
	RemainingSeats int        `json:"remaining_seats" db:"remaining_seats"`
	PricePerSeat   float64    `json:"price_per_seat" db:"price_per_seat"`
	Description    *string    `json:"description,omitempty" db:"description"`
	VehicleName    string     `json:"vehicle_name" db:"vehicle_name"`
	ComfortLevel   string     `json:"comfort_level"`
	Status         string     `json:"status" db:"status"`
	Stops          []string   `json:"stops"`
}

// CreateRouteStopInput is one itinerary stop in a create-route request
type CreateRouteStopInput struct {
	CityID              string     `json:"city_id" binding:"required"`
	MinArrivalTime      *time.Time `json:"min_arrival_time,omitempty"`
	MaximalDelayMinutes *int       `json:"maximal_delay_minutes,omitempty"`
}

// CreateRouteRequest represents the request to publish a route
type CreateRouteRequest struct {
	StartCityID  string                 `json:"start_city_id" binding:"required"`
	EndCityID    string                 `json:"end_city_id" binding:"required"`
	Departure    time.Time              `json:"departure" binding:"required"`
	Arrival      *time.Time             `json:"arrival,omitempty"`
	SeatCapacity int                    `json:"seat_capacity" binding:"required,min=1"`
	PricePerSeat float64                `json:"price_per_seat" binding:"required"`
	VehicleID    *string                `json:"vehicle_id,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Stops        []CreateRouteStopInput `json:"stops,omitempty"`
}

// Validate validates the create route request
func (r *CreateRouteRequest) Validate() error {
	if r.SeatCapacity < 1 {
		return errors.New("seat_capacity must be at least 1")
	}

	if r.PricePerSeat < 0 {
		return errors.New("price_per_seat cannot be negative")
	}

	if r.StartCityID == r.EndCityID {
		return errors.New("start and end city must differ")
	}

	if r.Arrival != nil && r.Arrival.Before(r.Departure) {
		return errors.New("arrival cannot be before departure")
	}

	return nil
}

// RouteSearchCriteria holds the structured search predicates for route
// listing. Values are bound as query parameters, never concatenated into SQL.
type RouteSearchCriteria struct {
	DepartureCity    string   `form:"departure_city"`
	DestinationCity  string   `form:"destination_city"`
	MinPrice         *float64 `form:"min_price"`
	MaxPrice         *float64 `form:"max_price"`
	MinComfortLevel  string   `form:"min_comfort_level"`
	MinRemainingSeat int      `form:"min_remaining_seats"`
}
