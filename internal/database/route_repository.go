package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// RouteRepository handles database operations for routes and their
// itinerary stops
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a route together with its itinerary stops in one
// transaction
func (r *RouteRepository) Create(route *models.Route, stops []models.CreateRouteStopInput) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if route.ID == "" {
		route.ID = uuid.New().String()
	}
	if route.Status == "" {
		route.Status = models.RouteStatusActive
	}

	err = tx.QueryRow(`
		INSERT INTO routes (
			id, driver_id, start_city_id, end_city_id, departure, arrival,
			seat_capacity, price_per_seat, vehicle_id, description,
			distance_km, travel_time_minutes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`,
		route.ID, route.DriverID, route.StartCityID, route.EndCityID,
		route.Departure, route.Arrival, route.SeatCapacity, route.PricePerSeat,
		route.VehicleID, route.Description, route.DistanceKm,
		route.TravelTimeMinutes, route.Status,
	).Scan(&route.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}

	for i, stop := range stops {
		if _, err := tx.Exec(`
			INSERT INTO route_stops (route_id, city_id, stop_order, min_arrival_time, maximal_delay_minutes)
			VALUES ($1, $2, $3, $4, $5)`,
			route.ID, stop.CityID, i+1, stop.MinArrivalTime, stop.MaximalDelayMinutes); err != nil {
			return fmt.Errorf("failed to create route stop: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit route: %w", err)
	}

	return nil
}

// GetByID retrieves a route by ID
func (r *RouteRepository) GetByID(routeID string) (*models.Route, error) {
	query := `
		SELECT id, driver_id, start_city_id, end_city_id, departure, arrival,
		       seat_capacity, price_per_seat, vehicle_id, description,
		       distance_km, travel_time_minutes, status, created_at
		FROM routes
		WHERE id = $1
	`

	route := &models.Route{}
	if err := r.db.Get(route, query, routeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	return route, nil
}

// ConversationInfo is the route data needed to provision the passenger ↔
// driver conversation
type ConversationInfo struct {
	DriverID  string `db:"driver_id"`
	StartCity string `db:"start_city"`
	EndCity   string `db:"end_city"`
}

// GetConversationInfo returns the route's driver and its endpoint city
// names
func (r *RouteRepository) GetConversationInfo(routeID string) (*ConversationInfo, error) {
	query := `
		SELECT r.driver_id, sc.name AS start_city, ec.name AS end_city
		FROM routes r
		JOIN cities sc ON sc.id = r.start_city_id
		JOIN cities ec ON ec.id = r.end_city_id
		WHERE r.id = $1
	`

	info := &ConversationInfo{}
	if err := r.db.Get(info, query, routeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route info: %w", err)
	}

	return info, nil
}

// routeDetailRow carries one row of the detail/search query before the
// comfort level is mapped for display
type routeDetailRow struct {
	models.RouteDetail
	ComfortLevelInt *int `db:"comfort_level"`
}

const routeDetailColumns = `
	r.id, r.driver_id, u.username AS driver_name,
	sc.name AS start_city, ec.name AS end_city,
	r.departure, r.arrival, r.seat_capacity,
	r.seat_capacity - COALESCE(SUM(b.seats_booked) FILTER (WHERE b.status = 'confirmed'), 0) AS remaining_seats,
	r.price_per_seat, r.description,
	COALESCE(v.brand || ' ' || v.model, 'Not specified') AS vehicle_name,
	v.comfort_level, r.status
`

const routeDetailJoins = `
	FROM routes r
	JOIN users u ON u.id = r.driver_id
	JOIN cities sc ON sc.id = r.start_city_id
	JOIN cities ec ON ec.id = r.end_city_id
	LEFT JOIN vehicles v ON v.id = r.vehicle_id
	LEFT JOIN bookings b ON b.route_id = r.id
`

const routeDetailGroupBy = `
	GROUP BY r.id, u.username, sc.name, ec.name, v.brand, v.model, v.comfort_level
`

// GetDetail returns a route with display data and the derived remaining
// seat count
func (r *RouteRepository) GetDetail(routeID string) (*models.RouteDetail, error) {
	query := `SELECT ` + routeDetailColumns + routeDetailJoins + ` WHERE r.id = $1 ` + routeDetailGroupBy

	var row routeDetailRow
	if err := r.db.Get(&row, query, routeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route detail: %w", err)
	}

	detail := row.RouteDetail
	detail.ComfortLevel = comfortLevelFor(row.ComfortLevelInt)
	stops, err := r.GetStopNames(routeID)
	if err != nil {
		return nil, err
	}
	detail.Stops = stops

	return &detail, nil
}

// Search returns active routes with seats still free, matching the given
// structured criteria. Every predicate value is bound as a query parameter.
func (r *RouteRepository) Search(criteria models.RouteSearchCriteria) ([]models.RouteDetail, error) {
	query := `SELECT ` + routeDetailColumns + routeDetailJoins + ` WHERE r.status = 'active'`
	args := []interface{}{}

	next := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if criteria.DepartureCity != "" {
		query += ` AND sc.name ILIKE ` + next("%"+criteria.DepartureCity+"%")
	}
	if criteria.DestinationCity != "" {
		query += ` AND ec.name ILIKE ` + next("%"+criteria.DestinationCity+"%")
	}
	if criteria.MinPrice != nil {
		query += ` AND r.price_per_seat >= ` + next(*criteria.MinPrice)
	}
	if criteria.MaxPrice != nil {
		query += ` AND r.price_per_seat <= ` + next(*criteria.MaxPrice)
	}
	if criteria.MinComfortLevel != "" {
		if level, ok := models.ComfortLevelFromString(criteria.MinComfortLevel); ok {
			query += ` AND (v.comfort_level >= ` + next(level) + ` OR v.comfort_level IS NULL)`
		}
	}

	query += routeDetailGroupBy
	minSeats := 1
	if criteria.MinRemainingSeat > minSeats {
		minSeats = criteria.MinRemainingSeat
	}
	query += ` HAVING r.seat_capacity - COALESCE(SUM(b.seats_booked) FILTER (WHERE b.status = 'confirmed'), 0) >= ` + next(minSeats)
	query += ` ORDER BY r.departure`

	rows := []routeDetailRow{}
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search routes: %w", err)
	}

	details := make([]models.RouteDetail, 0, len(rows))
	for _, row := range rows {
		detail := row.RouteDetail
		detail.ComfortLevel = comfortLevelFor(row.ComfortLevelInt)
		stops, err := r.GetStopNames(detail.ID)
		if err != nil {
			return nil, err
		}
		detail.Stops = stops
		details = append(details, detail)
	}

	return details, nil
}

// ListByDriver retrieves all routes published by a driver, newest first
func (r *RouteRepository) ListByDriver(driverID string) ([]models.Route, error) {
	query := `
		SELECT id, driver_id, start_city_id, end_city_id, departure, arrival,
		       seat_capacity, price_per_seat, vehicle_id, description,
		       distance_km, travel_time_minutes, status, created_at
		FROM routes
		WHERE driver_id = $1
		ORDER BY departure DESC
	`

	routes := []models.Route{}
	if err := r.db.Select(&routes, query, driverID); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	return routes, nil
}

// UpdateStatus changes a route's lifecycle status, enforcing driver
// ownership
func (r *RouteRepository) UpdateStatus(routeID, driverID string, status models.RouteStatus) error {
	result, err := r.db.Exec(`
		UPDATE routes SET status = $3
		WHERE id = $1 AND driver_id = $2`,
		routeID, driverID, status)
	if err != nil {
		return fmt.Errorf("failed to update route status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a missing route from someone else's route
		if _, err := r.GetByID(routeID); err != nil {
			return err
		}
		return ErrForbidden
	}

	return nil
}

// GetStopNames returns the itinerary city names of a route in stop order
func (r *RouteRepository) GetStopNames(routeID string) ([]string, error) {
	query := `
		SELECT c.name
		FROM route_stops s
		JOIN cities c ON c.id = s.city_id
		WHERE s.route_id = $1
		ORDER BY s.stop_order
	`

	stops := []string{}
	if err := r.db.Select(&stops, query, routeID); err != nil {
		return nil, fmt.Errorf("failed to list route stops: %w", err)
	}

	return stops, nil
}

func comfortLevelFor(level *int) string {
	if level == nil {
		return models.ComfortLevelString(models.ComfortStandard)
	}
	return models.ComfortLevelString(*level)
}
