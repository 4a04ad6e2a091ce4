package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// VehicleRepository handles database operations for the vehicles table
type VehicleRepository struct {
	db DB
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create inserts a new vehicle
func (r *VehicleRepository) Create(vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}

	_, err := r.db.Exec(`
		INSERT INTO vehicles (id, user_id, brand, model, color, plate_number, comfort_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		vehicle.ID, vehicle.UserID, vehicle.Brand, vehicle.Model,
		vehicle.Color, vehicle.PlateNumber, vehicle.ComfortLevel)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

// GetByID retrieves a vehicle by ID
func (r *VehicleRepository) GetByID(vehicleID string) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	err := r.db.Get(vehicle, `
		SELECT id, user_id, brand, model, color, plate_number, comfort_level
		FROM vehicles WHERE id = $1`, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return vehicle, nil
}

// ListByUser retrieves all vehicles registered by a user
func (r *VehicleRepository) ListByUser(userID string) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	err := r.db.Select(&vehicles, `
		SELECT id, user_id, brand, model, color, plate_number, comfort_level
		FROM vehicles WHERE user_id = $1
		ORDER BY brand, model`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	return vehicles, nil
}

// Delete removes a vehicle, enforcing ownership
func (r *VehicleRepository) Delete(vehicleID, userID string) error {
	result, err := r.db.Exec(`
		DELETE FROM vehicles WHERE id = $1 AND user_id = $2`,
		vehicleID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetByID(vehicleID); err != nil {
			return err
		}
		return ErrForbidden
	}

	return nil
}
