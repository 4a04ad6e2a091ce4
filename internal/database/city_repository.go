package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/samkorsel/carpool-backend/internal/models"
)

// CityRepository handles database operations for the cities table
type CityRepository struct {
	db DB
}

// NewCityRepository creates a new CityRepository
func NewCityRepository(db DB) *CityRepository {
	return &CityRepository{db: db}
}

// List retrieves all cities ordered by name
func (r *CityRepository) List() ([]models.City, error) {
	cities := []models.City{}
	err := r.db.Select(&cities, `
		SELECT id, name, lat, lon FROM cities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	return cities, nil
}

// GetName retrieves a city's display name by ID
func (r *CityRepository) GetName(cityID string) (string, error) {
	var name string
	err := r.db.QueryRow(`SELECT name FROM cities WHERE id = $1`, cityID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCityNotFound
		}
		return "", fmt.Errorf("failed to get city: %w", err)
	}

	return name, nil
}
