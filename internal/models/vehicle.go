package models

import "errors"

// Comfort levels stored as integers, displayed as strings
const (
	ComfortBasic    = 1
	ComfortStandard = 2
	ComfortPremium  = 3
	ComfortLuxury   = 4
)

// Vehicle represents a car a driver can attach to a route
type Vehicle struct {
	ID           string `json:"id" db:"id"`
	UserID       string `json:"user_id" db:"user_id"`
	Brand        string `json:"brand" db:"brand"`
	Model        string `json:"model" db:"model"`
	Color        string `json:"color" db:"color"`
	PlateNumber  string `json:"plate_number" db:"plate_number"`
	ComfortLevel int    `json:"comfort_level" db:"comfort_level"`
}

// CreateVehicleRequest represents the request to register a vehicle
type CreateVehicleRequest struct {
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Color        string `json:"color" binding:"required"`
	PlateNumber  string `json:"plate_number" binding:"required"`
	ComfortLevel string `json:"comfort_level" binding:"required"`
}

// Validate validates the create vehicle request
func (r *CreateVehicleRequest) Validate() error {
	if _, ok := ComfortLevelFromString(r.ComfortLevel); !ok {
		return errors.New("comfort_level must be one of Basic, Standard, Premium, Luxury")
	}
	return nil
}

// ComfortLevelFromString maps a display name to its stored integer value
func ComfortLevelFromString(level string) (int, bool) {
	switch level {
	case "Basic":
		return ComfortBasic, true
	case "Standard":
		return ComfortStandard, true
	case "Premium":
		return ComfortPremium, true
	case "Luxury":
		return ComfortLuxury, true
	default:
		return 0, false
	}
}

// ComfortLevelString maps a stored integer value to its display name
func ComfortLevelString(level int) string {
	switch level {
	case ComfortBasic:
		return "Basic"
	case ComfortPremium:
		return "Premium"
	case ComfortLuxury:
		return "Luxury"
	default:
		return "Standard"
	}
}
