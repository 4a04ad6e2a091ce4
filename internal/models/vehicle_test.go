package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComfortLevelMapping(t *testing.T) {
	for _, name := range []string{"Basic", "Standard", "Premium", "Luxury"} {
		level, ok := ComfortLevelFromString(name)
		assert.True(t, ok)
		assert.Equal(t, name, ComfortLevelString(level))
	}

	_, ok := ComfortLevelFromString("Deluxe")
	assert.False(t, ok)

	// Unknown stored values fall back to Standard for display
	assert.Equal(t, "Standard", ComfortLevelString(0))
	assert.Equal(t, "Standard", ComfortLevelString(99))
}

func TestCreateVehicleRequestValidate(t *testing.T) {
	req := &CreateVehicleRequest{
		Brand:        "Volvo",
		Model:        "V60",
		Color:        "Blue",
		PlateNumber:  "AB 12 345",
		ComfortLevel: "Premium",
	}
	assert.NoError(t, req.Validate())

	req.ComfortLevel = "Ultra"
	assert.Error(t, req.Validate())
}
