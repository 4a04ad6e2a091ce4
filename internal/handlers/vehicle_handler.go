package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/middleware"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// VehicleHandler handles HTTP requests for vehicle management
type VehicleHandler struct {
	vehicleRepo *database.VehicleRepository
	logger      *logrus.Logger
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicleRepo *database.VehicleRepository, logger *logrus.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleRepo: vehicleRepo,
		logger:      logger,
	}
}

// CreateVehicle handles POST /api/v1/vehicles
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	comfort, _ := models.ComfortLevelFromString(req.ComfortLevel)
	vehicle := &models.Vehicle{
		ID:           uuid.New().String(),
		UserID:       userCtx.UserID.String(),
		Brand:        req.Brand,
		Model:        req.Model,
		Color:        req.Color,
		PlateNumber:  req.PlateNumber,
		ComfortLevel: comfort,
	}

	if err := h.vehicleRepo.Create(vehicle); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// MyVehicles handles GET /api/v1/vehicles
func (h *VehicleHandler) MyVehicles(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	vehicles, err := h.vehicleRepo.ListByUser(userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

// DeleteVehicle handles DELETE /api/v1/vehicles/:id
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if err := h.vehicleRepo.Delete(c.Param("id"), userCtx.UserID.String()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Vehicle deleted",
	})
}
