package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/middleware"
	"github.com/samkorsel/carpool-backend/internal/models"
	"github.com/samkorsel/carpool-backend/internal/services"
	"github.com/samkorsel/carpool-backend/pkg/routing"
)

// RouteHandler handles HTTP requests for route publishing and search
type RouteHandler struct {
	routeRepo    *database.RouteRepository
	cityRepo     *database.CityRepository
	availability *services.AvailabilityService
	calculator   routing.Calculator
	logger       *logrus.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(
	routeRepo *database.RouteRepository,
	cityRepo *database.CityRepository,
	availability *services.AvailabilityService,
	calculator routing.Calculator,
	logger *logrus.Logger,
) *RouteHandler {
	return &RouteHandler{
		routeRepo:    routeRepo,
		cityRepo:     cityRepo,
		availability: availability,
		calculator:   calculator,
		logger:       logger,
	}
}

// CreateRoute handles POST /api/v1/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	route := &models.Route{
		ID:           uuid.New().String(),
		DriverID:     userCtx.UserID.String(),
		StartCityID:  req.StartCityID,
		EndCityID:    req.EndCityID,
		Departure:    req.Departure,
		Arrival:      req.Arrival,
		SeatCapacity: req.SeatCapacity,
		PricePerSeat: req.PricePerSeat,
		VehicleID:    req.VehicleID,
		Description:  req.Description,
		Status:       models.RouteStatusActive,
	}

	h.attachEstimate(route)

	if err := h.routeRepo.Create(route, req.Stops); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"route_id":  route.ID,
		"driver_id": route.DriverID,
		"seats":     route.SeatCapacity,
	}).Info("Route published")

	c.JSON(http.StatusCreated, route)
}

// attachEstimate fills distance and travel time figures when the route
// calculator can produce them. Missing figures are not an error.
func (h *RouteHandler) attachEstimate(route *models.Route) {
	startCity, err := h.cityRepo.GetName(route.StartCityID)
	if err != nil {
		return
	}
	endCity, err := h.cityRepo.GetName(route.EndCityID)
	if err != nil {
		return
	}

	result, err := h.calculator.Estimate(startCity, endCity)
	if err != nil {
		if !errors.Is(err, routing.ErrUnavailable) {
			h.logger.WithError(err).Warn("Route estimate failed")
		}
		return
	}

	route.DistanceKm = &result.DistanceKm
	route.TravelTimeMinutes = &result.DurationMinutes
}

// SearchRoutes handles GET /api/v1/routes
func (h *RouteHandler) SearchRoutes(c *gin.Context) {
	var criteria models.RouteSearchCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		respondBadRequest(c, err)
		return
	}

	routes, err := h.routeRepo.Search(criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}

// GetRoute handles GET /api/v1/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	detail, err := h.routeRepo.GetDetail(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetAvailability handles GET /api/v1/routes/:id/availability
func (h *RouteHandler) GetAvailability(c *gin.Context) {
	routeID := c.Param("id")

	remaining, err := h.availability.RemainingSeats(routeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"route_id":        routeID,
		"remaining_seats": remaining,
	})
}

// MyRoutes handles GET /api/v1/routes/mine
func (h *RouteHandler) MyRoutes(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	routes, err := h.routeRepo.ListByDriver(userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}

// UpdateStatusRequest is the body of a route status change
type UpdateStatusRequest struct {
	Status models.RouteStatus `json:"status" binding:"required"`
}

// UpdateRouteStatus handles PATCH /api/v1/routes/:id/status
func (h *RouteHandler) UpdateRouteStatus(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	switch req.Status {
	case models.RouteStatusActive, models.RouteStatusCompleted, models.RouteStatusCancelled:
	default:
		respondBadRequest(c, errors.New("status must be one of active, completed, cancelled"))
		return
	}

	if err := h.routeRepo.UpdateStatus(c.Param("id"), userCtx.UserID.String(), req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Route status updated",
	})
}

// ListCities handles GET /api/v1/cities
func (h *RouteHandler) ListCities(c *gin.Context) {
	cities, err := h.cityRepo.List()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": cities})
}
