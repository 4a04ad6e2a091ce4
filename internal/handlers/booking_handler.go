package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/middleware"
	"github.com/samkorsel/carpool-backend/internal/models"
	"github.com/samkorsel/carpool-backend/internal/services"
)

// BookingHandler handles HTTP requests for the booking lifecycle
type BookingHandler struct {
	service *services.BookingService
	logger  *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger,
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	booking, err := h.service.CreateBooking(req.RouteID, userCtx.UserID.String(), req.SeatsBooked)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, err := h.service.GetBooking(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ApproveBooking handles POST /api/v1/bookings/:id/approve
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, err := h.service.ApproveBooking(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// RejectBooking handles POST /api/v1/bookings/:id/reject
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, err := h.service.RejectBooking(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	booking, err := h.service.CancelBooking(c.Param("id"), userCtx.UserID.String(), req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// MyBookings handles GET /api/v1/bookings/mine
func (h *BookingHandler) MyBookings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookings, err := h.service.ListForPassenger(userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// BookingRequests handles GET /api/v1/bookings/requests
func (h *BookingHandler) BookingRequests(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	requests, err := h.service.RequestsForDriver(userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}
