package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/middleware"
	"github.com/samkorsel/carpool-backend/internal/models"
	"github.com/samkorsel/carpool-backend/internal/services"
)

// ReviewHandler handles HTTP requests for post-trip reviews
type ReviewHandler struct {
	service *services.ReviewService
	logger  *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger,
	}
}

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	review, err := h.service.CreateReview(userCtx.UserID.String(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListUserReviews handles GET /api/v1/users/:id/reviews
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	reviews, err := h.service.ListForUser(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}
