package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/middleware"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// ProfileHandler handles HTTP requests for user profiles
type ProfileHandler struct {
	userRepo *database.UserRepository
	logger   *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userRepo *database.UserRepository, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetMe handles GET /api/v1/profile
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.userRepo.GetByID(userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/profile
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := h.userRepo.UpdateProfile(userCtx.UserID.String(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetPublicProfile handles GET /api/v1/users/:id
func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.userRepo.GetPublicProfile(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
