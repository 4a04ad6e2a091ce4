package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/services"
)

// respondError maps domain errors to HTTP status codes with the shared
// error body shape. Unknown errors become a 500 with a generic message so
// internals never leak to clients.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var capacityErr *database.CapacityExceededError

	switch {
	case errors.Is(err, database.ErrRouteNotFound),
		errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrConversationNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrVehicleNotFound),
		errors.Is(err, database.ErrCityNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": err.Error(),
		})

	case errors.Is(err, database.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "You don't have permission to perform this action",
		})

	case errors.As(err, &capacityErr):
		c.JSON(http.StatusConflict, gin.H{
			"status":          "error",
			"message":         capacityErr.Error(),
			"remaining_seats": capacityErr.Remaining,
		})

	case errors.Is(err, database.ErrInvalidStateTransition),
		errors.Is(err, database.ErrAlreadyCancelled),
		errors.Is(err, database.ErrDuplicateReview),
		errors.Is(err, database.ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": err.Error(),
		})

	case errors.Is(err, services.ErrInvalidSeats),
		errors.Is(err, services.ErrBlankReason),
		errors.Is(err, services.ErrBookingNotReviewable),
		errors.Is(err, services.ErrRouteNotCompleted):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": err.Error(),
		})

	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": err.Error(),
		})

	default:
		logger.WithError(err).Error("Unhandled error in request")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Something went wrong. Please try again later.",
		})
	}
}

// respondBadRequest reports a malformed or invalid request body
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": "Invalid request format",
		"error":   err.Error(),
	})
}
