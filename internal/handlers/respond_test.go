package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/services"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Route Not Found", database.ErrRouteNotFound, http.StatusNotFound},
		{"Booking Not Found", database.ErrBookingNotFound, http.StatusNotFound},
		{"Conversation Not Found", database.ErrConversationNotFound, http.StatusNotFound},
		{"Forbidden", database.ErrForbidden, http.StatusForbidden},
		{"Capacity Exceeded", &database.CapacityExceededError{Requested: 2, Remaining: 1}, http.StatusConflict},
		{"Invalid Transition", database.ErrInvalidStateTransition, http.StatusConflict},
		{"Already Cancelled", database.ErrAlreadyCancelled, http.StatusConflict},
		{"Duplicate Review", database.ErrDuplicateReview, http.StatusConflict},
		{"Duplicate User", database.ErrDuplicateUser, http.StatusConflict},
		{"Invalid Seats", services.ErrInvalidSeats, http.StatusBadRequest},
		{"Blank Reason", services.ErrBlankReason, http.StatusBadRequest},
		{"Not Reviewable", services.ErrBookingNotReviewable, http.StatusBadRequest},
		{"Route Not Completed", services.ErrRouteNotCompleted, http.StatusBadRequest},
		{"Bad Credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"Unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, logger, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRespondErrorCapacityBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, logger, &database.CapacityExceededError{Requested: 4, Remaining: 1})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining_seats":1`)
	assert.Contains(t, w.Body.String(), "only 1 seats remain, 4 requested")
}
