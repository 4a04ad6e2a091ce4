package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// ErrBookingNotReviewable is returned when the booking is not in a state
// that allows a review.
var ErrBookingNotReviewable = errors.New("only confirmed bookings can be reviewed")

// ErrRouteNotCompleted is returned when the trip has not taken place yet
var ErrRouteNotCompleted = errors.New("the route must be completed before it can be reviewed")

// ReviewService creates and lists post-trip reviews. Either side of a
// confirmed booking may review the other, once per booking.
type ReviewService struct {
	reviewRepo  *database.ReviewRepository
	bookingRepo *database.BookingRepository
	routeRepo   *database.RouteRepository
	logger      *logrus.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo *database.ReviewRepository, bookingRepo *database.BookingRepository, routeRepo *database.RouteRepository, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		routeRepo:   routeRepo,
		logger:      logger,
	}
}

// CreateReview records the reviewer's rating of their counterparty on the
// booking. The booking must be confirmed and the route completed, meaning
// the trip actually happened. The passenger reviews the driver and vice
// versa; anyone else is refused.
func (s *ReviewService) CreateReview(reviewerID string, req *models.CreateReviewRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, ErrBookingNotReviewable
	}

	route, err := s.routeRepo.GetByID(booking.RouteID)
	if err != nil {
		return nil, err
	}
	if route.Status != models.RouteStatusCompleted {
		return nil, ErrRouteNotCompleted
	}

	var reviewedUserID string
	switch reviewerID {
	case booking.PassengerID:
		reviewedUserID = route.DriverID
	case route.DriverID:
		reviewedUserID = booking.PassengerID
	default:
		return nil, database.ErrForbidden
	}

	review := &models.Review{
		ID:             uuid.New().String(),
		RouteID:        booking.RouteID,
		BookingID:      booking.ID,
		ReviewerID:     reviewerID,
		ReviewedUserID: reviewedUserID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}

	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"booking_id": booking.ID,
		"rating":     review.Rating,
	}).Info("Review created")

	return review, nil
}

// ListForUser returns the reviews written about a user, newest first.
func (s *ReviewService) ListForUser(userID string) ([]models.ReviewDetail, error) {
	return s.reviewRepo.ListByReviewedUser(userID)
}
