package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/metrics"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// bookingStore is the booking persistence surface the service drives.
// *database.BookingRepository implements it.
type bookingStore interface {
	Create(routeID, passengerID string, seats int) (*models.Booking, error)
	Approve(bookingID, driverID string) (*models.Booking, error)
	Reject(bookingID, driverID string) (*models.Booking, error)
	Cancel(bookingID, passengerID, reason string) (*models.Booking, string, error)
	GetByID(bookingID string) (*models.Booking, error)
	ListByPassenger(passengerID string) ([]models.BookingDetail, error)
	ListByDriver(driverID string) ([]models.BookingRequestDetail, error)
}

// routeReader resolves the route data booking flows need
type routeReader interface {
	GetConversationInfo(routeID string) (*database.ConversationInfo, error)
}

// userReader resolves users for display names
type userReader interface {
	GetByID(userID string) (*models.User, error)
}

// conversationProvider provisions or looks up the ride conversation.
// *ConversationService implements it.
type conversationProvider interface {
	EnsureForBooking(routeID, creatorID, otherID string) (string, error)
	FindForBooking(routeID, userA, userB string) (string, error)
}

// notificationPoster delivers lifecycle notices. *NotificationService
// implements it.
type notificationPoster interface {
	Post(conversationID, actorID, event, content string)
}

// BookingService drives the booking lifecycle: request, driver decision,
// passenger cancellation. Every state change is committed first; conversation
// provisioning and notification messages run afterwards and are best-effort,
// so a chat hiccup never rolls back or fails a booking.
type BookingService struct {
	bookingRepo   bookingStore
	routeRepo     routeReader
	userRepo      userReader
	conversations conversationProvider
	notifications notificationPoster
	logger        *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo bookingStore,
	routeRepo routeReader,
	userRepo userReader,
	conversations conversationProvider,
	notifications notificationPoster,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		routeRepo:     routeRepo,
		userRepo:      userRepo,
		conversations: conversations,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateBooking places a pending booking for the passenger on the route.
// The seat request is checked against the seats currently free (capacity
// minus confirmed bookings); a request that does not fit is refused outright.
// On success a conversation between driver and passenger is provisioned and
// the driver is notified in it. A driver booking their own route is a
// regular booking with no conversation: nobody chats with themselves.
func (s *BookingService) CreateBooking(routeID, passengerID string, seats int) (*models.Booking, error) {
	if seats < 1 {
		return nil, ErrInvalidSeats
	}

	info, err := s.routeRepo.GetConversationInfo(routeID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.Create(routeID, passengerID, seats)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingEvent("created")

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"route_id":     routeID,
		"passenger_id": passengerID,
		"seats":        seats,
	}).Info("Booking created")

	if info.DriverID == passengerID {
		return booking, nil
	}

	// Everything past the commit is best-effort.
	conversationID, err := s.conversations.EnsureForBooking(routeID, passengerID, info.DriverID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to provision conversation for booking")
		return booking, nil
	}
	s.notifications.Post(conversationID, passengerID, "booking_requested",
		BookingRequestedMessage(s.displayName(passengerID), seats))

	return booking, nil
}

// ApproveBooking confirms a pending booking on behalf of the route's driver.
// The free-seat count is re-checked against confirmed bookings in the same
// transaction as the status change, so optimistically accepted pending
// requests are resolved first-come-first-served. Approval notifies the pair's
// existing conversation but never creates one.
func (s *BookingService) ApproveBooking(bookingID, driverID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.Approve(bookingID, driverID)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingEvent("approved")

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"driver_id":  driverID,
	}).Info("Booking approved")

	s.notifyExisting(booking.RouteID, driverID, booking.PassengerID, "booking_approved",
		BookingApprovedMessage(booking.SeatsBooked))

	return booking, nil
}

// RejectBooking declines a pending booking on behalf of the route's driver.
// Rejection is terminal. Like approval it only notifies an existing
// conversation.
func (s *BookingService) RejectBooking(bookingID, driverID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.Reject(bookingID, driverID)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingEvent("rejected")

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"driver_id":  driverID,
	}).Info("Booking rejected")

	s.notifyExisting(booking.RouteID, driverID, booking.PassengerID, "booking_rejected",
		BookingRejectedMessage())

	return booking, nil
}

// CancelBooking cancels a pending or confirmed booking on behalf of the
// owning passenger. A non-blank reason is mandatory and is relayed to the
// driver. Cancellation provisions the conversation if it does not exist yet,
// so the driver always receives the notice.
func (s *BookingService) CancelBooking(bookingID, passengerID, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrBlankReason
	}

	booking, driverID, err := s.bookingRepo.Cancel(bookingID, passengerID, reason)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingEvent("cancelled")

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"passenger_id": passengerID,
	}).Info("Booking cancelled")

	conversationID, err := s.conversations.EnsureForBooking(booking.RouteID, passengerID, driverID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to provision conversation for cancellation notice")
		return booking, nil
	}
	s.notifications.Post(conversationID, passengerID, "booking_cancelled",
		BookingCancelledMessage(reason))

	return booking, nil
}

// GetBooking returns a booking to its passenger or the route's driver.
func (s *BookingService) GetBooking(bookingID, userID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PassengerID != userID {
		info, err := s.routeRepo.GetConversationInfo(booking.RouteID)
		if err != nil {
			return nil, err
		}
		if info.DriverID != userID {
			return nil, database.ErrForbidden
		}
	}
	return booking, nil
}

// ListForPassenger returns the passenger's bookings, newest first.
func (s *BookingService) ListForPassenger(passengerID string) ([]models.BookingDetail, error) {
	return s.bookingRepo.ListByPassenger(passengerID)
}

// RequestsForDriver returns booking requests across the driver's routes,
// pending first.
func (s *BookingService) RequestsForDriver(driverID string) ([]models.BookingRequestDetail, error) {
	return s.bookingRepo.ListByDriver(driverID)
}

// notifyExisting posts into the pair's conversation if one exists. Approval
// and rejection never provision a conversation, a missing one just means the
// notice is skipped.
func (s *BookingService) notifyExisting(routeID, actorID, otherID, event, content string) {
	conversationID, err := s.conversations.FindForBooking(routeID, actorID, otherID)
	if err != nil {
		if !errors.Is(err, database.ErrConversationNotFound) {
			s.logger.WithError(err).WithField("route_id", routeID).Warn("Failed to look up conversation for notification")
		}
		return
	}
	s.notifications.Post(conversationID, actorID, event, content)
}

func (s *BookingService) displayName(userID string) string {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to resolve username for notification")
		return "En passager"
	}
	return user.Username
}
