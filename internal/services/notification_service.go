package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/metrics"
)

// NotificationService posts lifecycle notifications as chat messages in the
// ride's conversation. Delivery is best-effort: a failed post is logged and
// counted, and never fails the booking operation that triggered it.
type NotificationService struct {
	messageRepo *database.MessageRepository
	logger      *logrus.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(messageRepo *database.MessageRepository, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// Post writes a notification message into the conversation, attributed to the
// user whose action triggered it. Errors are swallowed after logging.
func (s *NotificationService) Post(conversationID, actorID, event, content string) {
	if _, err := s.messageRepo.Create(conversationID, actorID, content); err != nil {
		metrics.IncNotificationFailure(event)
		s.logger.WithFields(logrus.Fields{
			"conversation_id": conversationID,
			"actor_id":        actorID,
			"event":           event,
		}).WithError(err).Warn("Failed to post notification message")
	}
}

// BookingRequestedMessage announces a new pending booking to the driver.
func BookingRequestedMessage(passengerName string, seats int) string {
	return fmt.Sprintf("🎫 Ny booking-anmodning / New booking request\n\n%s har anmodet om %d plads(er). / %s has requested %d seat(s).", passengerName, seats, passengerName, seats)
}

// BookingApprovedMessage announces that the driver confirmed the booking.
func BookingApprovedMessage(seats int) string {
	return fmt.Sprintf("✅ Booking bekræftet / Booking confirmed\n\n%d plads(er) er nu bekræftet. God tur! / %d seat(s) are now confirmed. Have a good trip!", seats, seats)
}

// BookingRejectedMessage announces that the driver declined the booking.
func BookingRejectedMessage() string {
	return "❌ Booking afvist / Booking rejected\n\nChaufføren har afvist anmodningen. / The driver has declined the request."
}

// BookingCancelledMessage announces a passenger cancellation with the
// passenger's stated reason.
func BookingCancelledMessage(reason string) string {
	return fmt.Sprintf("🚫 Booking aflyst / Booking Cancelled\n\nBegrundelse / Reason: %s", reason)
}

// WelcomeMessage is the first message of every automatically provisioned
// ride conversation.
func WelcomeMessage() string {
	return "Hej! En samtale er blevet oprettet automatisk for jeres samkørsel. God tur! 🚗"
}

// ConversationTitle builds the display title for a ride conversation.
func ConversationTitle(info *database.ConversationInfo) string {
	return fmt.Sprintf("Samkørsel: %s → %s", info.StartCity, info.EndCity)
}
