package services

import (
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/metrics"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// ConversationService provisions and exposes ride conversations. A driver and
// a passenger share at most one conversation per route; provisioning is
// idempotent and safe under concurrent triggers.
type ConversationService struct {
	conversationRepo *database.ConversationRepository
	messageRepo      *database.MessageRepository
	routeRepo        *database.RouteRepository
	logger           *logrus.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(conversationRepo *database.ConversationRepository, messageRepo *database.MessageRepository, routeRepo *database.RouteRepository, logger *logrus.Logger) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		routeRepo:        routeRepo,
		logger:           logger,
	}
}

// EnsureForBooking returns the conversation for the route's driver/passenger
// pair, creating it (with title and welcome message) if it does not exist yet.
// creatorID attributes the welcome message and the admin participant role.
func (s *ConversationService) EnsureForBooking(routeID, creatorID, otherID string) (string, error) {
	info, err := s.routeRepo.GetConversationInfo(routeID)
	if err != nil {
		return "", err
	}

	id, created, err := s.conversationRepo.GetOrCreate(routeID, creatorID, otherID, ConversationTitle(info), WelcomeMessage())
	if err != nil {
		return "", err
	}
	if created {
		metrics.IncConversationCreated()
		s.logger.WithFields(logrus.Fields{
			"conversation_id": id,
			"route_id":        routeID,
		}).Info("Conversation created for ride")
	}
	return id, nil
}

// FindForBooking returns the existing conversation for the pair on the route,
// or database.ErrConversationNotFound. It never creates one.
func (s *ConversationService) FindForBooking(routeID, userA, userB string) (string, error) {
	return s.conversationRepo.FindByRoutePair(routeID, userA, userB)
}

// ListForUser returns conversation summaries for the user, most recently
// active first.
func (s *ConversationService) ListForUser(userID string) ([]models.ConversationSummary, error) {
	return s.conversationRepo.ListByUser(userID)
}

// GetDetail returns the full conversation with messages. The caller must be a
// participant; otherwise database.ErrForbidden is returned.
func (s *ConversationService) GetDetail(conversationID, userID string) (*models.ConversationDetail, error) {
	detail, err := s.conversationRepo.GetDetail(conversationID, userID)
	if err != nil {
		return nil, err
	}
	// Opening a conversation marks it as read.
	if err := s.conversationRepo.TouchLastSeen(conversationID, userID); err != nil {
		s.logger.WithError(err).WithField("conversation_id", conversationID).Warn("Failed to update last seen")
	}
	return detail, nil
}

// SendMessage appends a message after verifying the sender participates in
// the conversation.
func (s *ConversationService) SendMessage(conversationID, senderID, content string) (*models.Message, error) {
	ok, err := s.conversationRepo.HasParticipant(conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, database.ErrForbidden
	}
	return s.messageRepo.Create(conversationID, senderID, content)
}

// UnreadCount returns how many messages the user has not seen yet across all
// their conversations.
func (s *ConversationService) UnreadCount(userID string) (int, error) {
	return s.conversationRepo.UnreadCount(userID)
}
