package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// MessageRepository handles database operations for the messages table
type MessageRepository struct {
	db DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a conversation
func (r *MessageRepository) Create(conversationID, senderID, content string) (*models.Message, error) {
	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}

	err := r.db.QueryRow(`
		INSERT INTO messages (id, conversation_id, sender_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING sent_at`,
		message.ID, message.ConversationID, message.SenderID, message.Content,
	).Scan(&message.SentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return message, nil
}
