package models

import (
	"errors"
	"strings"
	"time"
)

// Message is a single chat message. Messages are owned by their
// conversation and are written either by a user sending chat directly or by
// the notification emitter on booking lifecycle events.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	SenderName     string    `json:"sender_name" db:"sender_name"`
	Content        string    `json:"content" db:"content"`
	SentAt         time.Time `json:"sent_at" db:"sent_at"`
}

// SendMessageRequest represents a user-sent chat message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Validate validates the send message request
func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("message cannot be empty")
	}
	return nil
}
